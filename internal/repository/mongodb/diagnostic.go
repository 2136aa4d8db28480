package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/medrex/clinical-api/internal/model"
	"github.com/medrex/clinical-api/internal/query"
	"github.com/medrex/clinical-api/internal/repository"
)

// DiagnosticRepository is append-only: no update or delete methods exist.
type DiagnosticRepository struct {
	collection *mongo.Collection
}

func NewDiagnosticRepository(db *mongo.Database) *DiagnosticRepository {
	return &DiagnosticRepository{collection: db.Collection(diagnosticsCollection)}
}

func (r *DiagnosticRepository) Create(ctx context.Context, diagnostic *model.Diagnostic) error {
	now := time.Now().UTC()
	diagnostic.CreatedAt = now
	diagnostic.UpdatedAt = now
	if diagnostic.ID.IsZero() {
		diagnostic.ID = primitive.NewObjectID()
	}
	if diagnostic.Date.IsZero() {
		diagnostic.Date = now
	}

	if _, err := r.collection.InsertOne(ctx, diagnostic); err != nil {
		return fmt.Errorf("error creating diagnostic: %w", err)
	}
	return nil
}

func (r *DiagnosticRepository) Get(ctx context.Context, id primitive.ObjectID) (*model.Diagnostic, error) {
	diagnostic := &model.Diagnostic{}
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(diagnostic)
	if err == mongo.ErrNoDocuments {
		return nil, repository.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting diagnostic: %w", err)
	}
	return diagnostic, nil
}

func (r *DiagnosticRepository) List(ctx context.Context, spec *query.Spec) ([]*model.Diagnostic, error) {
	cursor, err := r.collection.Find(ctx, filterDocument(spec), findOptions(spec))
	if err != nil {
		return nil, fmt.Errorf("error listing diagnostics: %w", err)
	}

	diagnostics := make([]*model.Diagnostic, 0)
	if err := cursor.All(ctx, &diagnostics); err != nil {
		return nil, fmt.Errorf("error decoding diagnostics: %w", err)
	}
	return diagnostics, nil
}
