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

type AssessmentRepository struct {
	collection *mongo.Collection
}

func NewAssessmentRepository(db *mongo.Database) *AssessmentRepository {
	return &AssessmentRepository{collection: db.Collection(assessmentsCollection)}
}

func (r *AssessmentRepository) Create(ctx context.Context, assessment *model.Assessment) error {
	now := time.Now().UTC()
	assessment.CreatedAt = now
	assessment.UpdatedAt = now
	if assessment.ID.IsZero() {
		assessment.ID = primitive.NewObjectID()
	}
	if assessment.Date.IsZero() {
		assessment.Date = now
	}

	if _, err := r.collection.InsertOne(ctx, assessment); err != nil {
		return fmt.Errorf("error creating assessment: %w", err)
	}
	return nil
}

func (r *AssessmentRepository) Get(ctx context.Context, id primitive.ObjectID) (*model.Assessment, error) {
	assessment := &model.Assessment{}
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(assessment)
	if err == mongo.ErrNoDocuments {
		return nil, repository.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting assessment: %w", err)
	}
	return assessment, nil
}

func (r *AssessmentRepository) List(ctx context.Context, spec *query.Spec) ([]*model.Assessment, error) {
	cursor, err := r.collection.Find(ctx, filterDocument(spec), findOptions(spec))
	if err != nil {
		return nil, fmt.Errorf("error listing assessments: %w", err)
	}

	assessments := make([]*model.Assessment, 0)
	if err := cursor.All(ctx, &assessments); err != nil {
		return nil, fmt.Errorf("error decoding assessments: %w", err)
	}
	return assessments, nil
}

func (r *AssessmentRepository) Update(ctx context.Context, assessment *model.Assessment) error {
	assessment.UpdatedAt = time.Now().UTC()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": assessment.ID}, assessment)
	if err != nil {
		return fmt.Errorf("error updating assessment: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AssessmentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting assessment: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
