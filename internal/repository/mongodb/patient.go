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

type PatientRepository struct {
	collection *mongo.Collection
}

func NewPatientRepository(db *mongo.Database) *PatientRepository {
	return &PatientRepository{collection: db.Collection(patientsCollection)}
}

func (r *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now
	if patient.ID.IsZero() {
		patient.ID = primitive.NewObjectID()
	}

	if _, err := r.collection.InsertOne(ctx, patient); err != nil {
		return fmt.Errorf("error creating patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) Get(ctx context.Context, id primitive.ObjectID) (*model.Patient, error) {
	patient := &model.Patient{}
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(patient)
	if err == mongo.ErrNoDocuments {
		return nil, repository.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting patient: %w", err)
	}
	return patient, nil
}

func (r *PatientRepository) List(ctx context.Context, spec *query.Spec) ([]*model.Patient, error) {
	cursor, err := r.collection.Find(ctx, filterDocument(spec), findOptions(spec))
	if err != nil {
		return nil, fmt.Errorf("error listing patients: %w", err)
	}

	patients := make([]*model.Patient, 0)
	if err := cursor.All(ctx, &patients); err != nil {
		return nil, fmt.Errorf("error decoding patients: %w", err)
	}
	return patients, nil
}

func (r *PatientRepository) Update(ctx context.Context, patient *model.Patient) error {
	patient.UpdatedAt = time.Now().UTC()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": patient.ID}, patient)
	if err != nil {
		return fmt.Errorf("error updating patient: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PatientRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting patient: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PatientRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Patient, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("error listing patients by ids: %w", err)
	}

	var patients []*model.Patient
	if err := cursor.All(ctx, &patients); err != nil {
		return nil, fmt.Errorf("error decoding patients: %w", err)
	}
	return patients, nil
}
