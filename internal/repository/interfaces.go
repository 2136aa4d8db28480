// Package repository defines the persistence capability interfaces the
// services depend on. Implementations live in subpackages.
package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medrex/clinical-api/internal/model"
	"github.com/medrex/clinical-api/internal/query"
)

var (
	// ErrNotFound is returned when a looked-up document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate document")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error)
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.Patient, error)
	List(ctx context.Context, spec *query.Spec) ([]*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Patient, error)
}

type AssessmentRepository interface {
	Create(ctx context.Context, assessment *model.Assessment) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.Assessment, error)
	List(ctx context.Context, spec *query.Spec) ([]*model.Assessment, error)
	Update(ctx context.Context, assessment *model.Assessment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// DiagnosticRepository has no update or delete: diagnostics are append-only.
type DiagnosticRepository interface {
	Create(ctx context.Context, diagnostic *model.Diagnostic) error
	Get(ctx context.Context, id primitive.ObjectID) (*model.Diagnostic, error)
	List(ctx context.Context, spec *query.Spec) ([]*model.Diagnostic, error)
}
