package memory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medrex/clinical-api/internal/model"
	"github.com/medrex/clinical-api/internal/query"
	"github.com/medrex/clinical-api/internal/repository"
)

type UserRepository struct {
	c *collection[model.User]
}

func NewUserRepository() *UserRepository {
	return &UserRepository{c: newCollection(
		func(u *model.User) primitive.ObjectID { return u.ID },
		func(u *model.User, id primitive.ObjectID) { u.ID = id },
	)}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	if _, err := r.GetByEmail(context.Background(), user.Email); err == nil {
		return repository.ErrDuplicate
	}
	stamp(&user.Base)
	r.c.insert(user)
	return nil
}

func (r *UserRepository) Get(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.c.get(id)
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()
	for _, u := range r.c.docs {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	return r.c.findByIDs(ids), nil
}

// Delete is test-only surface for exercising deleted-identity token checks.
func (r *UserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.c.remove(id)
}

type PatientRepository struct {
	c *collection[model.Patient]
}

func NewPatientRepository() *PatientRepository {
	return &PatientRepository{c: newCollection(
		func(p *model.Patient) primitive.ObjectID { return p.ID },
		func(p *model.Patient, id primitive.ObjectID) { p.ID = id },
	)}
}

func (r *PatientRepository) Create(_ context.Context, patient *model.Patient) error {
	stamp(&patient.Base)
	r.c.insert(patient)
	return nil
}

func (r *PatientRepository) Get(_ context.Context, id primitive.ObjectID) (*model.Patient, error) {
	return r.c.get(id)
}

func (r *PatientRepository) List(_ context.Context, spec *query.Spec) ([]*model.Patient, error) {
	return r.c.list(spec)
}

func (r *PatientRepository) Update(_ context.Context, patient *model.Patient) error {
	patient.UpdatedAt = time.Now().UTC()
	return r.c.replace(patient)
}

func (r *PatientRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.c.remove(id)
}

func (r *PatientRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*model.Patient, error) {
	return r.c.findByIDs(ids), nil
}

type AssessmentRepository struct {
	c *collection[model.Assessment]
}

func NewAssessmentRepository() *AssessmentRepository {
	return &AssessmentRepository{c: newCollection(
		func(a *model.Assessment) primitive.ObjectID { return a.ID },
		func(a *model.Assessment, id primitive.ObjectID) { a.ID = id },
	)}
}

func (r *AssessmentRepository) Create(_ context.Context, assessment *model.Assessment) error {
	stamp(&assessment.Base)
	if assessment.Date.IsZero() {
		assessment.Date = assessment.CreatedAt
	}
	r.c.insert(assessment)
	return nil
}

func (r *AssessmentRepository) Get(_ context.Context, id primitive.ObjectID) (*model.Assessment, error) {
	return r.c.get(id)
}

func (r *AssessmentRepository) List(_ context.Context, spec *query.Spec) ([]*model.Assessment, error) {
	return r.c.list(spec)
}

func (r *AssessmentRepository) Update(_ context.Context, assessment *model.Assessment) error {
	assessment.UpdatedAt = time.Now().UTC()
	return r.c.replace(assessment)
}

func (r *AssessmentRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.c.remove(id)
}

type DiagnosticRepository struct {
	c *collection[model.Diagnostic]
}

func NewDiagnosticRepository() *DiagnosticRepository {
	return &DiagnosticRepository{c: newCollection(
		func(d *model.Diagnostic) primitive.ObjectID { return d.ID },
		func(d *model.Diagnostic, id primitive.ObjectID) { d.ID = id },
	)}
}

func (r *DiagnosticRepository) Create(_ context.Context, diagnostic *model.Diagnostic) error {
	stamp(&diagnostic.Base)
	if diagnostic.Date.IsZero() {
		diagnostic.Date = diagnostic.CreatedAt
	}
	r.c.insert(diagnostic)
	return nil
}

func (r *DiagnosticRepository) Get(_ context.Context, id primitive.ObjectID) (*model.Diagnostic, error) {
	return r.c.get(id)
}

func (r *DiagnosticRepository) List(_ context.Context, spec *query.Spec) ([]*model.Diagnostic, error) {
	return r.c.list(spec)
}

func stamp(b *model.Base) {
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
}
