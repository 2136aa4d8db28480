package patient

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medrex/clinical-api/internal/model"
	"github.com/medrex/clinical-api/internal/query"
	"github.com/medrex/clinical-api/internal/repository"
	apperrors "github.com/medrex/clinical-api/pkg/errors"
	"github.com/medrex/clinical-api/pkg/validator"
)

type Service struct {
	repo      repository.PatientRepository
	validator *validator.Validator
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo, validator: validator.New()}
}

func (s *Service) List(ctx context.Context, spec *query.Spec) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return patients, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient")
		}
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

// Create validates the request and stamps the authenticated identity as the
// record owner.
func (s *Service) Create(ctx context.Context, req *model.CreatePatientRequest, createdBy primitive.ObjectID) (*model.Patient, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	patient := &model.Patient{
		Name:           req.Name,
		Age:            *req.Age,
		Gender:         req.Gender,
		Contact:        req.Contact,
		Address:        req.Address,
		MedicalHistory: req.MedicalHistory,
		CreatedBy:      createdBy,
	}
	if patient.MedicalHistory == nil {
		patient.MedicalHistory = []string{}
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

// Update is a whitelist replace: only fields present in the request change,
// and the whole document is re-validated before it is stored.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Age != nil {
		patient.Age = *req.Age
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Contact != nil {
		patient.Contact = *req.Contact
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.MedicalHistory != nil {
		patient.MedicalHistory = *req.MedicalHistory
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient")
		}
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

// Delete removes the patient. A second delete of the same id reports not
// found rather than failing.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("patient")
		}
		return apperrors.Internal(err)
	}
	return nil
}
