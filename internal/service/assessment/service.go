package assessment

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medrex/clinical-api/internal/model"
	"github.com/medrex/clinical-api/internal/query"
	"github.com/medrex/clinical-api/internal/repository"
	"github.com/medrex/clinical-api/internal/service/expand"
	apperrors "github.com/medrex/clinical-api/pkg/errors"
	"github.com/medrex/clinical-api/pkg/validator"
)

type Service struct {
	repo      repository.AssessmentRepository
	patients  repository.PatientRepository
	expander  *expand.Expander
	validator *validator.Validator
}

func NewService(repo repository.AssessmentRepository, patients repository.PatientRepository, expander *expand.Expander) *Service {
	return &Service{
		repo:      repo,
		patients:  patients,
		expander:  expander,
		validator: validator.New(),
	}
}

func (s *Service) List(ctx context.Context, spec *query.Spec) ([]*model.Assessment, error) {
	assessments, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.expandRefs(ctx, assessments); err != nil {
		return nil, apperrors.Internal(err)
	}
	return assessments, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*model.Assessment, error) {
	assessment, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("assessment")
		}
		return nil, apperrors.Internal(err)
	}
	if err := s.expandRefs(ctx, []*model.Assessment{assessment}); err != nil {
		return nil, apperrors.Internal(err)
	}
	return assessment, nil
}

// Create validates the request, checks the patient reference resolves, and
// stamps the authenticated identity as the assessing doctor.
func (s *Service) Create(ctx context.Context, req *model.CreateAssessmentRequest, doctorID primitive.ObjectID) (*model.Assessment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	patientID, err := primitive.ObjectIDFromHex(req.PatientID)
	if err != nil {
		return nil, apperrors.Validation("invalid patient_id", apperrors.FieldError{Field: "patient_id", Reason: "must be a valid id"})
	}
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient")
		}
		return nil, apperrors.Internal(err)
	}

	assessment := &model.Assessment{
		PatientID:            patientID,
		DoctorID:             doctorID,
		Symptoms:             emptyIfNil(req.Symptoms),
		PossibleCauses:       emptyIfNil(req.PossibleCauses),
		SuggestedTests:       emptyIfNil(req.SuggestedTests),
		TreatmentSuggestions: emptyIfNil(req.TreatmentSuggestions),
		Notes:                req.Notes,
		Diagnosis:            req.Diagnosis,
		FollowUpDate:         req.FollowUpDate,
	}

	if err := s.repo.Create(ctx, assessment); err != nil {
		return nil, apperrors.Internal(err)
	}
	return assessment, nil
}

// Update is a whitelist replace with re-validation.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, req *model.UpdateAssessmentRequest) (*model.Assessment, error) {
	assessment, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("assessment")
		}
		return nil, apperrors.Internal(err)
	}

	if req.Symptoms != nil {
		assessment.Symptoms = *req.Symptoms
	}
	if req.PossibleCauses != nil {
		assessment.PossibleCauses = *req.PossibleCauses
	}
	if req.SuggestedTests != nil {
		assessment.SuggestedTests = *req.SuggestedTests
	}
	if req.TreatmentSuggestions != nil {
		assessment.TreatmentSuggestions = *req.TreatmentSuggestions
	}
	if req.Notes != nil {
		assessment.Notes = *req.Notes
	}
	if req.Diagnosis != nil {
		assessment.Diagnosis = *req.Diagnosis
	}
	if req.FollowUpDate != nil {
		assessment.FollowUpDate = req.FollowUpDate
	}

	if err := s.repo.Update(ctx, assessment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("assessment")
		}
		return nil, apperrors.Internal(err)
	}
	return assessment, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("assessment")
		}
		return apperrors.Internal(err)
	}
	return nil
}

// expandRefs attaches projected patient and doctor references with two
// batched lookups.
func (s *Service) expandRefs(ctx context.Context, assessments []*model.Assessment) error {
	if len(assessments) == 0 {
		return nil
	}

	patientIDs := make([]primitive.ObjectID, 0, len(assessments))
	doctorIDs := make([]primitive.ObjectID, 0, len(assessments))
	for _, a := range assessments {
		patientIDs = append(patientIDs, a.PatientID)
		doctorIDs = append(doctorIDs, a.DoctorID)
	}

	patientRefs, err := s.expander.PatientRefs(ctx, patientIDs)
	if err != nil {
		return err
	}
	doctorRefs, err := s.expander.DoctorRefs(ctx, doctorIDs)
	if err != nil {
		return err
	}

	for _, a := range assessments {
		a.Patient = patientRefs[a.PatientID]
		a.Doctor = doctorRefs[a.DoctorID]
	}
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
