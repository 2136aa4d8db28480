package diagnostic

import (
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medrex/clinical-api/internal/model"
	"github.com/medrex/clinical-api/internal/query"
	"github.com/medrex/clinical-api/internal/repository"
	"github.com/medrex/clinical-api/internal/service/expand"
	"github.com/medrex/clinical-api/pkg/blob"
	apperrors "github.com/medrex/clinical-api/pkg/errors"
	"github.com/medrex/clinical-api/pkg/validator"
)

type Service struct {
	repo      repository.DiagnosticRepository
	patients  repository.PatientRepository
	blobs     blob.Store
	expander  *expand.Expander
	validator *validator.Validator
}

func NewService(repo repository.DiagnosticRepository, patients repository.PatientRepository, blobs blob.Store, expander *expand.Expander) *Service {
	return &Service{
		repo:      repo,
		patients:  patients,
		blobs:     blobs,
		expander:  expander,
		validator: validator.New(),
	}
}

func (s *Service) List(ctx context.Context, spec *query.Spec) ([]*model.Diagnostic, error) {
	diagnostics, err := s.repo.List(ctx, spec)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.expandRefs(ctx, diagnostics); err != nil {
		return nil, apperrors.Internal(err)
	}
	return diagnostics, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*model.Diagnostic, error) {
	diagnostic, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("diagnostic")
		}
		return nil, apperrors.Internal(err)
	}
	if err := s.expandRefs(ctx, []*model.Diagnostic{diagnostic}); err != nil {
		return nil, apperrors.Internal(err)
	}
	return diagnostic, nil
}

// Create validates the request, admits the optional file through the upload
// validator, and stamps the authenticated identity as the ordering doctor.
// The file is admitted before the document is written so a rejected upload
// leaves no record behind.
func (s *Service) Create(ctx context.Context, req *model.CreateDiagnosticRequest, doctorID primitive.ObjectID, file *blob.Metadata, content io.Reader) (*model.Diagnostic, error) {
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

	var fileURL string
	if file != nil {
		fileURL, err = s.blobs.Save(ctx, *file, content)
		if err != nil {
			switch {
			case errors.Is(err, blob.ErrInvalidContentType):
				return nil, apperrors.InvalidUpload("file type is not allowed: expected pdf, jpeg, png, or csv")
			case errors.Is(err, blob.ErrFileTooLarge):
				return nil, apperrors.UploadTooLarge("file exceeds the 5 MiB limit")
			default:
				return nil, apperrors.Internal(err)
			}
		}
	}

	diagnostic := &model.Diagnostic{
		PatientID:    patientID,
		DoctorID:     doctorID,
		Type:         req.Type,
		FileURL:      fileURL,
		Observations: req.Obs,
		Conclusion:   req.Conclusion,
		RiskScore:    req.RiskScore,
		Data:         req.Data,
	}
	if diagnostic.Observations == nil {
		diagnostic.Observations = []string{}
	}

	if err := s.repo.Create(ctx, diagnostic); err != nil {
		return nil, apperrors.Internal(err)
	}
	return diagnostic, nil
}

func (s *Service) expandRefs(ctx context.Context, diagnostics []*model.Diagnostic) error {
	if len(diagnostics) == 0 {
		return nil
	}

	patientIDs := make([]primitive.ObjectID, 0, len(diagnostics))
	doctorIDs := make([]primitive.ObjectID, 0, len(diagnostics))
	for _, d := range diagnostics {
		patientIDs = append(patientIDs, d.PatientID)
		doctorIDs = append(doctorIDs, d.DoctorID)
	}

	patientRefs, err := s.expander.PatientRefs(ctx, patientIDs)
	if err != nil {
		return err
	}
	doctorRefs, err := s.expander.DoctorRefs(ctx, doctorIDs)
	if err != nil {
		return err
	}

	for _, d := range diagnostics {
		d.Patient = patientRefs[d.PatientID]
		d.Doctor = doctorRefs[d.DoctorID]
	}
	return nil
}
