// Package analysis defines the inference-service boundary. The shipped
// implementation returns synthetic findings; a real model service can be
// plugged in behind the Analyzer interface without touching the handlers.
package analysis

import (
	"context"
	"math/rand"
	"strings"

	"github.com/medrex/clinical-api/internal/model"
	apperrors "github.com/medrex/clinical-api/pkg/errors"
)

// SymptomFindings is the structured result of a symptom analysis.
type SymptomFindings struct {
	Symptoms             []string `json:"symptoms"`
	PossibleCauses       []string `json:"possible_causes"`
	SuggestedTests       []string `json:"suggested_tests"`
	TreatmentSuggestions []string `json:"treatment_suggestions"`
}

// DiagnosticFindings is the structured result of a diagnostic-data analysis.
type DiagnosticFindings struct {
	RiskScore    float64  `json:"risk_score"`
	Observations []string `json:"observations"`
	Conclusion   string   `json:"conclusion"`
}

// Analyzer is the external inference-service interface.
type Analyzer interface {
	AnalyzeSymptoms(ctx context.Context, symptoms []string) (*SymptomFindings, error)
	AnalyzeDiagnostic(ctx context.Context, diagnosticType string, data map[string]interface{}) (*DiagnosticFindings, error)
}

// MockAnalyzer returns fixed-shape synthetic findings with no persistence
// side effects.
type MockAnalyzer struct{}

func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{}
}

func (a *MockAnalyzer) AnalyzeSymptoms(_ context.Context, symptoms []string) (*SymptomFindings, error) {
	cleaned := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		s = strings.TrimSpace(s)
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return nil, apperrors.Validation("at least one symptom is required", apperrors.FieldError{
			Field:  "symptoms",
			Reason: "must contain at least one non-empty symptom",
		})
	}

	return &SymptomFindings{
		Symptoms:             cleaned,
		PossibleCauses:       []string{"Upper respiratory infection", "Mild pneumonia", "Bronchitis"},
		SuggestedTests:       []string{"Chest X-ray", "Blood culture", "Sputum analysis"},
		TreatmentSuggestions: []string{"Antibiotics if bacterial", "Rest", "Increased fluid intake"},
	}, nil
}

func (a *MockAnalyzer) AnalyzeDiagnostic(_ context.Context, diagnosticType string, _ map[string]interface{}) (*DiagnosticFindings, error) {
	switch diagnosticType {
	case model.DiagnosticECG, model.DiagnosticXRay, model.DiagnosticCTScan:
	default:
		return nil, apperrors.Validation("invalid diagnostic type", apperrors.FieldError{
			Field:  "type",
			Reason: "must be one of: ecg x-ray ct-scan",
		})
	}

	return &DiagnosticFindings{
		RiskScore:    float64(rand.Intn(100)),
		Observations: []string{"Regular rhythm", "Normal QRS complex", "No ST-segment abnormalities"},
		Conclusion:   "Normal findings. No evidence of acute pathology.",
	}, nil
}
