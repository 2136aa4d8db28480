package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/medrex/clinical-api/pkg/errors"
)

func TestAnalyzeSymptoms(t *testing.T) {
	a := NewMockAnalyzer()

	findings, err := a.AnalyzeSymptoms(context.Background(), []string{" cough ", "fever", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"cough", "fever"}, findings.Symptoms)
	assert.NotEmpty(t, findings.PossibleCauses)
	assert.NotEmpty(t, findings.SuggestedTests)
	assert.NotEmpty(t, findings.TreatmentSuggestions)
}

func TestAnalyzeSymptomsRejectsEmpty(t *testing.T) {
	a := NewMockAnalyzer()

	for _, symptoms := range [][]string{nil, {}, {""}, {"   ", "\t"}} {
		_, err := a.AnalyzeSymptoms(context.Background(), symptoms)
		appErr, ok := apperrors.As(err)
		require.True(t, ok, "symptoms %v should be rejected", symptoms)
		assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	}
}

func TestAnalyzeDiagnostic(t *testing.T) {
	a := NewMockAnalyzer()

	for _, typ := range []string{"ecg", "x-ray", "ct-scan"} {
		findings, err := a.AnalyzeDiagnostic(context.Background(), typ, map[string]interface{}{"lead": "II"})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, findings.RiskScore, 0.0)
		assert.Less(t, findings.RiskScore, 100.0)
		assert.NotEmpty(t, findings.Observations)
		assert.NotEmpty(t, findings.Conclusion)
	}
}

func TestAnalyzeDiagnosticRejectsUnknownType(t *testing.T) {
	a := NewMockAnalyzer()

	_, err := a.AnalyzeDiagnostic(context.Background(), "mri", nil)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
}
