package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Diagnostic types form a closed set.
const (
	DiagnosticECG    = "ecg"
	DiagnosticXRay   = "x-ray"
	DiagnosticCTScan = "ct-scan"
)

// Diagnostic is an immutable diagnostic record. There is no update or delete
// path for diagnostics; the collection is append-only for audit purposes.
type Diagnostic struct {
	Base         `bson:",inline"`
	PatientID    primitive.ObjectID     `json:"patient_id" bson:"patient_id"`
	DoctorID     primitive.ObjectID     `json:"doctor_id" bson:"doctor_id"`
	Type         string                 `json:"type" bson:"type"`
	Date         time.Time              `json:"date" bson:"date"`
	FileURL      string                 `json:"file_url,omitempty" bson:"file_url,omitempty"`
	Observations []string               `json:"observations" bson:"observations"`
	Conclusion   string                 `json:"conclusion,omitempty" bson:"conclusion,omitempty"`
	RiskScore    float64                `json:"risk_score" bson:"risk_score"`
	Data         map[string]interface{} `json:"data,omitempty" bson:"data,omitempty"`

	// Populated by the explicit expand step, never stored.
	Patient *PatientRef `json:"patient,omitempty" bson:"-"`
	Doctor  *UserRef    `json:"doctor,omitempty" bson:"-"`
}

// CreateDiagnosticRequest carries the multipart form fields accepted on
// diagnostic creation. The file itself travels as the `file` part.
type CreateDiagnosticRequest struct {
	PatientID  string                 `json:"patient_id" validate:"required"`
	Type       string                 `json:"type" validate:"required,oneof=ecg x-ray ct-scan"`
	Conclusion string                 `json:"conclusion"`
	RiskScore  float64                `json:"risk_score" validate:"gte=0,lt=100"`
	Obs        []string               `json:"observations"`
	Data       map[string]interface{} `json:"data"`
}
