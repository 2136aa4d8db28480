package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assessment is a doctor's diagnostic assessment of a patient. Read paths
// expand PatientID and DoctorID into PatientRef/UserRef projections.
type Assessment struct {
	Base                 `bson:",inline"`
	PatientID            primitive.ObjectID `json:"patient_id" bson:"patient_id"`
	DoctorID             primitive.ObjectID `json:"doctor_id" bson:"doctor_id"`
	Date                 time.Time          `json:"date" bson:"date"`
	Symptoms             []string           `json:"symptoms" bson:"symptoms"`
	PossibleCauses       []string           `json:"possible_causes" bson:"possible_causes"`
	SuggestedTests       []string           `json:"suggested_tests" bson:"suggested_tests"`
	TreatmentSuggestions []string           `json:"treatment_suggestions" bson:"treatment_suggestions"`
	Notes                string             `json:"notes,omitempty" bson:"notes,omitempty"`
	Diagnosis            string             `json:"diagnosis,omitempty" bson:"diagnosis,omitempty"`
	FollowUpDate         *time.Time         `json:"follow_up_date,omitempty" bson:"follow_up_date,omitempty"`

	// Populated by the explicit expand step, never stored.
	Patient *PatientRef `json:"patient,omitempty" bson:"-"`
	Doctor  *UserRef    `json:"doctor,omitempty" bson:"-"`
}

// CreateAssessmentRequest carries the fields accepted on assessment creation.
// The doctor is stamped from the authenticated identity.
type CreateAssessmentRequest struct {
	PatientID            string     `json:"patient_id" validate:"required"`
	Symptoms             []string   `json:"symptoms"`
	PossibleCauses       []string   `json:"possible_causes"`
	SuggestedTests       []string   `json:"suggested_tests"`
	TreatmentSuggestions []string   `json:"treatment_suggestions"`
	Notes                string     `json:"notes"`
	Diagnosis            string     `json:"diagnosis"`
	FollowUpDate         *time.Time `json:"follow_up_date"`
}

// UpdateAssessmentRequest is a whitelist-replace update.
type UpdateAssessmentRequest struct {
	Symptoms             *[]string  `json:"symptoms"`
	PossibleCauses       *[]string  `json:"possible_causes"`
	SuggestedTests       *[]string  `json:"suggested_tests"`
	TreatmentSuggestions *[]string  `json:"treatment_suggestions"`
	Notes                *string    `json:"notes"`
	Diagnosis            *string    `json:"diagnosis"`
	FollowUpDate         *time.Time `json:"follow_up_date"`
}
