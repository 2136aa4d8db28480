package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Gender values accepted for a patient record.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Patient is a clinical subject, created and owned by an Identity.
type Patient struct {
	Base           `bson:",inline"`
	Name           string             `json:"name" bson:"name"`
	Age            int                `json:"age" bson:"age"`
	Gender         string             `json:"gender" bson:"gender"`
	Contact        string             `json:"contact,omitempty" bson:"contact,omitempty"`
	Address        string             `json:"address,omitempty" bson:"address,omitempty"`
	MedicalHistory []string           `json:"medical_history" bson:"medical_history"`
	CreatedBy      primitive.ObjectID `json:"created_by" bson:"created_by"`
}

// PatientRef is the projected subset of a Patient attached to expanded reads.
type PatientRef struct {
	ID     string `json:"id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Age    int    `json:"age" bson:"age"`
	Gender string `json:"gender" bson:"gender"`
}

// CreatePatientRequest carries the fields accepted on patient creation.
type CreatePatientRequest struct {
	Name           string   `json:"name" validate:"required"`
	Age            *int     `json:"age" validate:"required,gte=0"`
	Gender         string   `json:"gender" validate:"required,oneof=male female other"`
	Contact        string   `json:"contact"`
	Address        string   `json:"address"`
	MedicalHistory []string `json:"medical_history"`
}

// UpdatePatientRequest is a whitelist-replace update; absent fields keep
// their stored values.
type UpdatePatientRequest struct {
	Name           *string   `json:"name" validate:"omitempty,min=1"`
	Age            *int      `json:"age" validate:"omitempty,gte=0"`
	Gender         *string   `json:"gender" validate:"omitempty,oneof=male female other"`
	Contact        *string   `json:"contact"`
	Address        *string   `json:"address"`
	MedicalHistory *[]string `json:"medical_history"`
}
