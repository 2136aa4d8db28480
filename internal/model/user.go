package model

// Roles form a small closed set. Identities are clinicians, not patients.
const (
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)

// User is an authenticated actor (doctor or admin). The password hash is
// never serialized outward regardless of field projection.
type User struct {
	Base         `bson:",inline"`
	Name         string `json:"name" bson:"name"`
	Email        string `json:"email" bson:"email"`
	PasswordHash string `json:"-" bson:"password_hash"`
	Role         string `json:"role" bson:"role"`
	Avatar       string `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

// UserRef is the projected subset of a User attached to expanded reads.
type UserRef struct {
	ID     string `json:"id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Role   string `json:"role" bson:"role"`
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`
}
