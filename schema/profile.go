package schema

import "time"

const (
	ProfileCollection = "profile"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Profile - intake questionnaire of a user
type Profile struct {
	UserID    string    `json:"user_id" bson:"user_id"`
	Email     string    `json:"email" bson:"email,omitempty"`
	Name      string    `json:"name" bson:"name,omitempty"`
	Age       *int      `json:"age,omitempty" bson:"age,omitempty"`
	Gender    string    `json:"gender" bson:"gender,omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ProfileUpdate carries the fields to merge into a profile. Nil fields
// are left untouched.
type ProfileUpdate struct {
	Email  *string `json:"email"`
	Name   *string `json:"name"`
	Age    *int    `json:"age"`
	Gender *string `json:"gender"`
}
