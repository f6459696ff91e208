// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is a user's workflow profile. Department/Course may be blank
// for roles addressed above that granularity (see system/scope).
type Profile struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	FullName string             `bson:"full_name" json:"full_name"`
	Email    string             `bson:"email" json:"email"`
	Role     Role               `bson:"role" json:"role"`

	Department string `bson:"department,omitempty" json:"department,omitempty"`
	Course     string `bson:"course,omitempty" json:"course,omitempty"`

	Status string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
