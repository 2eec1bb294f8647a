// internal/domain/models/user.go
package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the slice of the shared users collection this service reads and
// writes. Accounts are created by the authentication service; we only touch
// Courses (the enrollment set) and read Name for instructor population.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email,omitempty" json:"email,omitempty"`
	// Roles as written by the authentication service, e.g. ["Subscriber", "Instructor"].
	Roles []string `bson:"role,omitempty" json:"role,omitempty"`

	// Courses is the enrollment set. Uniqueness is kept by $addToSet.
	Courses []primitive.ObjectID `bson:"courses,omitempty" json:"courses,omitempty"`
}

// PrimaryRole is the most privileged role, lowercased: "admin", then
// "instructor", otherwise "subscriber".
func (u *User) PrimaryRole() string {
	best := "subscriber"
	for _, r := range u.Roles {
		switch strings.ToLower(strings.TrimSpace(r)) {
		case "admin":
			return "admin"
		case "instructor":
			best = "instructor"
		}
	}
	return best
}

// IsEnrolled reports whether courseID is in the user's enrollment set.
func (u *User) IsEnrolled(courseID primitive.ObjectID) bool {
	for _, id := range u.Courses {
		if id == courseID {
			return true
		}
	}
	return false
}
