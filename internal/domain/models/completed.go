// internal/domain/models/completed.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Completed records which lessons a user finished in one course.
// Exactly one document exists per (User, Course); a unique index enforces it.
// Lesson ids are stored as strings, exactly as clients send them.
type Completed struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User    primitive.ObjectID `bson:"user" json:"user"`
	Course  primitive.ObjectID `bson:"course" json:"course"`
	Lessons []string           `bson:"lessons" json:"lessons"`
}

// CompletedQuestion is the question-level twin of Completed.
type CompletedQuestion struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Course    primitive.ObjectID `bson:"course" json:"course"`
	Questions []string           `bson:"questions" json:"questions"`
}
