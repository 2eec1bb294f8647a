// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course is the unit a user enrolls in. Lessons and questions live only
// inside their course; they have no collection of their own.
//
// JSON uses "_id" for identifiers because clients post lesson and question
// ids back verbatim (e.g. updateLesson takes the lesson's "_id").
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Slug        string             `bson:"slug" json:"slug"` // unique, derived from Name at creation
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Image       *AssetRef          `bson:"image,omitempty" json:"image,omitempty"`

	Instructor primitive.ObjectID `bson:"instructor" json:"-"`
	// InstructorInfo is the populated form of Instructor. Never stored.
	InstructorInfo *InstructorRef `bson:"-" json:"instructor,omitempty"`

	Published bool    `bson:"published" json:"published"`
	Paid      bool    `bson:"paid" json:"paid"`
	Price     float64 `bson:"price" json:"price"`

	Lessons   []Lesson   `bson:"lessons" json:"lessons"`
	Questions []Question `bson:"questions" json:"questions"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// InstructorRef is the (id, name) projection of a course's instructor.
type InstructorRef struct {
	ID   primitive.ObjectID `bson:"_id" json:"_id"`
	Name string             `bson:"name" json:"name"`
}

// IsOwnedBy reports whether userID is the course's recorded instructor.
func (c *Course) IsOwnedBy(userID primitive.ObjectID) bool {
	return !userID.IsZero() && c.Instructor == userID
}

// Lesson is a subdocument of Course.lessons.
type Lesson struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Content     string             `bson:"content,omitempty" json:"content,omitempty"`
	Video       *AssetRef          `bson:"video,omitempty" json:"video,omitempty"`
	FreePreview bool               `bson:"free_preview" json:"free_preview"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Question is a subdocument of Course.questions. Options keep their order.
type Question struct {
	ID      primitive.ObjectID `bson:"_id" json:"_id"`
	Title   string             `bson:"title" json:"title"`
	Slug    string             `bson:"slug" json:"slug"`
	Content string             `bson:"content,omitempty" json:"content,omitempty"`
	Answer  string             `bson:"answer,omitempty" json:"answer,omitempty"`
	Options []string           `bson:"options" json:"options"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// FindLesson returns the lesson with the given id, if present.
func (c *Course) FindLesson(id primitive.ObjectID) (Lesson, bool) {
	for _, l := range c.Lessons {
		if l.ID == id {
			return l, true
		}
	}
	return Lesson{}, false
}

// FindQuestion returns the question with the given id, if present.
func (c *Course) FindQuestion(id primitive.ObjectID) (Question, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
