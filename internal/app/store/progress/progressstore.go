// internal/app/store/progress/progressstore.go
package progressstore

import (
	"context"
	"errors"

	"github.com/dalemusser/learnhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store tracks completed lessons (completeds) and answered questions
// (completed_questions) per (user, course). Each collection has a unique
// (user, course) index, so there is never more than one record per pair.
type Store struct {
	lessons   *mongo.Collection
	questions *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		lessons:   db.Collection("completeds"),
		questions: db.Collection("completed_questions"),
	}
}

// MarkLesson adds lessonID to the user's completed set for course,
// creating the record on first use.
func (s *Store) MarkLesson(ctx context.Context, user, course primitive.ObjectID, lessonID string) error {
	return addToSet(ctx, s.lessons, "lessons", user, course, lessonID)
}

// UnmarkLesson removes lessonID. A missing record or id is a no-op.
func (s *Store) UnmarkLesson(ctx context.Context, user, course primitive.ObjectID, lessonID string) error {
	return pull(ctx, s.lessons, "lessons", user, course, lessonID)
}

// Lessons returns the completed lesson ids, empty when there is no record.
func (s *Store) Lessons(ctx context.Context, user, course primitive.ObjectID) ([]string, error) {
	var rec models.Completed
	if err := findRecord(ctx, s.lessons, "lessons", user, course, &rec); err != nil {
		return nil, err
	}
	if rec.Lessons == nil {
		return []string{}, nil
	}
	return rec.Lessons, nil
}

// MarkQuestion adds questionID to the user's answered set for course.
func (s *Store) MarkQuestion(ctx context.Context, user, course primitive.ObjectID, questionID string) error {
	return addToSet(ctx, s.questions, "questions", user, course, questionID)
}

// UnmarkQuestion removes questionID. A missing record or id is a no-op.
func (s *Store) UnmarkQuestion(ctx context.Context, user, course primitive.ObjectID, questionID string) error {
	return pull(ctx, s.questions, "questions", user, course, questionID)
}

// Questions returns the answered question ids, empty when there is no record.
func (s *Store) Questions(ctx context.Context, user, course primitive.ObjectID) ([]string, error) {
	var rec models.CompletedQuestion
	if err := findRecord(ctx, s.questions, "questions", user, course, &rec); err != nil {
		return nil, err
	}
	if rec.Questions == nil {
		return []string{}, nil
	}
	return rec.Questions, nil
}

// addToSet upserts the (user, course) record with id in field. Two first
// upserts racing on the unique index leave one loser with a duplicate-key
// error; by then the record exists, so one plain update finishes the job.
func addToSet(ctx context.Context, c *mongo.Collection, field string, user, course primitive.ObjectID, id string) error {
	filter := bson.M{"user": user, "course": course}
	update := bson.M{"$addToSet": bson.M{field: id}}

	_, err := c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && wafflemongo.IsDup(err) {
		_, err = c.UpdateOne(ctx, filter, update)
	}
	return err
}

func pull(ctx context.Context, c *mongo.Collection, field string, user, course primitive.ObjectID, id string) error {
	_, err := c.UpdateOne(ctx,
		bson.M{"user": user, "course": course},
		bson.M{"$pull": bson.M{field: id}},
	)
	return err
}

// findRecord decodes the (user, course) record into out; a missing record
// leaves out untouched and is not an error.
func findRecord(ctx context.Context, c *mongo.Collection, field string, user, course primitive.ObjectID, out any) error {
	proj := options.FindOne().SetProjection(bson.M{field: 1})
	err := c.FindOne(ctx, bson.M{"user": user, "course": course}, proj).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return err
}
