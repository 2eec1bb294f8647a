package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when the users document does not exist.
var ErrNotFound = errors.New("user not found")

// Store reads and writes the enrollment set on the shared users collection.
// Accounts themselves are owned by the authentication service.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// AddCourse adds courseID to the user's enrollment set. Adding a course
// twice leaves a single entry.
func (s *Store) AddCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*models.User, error) {
	var u models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"courses": courseID}},
		opts,
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CourseIDs returns the user's enrollment set. A user with no enrollments
// yields an empty slice.
func (s *Store) CourseIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var u models.User
	proj := options.FindOne().SetProjection(bson.M{"courses": 1})
	if err := s.c.FindOne(ctx, bson.M{"_id": userID}, proj).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if u.Courses == nil {
		return []primitive.ObjectID{}, nil
	}
	return u.Courses, nil
}
