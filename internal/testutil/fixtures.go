package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/slugs"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Repeated calls on the same request accumulate parameters.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// CreateUser inserts a users document for tu and returns it.
func (f *Fixtures) CreateUser(ctx context.Context, tu TestUser) models.User {
	f.t.Helper()

	u := models.User{
		ID:    tu.ObjectID(),
		Name:  tu.Name,
		Email: tu.ID + "@test.com",
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("CreateUser(%s) failed: %v", tu.Name, err)
	}
	return u
}

// CourseOpt adjusts a course before CreateCourse inserts it.
type CourseOpt func(*models.Course)

// Published marks the fixture course as published.
func Published() CourseOpt { return func(c *models.Course) { c.Published = true } }

// Paid marks the fixture course as paid with the given price.
func Paid(price float64) CourseOpt {
	return func(c *models.Course) {
		c.Paid = true
		c.Price = price
	}
}

// WithLessons appends lessons with the given titles.
func WithLessons(titles ...string) CourseOpt {
	return func(c *models.Course) {
		for _, title := range titles {
			c.Lessons = append(c.Lessons, models.Lesson{
				ID:        primitive.NewObjectID(),
				Title:     title,
				Slug:      slugs.Make(title),
				CreatedAt: c.CreatedAt,
			})
		}
	}
}

// WithQuestions appends questions with the given titles.
func WithQuestions(titles ...string) CourseOpt {
	return func(c *models.Course) {
		for _, title := range titles {
			c.Questions = append(c.Questions, models.Question{
				ID:        primitive.NewObjectID(),
				Title:     title,
				Slug:      slugs.Make(title),
				Options:   []string{"a", "b"},
				Answer:    "a",
				CreatedAt: c.CreatedAt,
			})
		}
	}
}

// CreateCourse inserts an unpublished free course owned by instructor.
func (f *Fixtures) CreateCourse(ctx context.Context, instructor primitive.ObjectID, name string, opts ...CourseOpt) models.Course {
	f.t.Helper()

	c := models.Course{
		ID:         primitive.NewObjectID(),
		Slug:       slugs.Make(name),
		Name:       name,
		Instructor: instructor,
		Lessons:    []models.Lesson{},
		Questions:  []models.Question{},
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if _, err := f.db.Collection("courses").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("CreateCourse(%s) failed: %v", name, err)
	}
	return c
}
