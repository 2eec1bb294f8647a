// internal/app/features/courses/handler.go
package courses

import (
	"context"
	"errors"
	"net/http"

	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	"github.com/dalemusser/learnhub/internal/app/system/apierr"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/slugs"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the course, lesson and question endpoints.
type Handler struct {
	Courses *coursestore.Store
	Log     *zap.Logger
}

// NewHandler constructs a courses Handler bound to db.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Courses: coursestore.New(db),
		Log:     logger,
	}
}

// fail translates store sentinels into API errors and writes the response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, coursestore.ErrSlugTaken):
		err = apierr.Wrap(apierr.KindConflict, "Title is taken", err)
	case errors.Is(err, coursestore.ErrNameRequired):
		err = apierr.Wrap(apierr.KindBadRequest, "Name is required.", err)
	case errors.Is(err, coursestore.ErrNotFound):
		err = apierr.Wrap(apierr.KindNotFound, "Course not found.", err)
	case errors.Is(err, coursestore.ErrNotOwner):
		err = apierr.Wrap(apierr.KindUnauthorized, "Unauthorized", err)
	case errors.Is(err, coursestore.ErrLessonNotFound):
		err = apierr.Wrap(apierr.KindNotFound, "Lesson not found.", err)
	case errors.Is(err, coursestore.ErrQuestionNotFound):
		err = apierr.Wrap(apierr.KindNotFound, "Question not found.", err)
	}
	apierr.Write(w, r, h.Log, err)
}

// bySlug loads the course named by a {slug} path parameter. A malformed
// slug names no course and is answered without a query.
func (h *Handler) bySlug(ctx context.Context, slug string) (models.Course, error) {
	if !slugs.Valid(slug) {
		return models.Course{}, coursestore.ErrNotFound
	}
	return h.Courses.GetBySlug(ctx, slug)
}

// ownedBySlug loads the course and applies the ownership gate against its
// stored instructor. It returns the course and the caller's id.
func (h *Handler) ownedBySlug(ctx context.Context, r *http.Request, slug string) (models.Course, primitive.ObjectID, error) {
	c, err := h.bySlug(ctx, slug)
	if err != nil {
		return models.Course{}, primitive.NilObjectID, err
	}
	uid, err := authz.RequireOwner(r, &c)
	if err != nil {
		h.Log.Warn("course ownership denied",
			zap.String("slug", slug),
			zap.String("instructor", c.Instructor.Hex()))
		return models.Course{}, primitive.NilObjectID, err
	}
	return c, uid, nil
}

// parseID parses a hex ObjectID from a path or body field.
func parseID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apierr.BadRequest("Invalid " + what + ".")
	}
	return id, nil
}
