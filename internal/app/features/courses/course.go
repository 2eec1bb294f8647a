package courses

import (
	"context"
	"net/http"

	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	"github.com/dalemusser/learnhub/internal/app/system/apierr"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/limits"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type courseInput struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Price       float64          `json:"price"`
	Paid        bool             `json:"paid"`
	Image       *models.AssetRef `json:"image"`
}

// HandleCreate handles POST /api/course.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, err := authz.UserID(r)
	if err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	var in courseInput
	if err := httpjson.Decode(w, r, limits.MaxJSONBody, &in); err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Courses.Create(ctx, models.Course{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Paid:        in.Paid,
		Image:       in.Image,
		Instructor:  uid,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.Log.Info("course created",
		zap.String("course_id", c.ID.Hex()),
		zap.String("slug", c.Slug),
		zap.String("instructor", uid.Hex()))
	httpjson.Write(w, http.StatusOK, c)
}

// HandleRead handles GET /api/course/{slug}.
func (h *Handler) HandleRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.bySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, c)
}

// HandleList handles GET /api/courses: every published course.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Courses.ListPublished(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleInstructorCourses handles GET /api/instructor-courses: the caller's
// own courses, published or not.
func (h *Handler) HandleInstructorCourses(w http.ResponseWriter, r *http.Request) {
	uid, err := authz.UserID(r)
	if err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Courses.ListByInstructor(ctx, uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// HandleUpdate handles PUT /api/course/{slug}. Only the editable fields in
// coursestore.Fields change.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in courseInput
	if err := httpjson.Decode(w, r, limits.MaxJSONBody, &in); err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, uid, err := h.ownedBySlug(ctx, r, chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	updated, err := h.Courses.Update(ctx, c.ID, uid, coursestore.Fields{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Paid:        in.Paid,
		Image:       in.Image,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

// HandlePublish handles PUT /api/course/publish/{courseId}.
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

// HandleUnpublish handles PUT /api/course/unpublish/{courseId}.
func (h *Handler) HandleUnpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *Handler) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	id, err := parseID(chi.URLParam(r, "courseId"), "course id")
	if err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Courses.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	uid, err := authz.RequireOwner(r, &c)
	if err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}

	updated, err := h.Courses.SetPublished(ctx, id, uid, published)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.Log.Info("course visibility changed",
		zap.String("course_id", id.Hex()),
		zap.Bool("published", published))
	httpjson.Write(w, http.StatusOK, updated)
}
