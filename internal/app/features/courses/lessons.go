package courses

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/system/apierr"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/limits"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type lessonInput struct {
	ID          string           `json:"_id"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	Video       *models.AssetRef `json:"video"`
	FreePreview bool             `json:"free_preview"`
}

// HandleAddLesson handles POST /api/course/lesson/{slug}/{instructorId}.
// The path instructorId must be the caller, and the caller must own the course.
func (h *Handler) HandleAddLesson(w http.ResponseWriter, r *http.Request) {
	if _, err := authz.RequireSelf(r, chi.URLParam(r, "instructorId")); err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	var in lessonInput
	if err := httpjson.Decode(w, r, limits.MaxJSONBody, &in); err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		apierr.Write(w, r, h.Log, apierr.BadRequest("Title is required."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, uid, err := h.ownedBySlug(ctx, r, chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	updated, err := h.Courses.AddLesson(ctx, c.ID, uid, models.Lesson{
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		Video:       in.Video,
		FreePreview: in.FreePreview,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

// HandleUpdateLesson handles PUT /api/course/lesson/{slug}/{instructorId}.
// The lesson is identified by the body's _id and must belong to this course.
func (h *Handler) HandleUpdateLesson(w http.ResponseWriter, r *http.Request) {
	var in lessonInput
	if err := httpjson.Decode(w, r, limits.MaxJSONBody, &in); err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	lessonID, err := parseID(in.ID, "lesson id")
	if err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		apierr.Write(w, r, h.Log, apierr.BadRequest("Title is required."))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, uid, err := h.ownedBySlug(ctx, r, chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.Courses.UpdateLesson(ctx, c.ID, uid, models.Lesson{
		ID:          lessonID,
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		Video:       in.Video,
		FreePreview: in.FreePreview,
	}); err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, httpjson.OK)
}

// HandleRemoveLesson handles PUT /api/course/{slug}/{lessonId}.
func (h *Handler) HandleRemoveLesson(w http.ResponseWriter, r *http.Request) {
	lessonID, err := parseID(chi.URLParam(r, "lessonId"), "lesson id")
	if err != nil {
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
	if _, err := h.Courses.RemoveLesson(ctx, c.ID, uid, lessonID); err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, httpjson.OK)
}
