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

type questionInput struct {
	ID      string   `json:"_id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Answer  string   `json:"answer"`
	Options []string `json:"options"`
}

// HandleAddQuestion handles POST /api/course/question/{slug}/{instructorId}.
func (h *Handler) HandleAddQuestion(w http.ResponseWriter, r *http.Request) {
	if _, err := authz.RequireSelf(r, chi.URLParam(r, "instructorId")); err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	var in questionInput
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

	updated, err := h.Courses.AddQuestion(ctx, c.ID, uid, models.Question{
		Title:   strings.TrimSpace(in.Title),
		Content: in.Content,
		Answer:  in.Answer,
		Options: in.Options,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

// HandleUpdateQuestion handles PUT /api/course/question/{slug}/{instructorId}.
func (h *Handler) HandleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var in questionInput
	if err := httpjson.Decode(w, r, limits.MaxJSONBody, &in); err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	questionID, err := parseID(in.ID, "question id")
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
	if _, err := h.Courses.UpdateQuestion(ctx, c.ID, uid, models.Question{
		ID:      questionID,
		Title:   strings.TrimSpace(in.Title),
		Content: in.Content,
		Answer:  in.Answer,
		Options: in.Options,
	}); err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, httpjson.OK)
}

// HandleRemoveQuestion handles DELETE /api/course/question/{slug}/{questionId}.
func (h *Handler) HandleRemoveQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := parseID(chi.URLParam(r, "questionId"), "question id")
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
	if _, err := h.Courses.RemoveQuestion(ctx, c.ID, uid, questionID); err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, httpjson.OK)
}
