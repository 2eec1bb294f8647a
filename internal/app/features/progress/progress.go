package progress

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/system/apierr"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/limits"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type progressInput struct {
	CourseID   string `json:"courseId"`
	LessonID   string `json:"lessonId"`
	QuestionID string `json:"questionId"`
}

// item selects which id of progressInput an endpoint works on.
type item int

const (
	none item = iota
	lesson
	question
)

// request is a parsed progress call.
type request struct {
	user, course primitive.ObjectID
	itemID       string
}

// parse resolves the caller and decodes the body. want names the id the
// endpoint requires besides courseId.
func (h *Handler) parse(w http.ResponseWriter, r *http.Request, want item) (request, error) {
	uid, err := authz.UserID(r)
	if err != nil {
		return request{}, err
	}
	var in progressInput
	if err := httpjson.Decode(w, r, limits.MaxJSONBody, &in); err != nil {
		return request{}, err
	}
	courseID, err := primitive.ObjectIDFromHex(in.CourseID)
	if err != nil {
		return request{}, apierr.BadRequest("Invalid course id.")
	}

	req := request{user: uid, course: courseID}
	switch want {
	case lesson:
		req.itemID = strings.TrimSpace(in.LessonID)
		if req.itemID == "" {
			return request{}, apierr.BadRequest("lessonId is required.")
		}
	case question:
		req.itemID = strings.TrimSpace(in.QuestionID)
		if req.itemID == "" {
			return request{}, apierr.BadRequest("questionId is required.")
		}
	}
	return req, nil
}

// mutate runs op for a parsed request and answers {ok:true}.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, want item,
	op func(ctx context.Context, user, course primitive.ObjectID, id string) error) {
	req, err := h.parse(w, r, want)
	if err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := op(ctx, req.user, req.course, req.itemID); err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, httpjson.OK)
}

// list answers with the id set returned by op; never null.
func (h *Handler) list(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, user, course primitive.ObjectID) ([]string, error)) {
	req, err := h.parse(w, r, none)
	if err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ids, err := op(ctx, req.user, req.course)
	if err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, ids)
}

// HandleMarkCompleted handles POST /api/mark-completed {courseId, lessonId}.
func (h *Handler) HandleMarkCompleted(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, lesson, h.Progress.MarkLesson)
}

// HandleMarkIncomplete handles POST /api/mark-incomplete {courseId, lessonId}.
func (h *Handler) HandleMarkIncomplete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, lesson, h.Progress.UnmarkLesson)
}

// HandleListCompleted handles POST /api/list-completed {courseId}.
func (h *Handler) HandleListCompleted(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Progress.Lessons)
}

// HandleMarkCompletedQuestion handles POST /api/mark-completed-question {courseId, questionId}.
func (h *Handler) HandleMarkCompletedQuestion(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, question, h.Progress.MarkQuestion)
}

// HandleMarkIncompleteQuestion handles POST /api/mark-incomplete-question {courseId, questionId}.
func (h *Handler) HandleMarkIncompleteQuestion(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, question, h.Progress.UnmarkQuestion)
}

// HandleListCompletedQuestion handles POST /api/list-completed-question {courseId}.
func (h *Handler) HandleListCompletedQuestion(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Progress.Questions)
}
