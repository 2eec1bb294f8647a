package enrollment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/apierr"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type checkResponse struct {
	Status bool          `json:"status"`
	Course models.Course `json:"course"`
}

type enrollResponse struct {
	Message string        `json:"message"`
	Course  models.Course `json:"course"`
}

func courseIDParam(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "courseId"))
	if err != nil {
		return primitive.NilObjectID, apierr.BadRequest("Invalid course id.")
	}
	return id, nil
}

// HandleCheck handles GET /api/check-enrollment/{courseId}.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	uid, err := authz.UserID(r)
	if err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	courseID, err := courseIDParam(r)
	if err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ids, err := h.Users.CourseIDs(ctx, uid)
	if err != nil && !errors.Is(err, userstore.ErrNotFound) {
		h.fail(w, r, err)
		return
	}

	enrolled := false
	for _, id := range ids {
		if id == courseID {
			enrolled = true
			break
		}
	}
	httpjson.Write(w, http.StatusOK, checkResponse{Status: enrolled, Course: c})
}

// HandleFree handles POST /api/free-enrollment/{courseId}. A paid course is
// refused with 402 and the enrollment set is left alone.
func (h *Handler) HandleFree(w http.ResponseWriter, r *http.Request) {
	h.enroll(w, r, false)
}

// HandlePaid handles POST /api/paid-enrollment/{courseId}. Payment is
// settled elsewhere before the client calls this.
func (h *Handler) HandlePaid(w http.ResponseWriter, r *http.Request) {
	h.enroll(w, r, true)
}

func (h *Handler) enroll(w http.ResponseWriter, r *http.Request, allowPaid bool) {
	uid, err := authz.UserID(r)
	if err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}
	courseID, err := courseIDParam(r)
	if err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Courses.GetByID(ctx, courseID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if c.Paid && !allowPaid {
		apierr.Write(w, r, h.Log, apierr.New(apierr.KindPaymentRequired, "This course requires payment."))
		return
	}

	if _, err := h.Users.AddCourse(ctx, uid, courseID); err != nil {
		h.fail(w, r, err)
		return
	}

	h.Log.Info("user enrolled",
		zap.String("user_id", uid.Hex()),
		zap.String("course_id", courseID.Hex()),
		zap.Bool("paid", c.Paid))
	httpjson.Write(w, http.StatusOK, enrollResponse{
		Message: fmt.Sprintf("You are now enrolled in %s", c.Name),
		Course:  c,
	})
}

// HandleUserCourses handles GET /api/user-courses.
func (h *Handler) HandleUserCourses(w http.ResponseWriter, r *http.Request) {
	uid, err := authz.UserID(r)
	if err != nil {
		apierr.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ids, err := h.Users.CourseIDs(ctx, uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.Courses.ListByIDs(ctx, ids)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}
