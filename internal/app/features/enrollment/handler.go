// internal/app/features/enrollment/handler.go
package enrollment

import (
	"errors"
	"net/http"

	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/apierr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the enrollment endpoints. Enrollment is the set of course
// ids on the user's document; it only ever grows here.
type Handler struct {
	Courses *coursestore.Store
	Users   *userstore.Store
	Log     *zap.Logger
}

// NewHandler constructs an enrollment Handler bound to db.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Courses: coursestore.New(db),
		Users:   userstore.New(db),
		Log:     logger,
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, coursestore.ErrNotFound):
		err = apierr.Wrap(apierr.KindNotFound, "Course not found.", err)
	case errors.Is(err, userstore.ErrNotFound):
		err = apierr.Wrap(apierr.KindNotFound, "User not found.", err)
	}
	apierr.Write(w, r, h.Log, err)
}
