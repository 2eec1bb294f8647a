// internal/app/features/progress/handler.go
package progress

import (
	progressstore "github.com/dalemusser/learnhub/internal/app/store/progress"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the lesson and question completion endpoints.
type Handler struct {
	Progress *progressstore.Store
	Log      *zap.Logger
}

// NewHandler constructs a progress Handler bound to db.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Progress: progressstore.New(db),
		Log:      logger,
	}
}
