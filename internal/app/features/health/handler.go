package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/objectstore"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client  *mongo.Client
	Storage objectstore.Store
	Log     *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client, the object
// store and logger.
func NewHandler(client *mongo.Client, storage objectstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Client:  client,
		Storage: storage,
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string         `json:"status"`
	Database string         `json:"database"`
	Storage  *storageStatus `json:"storage,omitempty"`
	Message  string         `json:"message,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type storageStatus struct {
	Backend string `json:"backend"`
	Bucket  string `json:"bucket"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "storage":{"backend":"s3","bucket":"…"} }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}
	if h.Storage != nil {
		resp.Storage = &storageStatus{Backend: h.Storage.Name(), Bucket: h.Storage.Bucket()}
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		httpjson.Write(w, http.StatusServiceUnavailable, resp)
		return
	}

	httpjson.Write(w, http.StatusOK, resp)
}
