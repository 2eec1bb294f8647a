// internal/app/features/assets/handler.go
package assets

import (
	"errors"

	"github.com/dalemusser/learnhub/internal/app/system/apierr"
	"github.com/dalemusser/learnhub/internal/app/system/limits"
	"github.com/dalemusser/learnhub/internal/app/system/objectstore"
	"github.com/dalemusser/learnhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler proxies image and video uploads to the object store.
type Handler struct {
	Store         objectstore.Store
	MaxImageBytes int64
	MaxVideoBytes int64
	// Limiter throttles uploads per user; nil disables it.
	Limiter *ratelimit.Limiter
	Log     *zap.Logger
}

// NewHandler returns a Handler using store. Zero limits fall back to the
// package defaults.
func NewHandler(store objectstore.Store, maxImageBytes, maxVideoBytes int64, logger *zap.Logger) *Handler {
	if maxImageBytes <= 0 {
		maxImageBytes = limits.DefaultMaxImageBytes
	}
	if maxVideoBytes <= 0 {
		maxVideoBytes = limits.DefaultMaxVideoBytes
	}
	return &Handler{
		Store:         store,
		MaxImageBytes: maxImageBytes,
		MaxVideoBytes: maxVideoBytes,
		Log:           logger,
	}
}

// storeErr classifies an object store failure.
func storeErr(op string, err error) error {
	if errors.Is(err, objectstore.ErrForeignBucket) {
		return apierr.Wrap(apierr.KindBadRequest, "Unknown bucket.", err)
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apierr.Wrap(apierr.KindUpstream, op+" failed.", err)
}
