// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops the upload limiter, then releases the object store and the
// MongoDB client. Every step is attempted; the errors are joined.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.UploadLimiter != nil {
		deps.UploadLimiter.Close()
	}

	var errs []error
	if deps.ObjectStore != nil {
		logger.Info("closing object store", zap.String("backend", deps.ObjectStore.Name()))
		if err := deps.ObjectStore.Close(); err != nil {
			logger.Error("object store close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
