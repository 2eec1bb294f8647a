// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	assetsfeature "github.com/dalemusser/learnhub/internal/app/features/assets"
	coursesfeature "github.com/dalemusser/learnhub/internal/app/features/courses"
	enrollmentfeature "github.com/dalemusser/learnhub/internal/app/features/enrollment"
	healthfeature "github.com/dalemusser/learnhub/internal/app/features/health"
	progressfeature "github.com/dalemusser/learnhub/internal/app/features/progress"
	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. The JSON API lives under /api; /health is
// unauthenticated.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Refresh the session user from the users collection on each request.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.ObjectStore, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	coursesHandler := coursesfeature.NewHandler(deps.MongoDatabase, logger)
	enrollmentHandler := enrollmentfeature.NewHandler(deps.MongoDatabase, logger)
	progressHandler := progressfeature.NewHandler(deps.MongoDatabase, logger)
	assetsHandler := assetsfeature.NewHandler(deps.ObjectStore, appCfg.MaxImageBytes, appCfg.MaxVideoBytes, logger)
	assetsHandler.Limiter = deps.UploadLimiter

	// The features share the /api/course prefix, so each registers onto the
	// same subrouter rather than mounting its own.
	r.Route("/api", func(api chi.Router) {
		coursesfeature.Register(api, coursesHandler, sessionMgr)
		enrollmentfeature.Register(api, enrollmentHandler, sessionMgr)
		progressfeature.Register(api, progressHandler, sessionMgr)
		assetsfeature.Register(api, assetsHandler, sessionMgr)
	})

	return r, nil
}
