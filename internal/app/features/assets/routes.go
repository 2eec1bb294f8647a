// internal/app/features/assets/routes.go
package assets

import (
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Register adds the upload routes to r (mounted at /api).
func Register(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/remove-image", h.HandleRemoveImage)
		pr.Post("/course/video-remove/{instructorId}", h.HandleRemoveVideo)

		// Uploads are throttled per user.
		pr.Group(func(up chi.Router) {
			if h.Limiter != nil {
				up.Use(h.Limiter.Middleware(h.Log))
			}
			up.Post("/upload-image", h.HandleUploadImage)
			up.Post("/course/video-upload/{instructorId}", h.HandleUploadVideo)
		})
	})
}
