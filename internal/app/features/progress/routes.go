// internal/app/features/progress/routes.go
package progress

import (
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Register adds the progress routes to r (mounted at /api). All take the
// course and item ids in a JSON body.
func Register(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/mark-completed", h.HandleMarkCompleted)
		pr.Post("/list-completed", h.HandleListCompleted)
		pr.Post("/mark-incomplete", h.HandleMarkIncomplete)

		pr.Post("/mark-completed-question", h.HandleMarkCompletedQuestion)
		pr.Post("/list-completed-question", h.HandleListCompletedQuestion)
		pr.Post("/mark-incomplete-question", h.HandleMarkIncompleteQuestion)
	})
}
