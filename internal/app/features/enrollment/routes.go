// internal/app/features/enrollment/routes.go
package enrollment

import (
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Register adds the enrollment routes to r (mounted at /api).
func Register(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/check-enrollment/{courseId}", h.HandleCheck)
		pr.Post("/free-enrollment/{courseId}", h.HandleFree)
		pr.Post("/paid-enrollment/{courseId}", h.HandlePaid)
		pr.Get("/user-courses", h.HandleUserCourses)
	})
}
