// internal/app/features/courses/routes.go
package courses

import (
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Register adds the course routes to r, which bootstrap mounts at /api.
// Listing and reading a course are public; everything else needs a session.
//
// Static segments (publish, lesson, question) take precedence over {slug}
// in chi, so a course cannot shadow them.
func Register(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.Get("/courses", h.HandleList)
	r.Get("/course/{slug}", h.HandleRead)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/course", h.HandleCreate)
		pr.Get("/instructor-courses", h.HandleInstructorCourses)
		pr.Put("/course/{slug}", h.HandleUpdate)

		pr.Put("/course/publish/{courseId}", h.HandlePublish)
		pr.Put("/course/unpublish/{courseId}", h.HandleUnpublish)

		pr.Post("/course/lesson/{slug}/{instructorId}", h.HandleAddLesson)
		pr.Put("/course/lesson/{slug}/{instructorId}", h.HandleUpdateLesson)
		pr.Put("/course/{slug}/{lessonId}", h.HandleRemoveLesson)

		pr.Post("/course/question/{slug}/{instructorId}", h.HandleAddQuestion)
		pr.Put("/course/question/{slug}/{instructorId}", h.HandleUpdateQuestion)
		pr.Delete("/course/question/{slug}/{questionId}", h.HandleRemoveQuestion)
	})
}
