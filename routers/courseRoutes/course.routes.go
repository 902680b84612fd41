package courseRoutes

import (
	courseController "learnhub/controllers/course"
	"learnhub/middleware"
	"learnhub/validators"
	courseValidator "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the public catalog and the student routes
func SetupCourseRoutes(app *fiber.App, h *courseController.Handler, jwtKey string) {
	id := validators.ID("id")

	// Public catalog
	catalog := app.Group("/course")
	catalog.Get("/list", courseValidator.CourseList(), h.ListPublishedCourses)
	catalog.Get("/search", courseValidator.SearchCourses(), h.SearchCourses)
	catalog.Get("/:id", id, h.GetPublishedCourse)
	catalog.Get("/:id/lessons", id, h.GetPublishedLessons)
	app.Get("/certificate/verify/:code", h.VerifyCertificate)

	// Student
	user := app.Group("/user", middleware.JWTMiddleware(jwtKey))
	user.Post("/courses/:id/enroll", id, h.Enroll)
	user.Get("/courses/:id/progress", id, h.GetProgress)
	user.Post("/courses/:id/certificate", id, h.IssueCertificate)
	user.Post("/lessons/:id/complete", id, h.CompleteLesson)
	user.Post("/lessons/:id/attempts", id, h.StartQuizAttempt)
	user.Put("/attempts/:id/answers", id, courseValidator.Answer(), h.AnswerQuestion)
	user.Post("/attempts/:id/submit", id, h.SubmitQuizAttempt)
	user.Get("/attempts/:id", id, h.GetQuizAttempt)
	user.Get("/enrollments", h.ListMyEnrollments)
	user.Get("/certificates", h.ListMyCertificates)
	user.Get("/announcements", h.ListStudentAnnouncements)
	user.Get("/badges", h.ListMyBadges)
}
