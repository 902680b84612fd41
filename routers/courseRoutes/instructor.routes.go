package courseRoutes

import (
	courseController "learnhub/controllers/course"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/validators"
	courseValidator "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupInstructorRoutes sets up course authoring routes. Ownership of each
// course is checked by the actions; the group only requires the permission.
func SetupInstructorRoutes(app *fiber.App, h *courseController.Handler, db *gorm.DB, jwtKey string) {
	g := app.Group("/instructor", middleware.JWTMiddleware(jwtKey), middleware.CheckPermission(db, models.PermissionManageCourses))
	id := validators.ID("id")

	// Course CRUD
	g.Post("/courses", courseValidator.CreateCourse(), h.CreateCourse)
	g.Get("/courses", h.ListInstructorCourses)
	g.Get("/courses/:id", id, h.GetCourseForm)
	g.Put("/courses/:id", id, courseValidator.UpdateCourse(), h.UpdateCourse)
	g.Delete("/courses/:id", id, h.DeleteCourse)
	g.Post("/courses/:id/publish", id, h.PublishCourse)
	g.Post("/courses/:id/archive", id, h.ArchiveCourse)

	// Lessons
	g.Get("/courses/:id/lessons", id, h.ListCourseLessons)
	g.Post("/lessons", courseValidator.CreateLesson(), h.CreateLesson)
	g.Put("/lessons/:id", id, courseValidator.UpdateLesson(), h.UpdateLesson)
	g.Delete("/lessons/:id", id, h.DeleteLesson)
	g.Put("/courses/:id/lessons/order", id, courseValidator.ReorderLessons(), h.ReorderLessons)

	// Quiz questions
	g.Post("/lessons/:id/questions", id, courseValidator.AddQuestion(), h.AddQuizQuestion)
	g.Get("/lessons/:id/questions", id, h.ListQuizQuestions)
	g.Put("/questions/:id", id, courseValidator.UpdateQuestion(), h.UpdateQuizQuestion)
	g.Delete("/questions/:id", id, h.DeleteQuizQuestion)

	// Announcements
	g.Post("/announcements", courseValidator.CreateAnnouncement(), h.CreateAnnouncement)
	g.Get("/announcements", h.ListInstructorAnnouncements)
	g.Put("/announcements/:id", id, courseValidator.UpdateAnnouncement(), h.UpdateAnnouncement)
	g.Delete("/announcements/:id", id, h.DeleteAnnouncement)

	// Badges
	g.Post("/badges", courseValidator.CreateBadge(), h.CreateBadge)
	g.Get("/badges", h.ListInstructorBadges)
	g.Put("/badges/:id", id, courseValidator.UpdateBadge(), h.UpdateBadge)
	g.Delete("/badges/:id", id, h.DeleteBadge)
	g.Post("/badges/:id/award", id, courseValidator.AwardBadge(), h.AwardBadge)

	g.Post("/uploads", courseValidator.Upload(), h.UploadFile)
}
