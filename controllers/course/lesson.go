package courseController

import (
	"learnhub/middleware"
	"learnhub/validators"
	courseValidator "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateLesson(c *fiber.Ctx) error {
	req := validators.Request[courseValidator.CreateLessonRequest](c)
	res := h.acts.CreateLesson(c.UserContext(), middleware.SessionFrom(c), req.Input())
	return middleware.ActionResponse(c, fiber.StatusCreated, "Lesson created successfully.", res)
}

func (h *Handler) UpdateLesson(c *fiber.Ctx) error {
	req := validators.Request[courseValidator.UpdateLessonRequest](c)
	res := h.acts.UpdateLesson(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"), req.Update())
	return middleware.ActionResponse(c, fiber.StatusOK, "Lesson updated successfully.", res)
}

func (h *Handler) DeleteLesson(c *fiber.Ctx) error {
	res := h.acts.DeleteLesson(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Lesson deleted successfully.", res)
}

func (h *Handler) ReorderLessons(c *fiber.Ctx) error {
	req := validators.Request[courseValidator.ReorderRequest](c)
	res := h.acts.ReorderLessons(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"), req.Order)
	return middleware.ActionResponse(c, fiber.StatusOK, "Lessons reordered.", res)
}

func (h *Handler) ListCourseLessons(c *fiber.Ctx) error {
	res := h.acts.ListCourseLessons(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Lesson list.", res)
}

func (h *Handler) GetPublishedLessons(c *fiber.Ctx) error {
	res := h.acts.GetPublishedLessons(c.UserContext(), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Lesson list.", res)
}
