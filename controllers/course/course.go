// Package courseController exposes the course actions over HTTP. Handlers
// only translate requests; every rule lives in the actions package.
package courseController

import (
	"learnhub/actions"
	"learnhub/middleware"
	"learnhub/validators"
	courseValidator "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	acts *actions.Actions
}

func New(acts *actions.Actions) *Handler {
	return &Handler{acts: acts}
}

// paramID reads a route id already checked by validators.ID
func paramID(c *fiber.Ctx, name string) uint {
	id, _ := c.ParamsInt(name)
	return uint(id)
}

func (h *Handler) CreateCourse(c *fiber.Ctx) error {
	req := validators.Request[courseValidator.NewCourseRequest](c)
	res := h.acts.CreateCourse(c.UserContext(), middleware.SessionFrom(c), req.CourseForm)
	return middleware.ActionResponse(c, fiber.StatusCreated, "Course created successfully.", res)
}

func (h *Handler) UpdateCourse(c *fiber.Ctx) error {
	req := validators.Request[courseValidator.CourseRequest](c)
	res := h.acts.UpdateCourse(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"), req.CourseForm)
	return middleware.ActionResponse(c, fiber.StatusOK, "Course updated successfully.", res)
}

func (h *Handler) GetCourseForm(c *fiber.Ctx) error {
	res := h.acts.GetCourseForm(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Course fetched successfully.", res)
}

func (h *Handler) ListInstructorCourses(c *fiber.Ctx) error {
	res := h.acts.ListInstructorCourses(c.UserContext(), middleware.SessionFrom(c))
	return middleware.ActionResponse(c, fiber.StatusOK, "Course list.", res)
}

func (h *Handler) PublishCourse(c *fiber.Ctx) error {
	res := h.acts.PublishCourse(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Course published.", res)
}

func (h *Handler) ArchiveCourse(c *fiber.Ctx) error {
	res := h.acts.ArchiveCourse(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Course archived.", res)
}

func (h *Handler) DeleteCourse(c *fiber.Ctx) error {
	res := h.acts.DeleteCourse(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Course deleted.", res)
}

func (h *Handler) ListPublishedCourses(c *fiber.Ctx) error {
	q := validators.Request[courseValidator.PageQuery](c)
	res := h.acts.ListPublishedCourses(c.UserContext(), q.Page, q.Limit)
	return middleware.ActionResponse(c, fiber.StatusOK, "Course list.", res)
}

func (h *Handler) SearchCourses(c *fiber.Ctx) error {
	q := validators.Request[courseValidator.SearchQuery](c)
	res := h.acts.SearchCourses(c.UserContext(), q.Q, q.Limit)
	return middleware.ActionResponse(c, fiber.StatusOK, "Search results.", res)
}

func (h *Handler) GetPublishedCourse(c *fiber.Ctx) error {
	res := h.acts.GetPublishedCourse(c.UserContext(), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Course details.", res)
}
