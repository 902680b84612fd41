package courseController

import (
	"learnhub/middleware"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Enroll(c *fiber.Ctx) error {
	res := h.acts.Enroll(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Enrolled successfully.", res)
}

func (h *Handler) CompleteLesson(c *fiber.Ctx) error {
	res := h.acts.CompleteLesson(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Lesson marked complete.", res)
}

func (h *Handler) ListMyEnrollments(c *fiber.Ctx) error {
	res := h.acts.ListMyEnrollments(c.UserContext(), middleware.SessionFrom(c))
	return middleware.ActionResponse(c, fiber.StatusOK, "Enrollment list.", res)
}

func (h *Handler) GetProgress(c *fiber.Ctx) error {
	res := h.acts.GetProgress(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Course progress.", res)
}

func (h *Handler) IssueCertificate(c *fiber.Ctx) error {
	res := h.acts.IssueCertificate(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Certificate issued.", res)
}

func (h *Handler) ListMyCertificates(c *fiber.Ctx) error {
	res := h.acts.ListMyCertificates(c.UserContext(), middleware.SessionFrom(c))
	return middleware.ActionResponse(c, fiber.StatusOK, "Certificate list.", res)
}

func (h *Handler) VerifyCertificate(c *fiber.Ctx) error {
	res := h.acts.VerifyCertificate(c.UserContext(), c.Params("code"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Certificate verified.", res)
}
