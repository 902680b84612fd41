package courseController

import (
	"learnhub/middleware"
	"learnhub/validators"
	courseValidator "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateAnnouncement(c *fiber.Ctx) error {
	req := validators.Request[courseValidator.AnnouncementRequest](c)
	res := h.acts.CreateAnnouncement(c.UserContext(), middleware.SessionFrom(c), req.Input())
	return middleware.ActionResponse(c, fiber.StatusCreated, "Announcement created.", res)
}

func (h *Handler) UpdateAnnouncement(c *fiber.Ctx) error {
	req := validators.Request[courseValidator.UpdateAnnouncementRequest](c)
	res := h.acts.UpdateAnnouncement(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"), req.Update())
	return middleware.ActionResponse(c, fiber.StatusOK, "Announcement updated.", res)
}

func (h *Handler) DeleteAnnouncement(c *fiber.Ctx) error {
	res := h.acts.DeleteAnnouncement(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Announcement deleted.", res)
}

func (h *Handler) ListInstructorAnnouncements(c *fiber.Ctx) error {
	res := h.acts.ListInstructorAnnouncements(c.UserContext(), middleware.SessionFrom(c))
	return middleware.ActionResponse(c, fiber.StatusOK, "Announcement list.", res)
}

func (h *Handler) ListStudentAnnouncements(c *fiber.Ctx) error {
	res := h.acts.ListStudentAnnouncements(c.UserContext(), middleware.SessionFrom(c))
	return middleware.ActionResponse(c, fiber.StatusOK, "Announcement list.", res)
}

func (h *Handler) CreateBadge(c *fiber.Ctx) error {
	req := validators.Request[courseValidator.BadgeRequest](c)
	res := h.acts.CreateBadge(c.UserContext(), middleware.SessionFrom(c), req.Input())
	return middleware.ActionResponse(c, fiber.StatusCreated, "Badge created.", res)
}

func (h *Handler) UpdateBadge(c *fiber.Ctx) error {
	req := validators.Request[courseValidator.UpdateBadgeRequest](c)
	res := h.acts.UpdateBadge(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"), req.Update())
	return middleware.ActionResponse(c, fiber.StatusOK, "Badge updated.", res)
}

func (h *Handler) DeleteBadge(c *fiber.Ctx) error {
	res := h.acts.DeleteBadge(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Badge deleted.", res)
}

func (h *Handler) ListInstructorBadges(c *fiber.Ctx) error {
	res := h.acts.ListInstructorBadges(c.UserContext(), middleware.SessionFrom(c))
	return middleware.ActionResponse(c, fiber.StatusOK, "Badge list.", res)
}

func (h *Handler) AwardBadge(c *fiber.Ctx) error {
	req := validators.Request[courseValidator.AwardRequest](c)
	res := h.acts.AwardBadge(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"), req.StudentID)
	return middleware.ActionResponse(c, fiber.StatusOK, "Badge awarded.", res)
}

func (h *Handler) ListMyBadges(c *fiber.Ctx) error {
	res := h.acts.ListMyBadges(c.UserContext(), middleware.SessionFrom(c))
	return middleware.ActionResponse(c, fiber.StatusOK, "Badge list.", res)
}
