package courseValidator

import (
	"learnhub/actions"
	"learnhub/validators"

	"github.com/gofiber/fiber/v2"
)

type AnnouncementRequest struct {
	CourseID *uint  `json:"courseId,omitempty" validate:"omitempty,gt=0"`
	Title    string `json:"title" validate:"required,min=3,max=200,plaintext"`
	Content  string `json:"content" validate:"required,max=10000"`
	Priority string `json:"priority,omitempty" validate:"omitempty,oneof=normal important urgent"`
}

func (r *AnnouncementRequest) Input() actions.AnnouncementInput {
	return actions.AnnouncementInput(*r)
}

type UpdateAnnouncementRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,min=3,max=200,plaintext"`
	Content  *string `json:"content,omitempty" validate:"omitempty,max=10000"`
	Priority *string `json:"priority,omitempty" validate:"omitempty,oneof=normal important urgent"`
}

func (r *UpdateAnnouncementRequest) Update() actions.AnnouncementUpdate {
	return actions.AnnouncementUpdate(*r)
}

type BadgeRequest struct {
	CourseID    *uint   `json:"courseId,omitempty" validate:"omitempty,gt=0"`
	Name        string  `json:"name" validate:"required,min=2,max=100,plaintext"`
	Description string  `json:"description" validate:"max=1000"`
	IconURL     *string `json:"iconUrl,omitempty" validate:"omitempty,url"`
	Criteria    string  `json:"criteria" validate:"max=1000"`
}

func (r *BadgeRequest) Input() actions.BadgeInput {
	return actions.BadgeInput(*r)
}

type UpdateBadgeRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=100,plaintext"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	IconURL     *string `json:"icon_url,omitempty" validate:"omitempty,url"`
	Criteria    *string `json:"criteria,omitempty" validate:"omitempty,max=1000"`
}

func (r *UpdateBadgeRequest) Update() actions.BadgeUpdate {
	return actions.BadgeUpdate(*r)
}

type AwardRequest struct {
	StudentID uint `json:"studentId" validate:"required"`
}

func CreateAnnouncement() fiber.Handler {
	return validators.Body[AnnouncementRequest]()
}

func UpdateAnnouncement() fiber.Handler {
	return validators.Body[UpdateAnnouncementRequest]()
}

func CreateBadge() fiber.Handler {
	return validators.Body[BadgeRequest]()
}

func UpdateBadge() fiber.Handler {
	return validators.Body[UpdateBadgeRequest]()
}

func AwardBadge() fiber.Handler {
	return validators.Body[AwardRequest]()
}
