package courseValidator

import (
	"learnhub/actions"
	"learnhub/ordering"
	"learnhub/validators"

	"github.com/gofiber/fiber/v2"
)

// field order mirrors actions.CreateLessonInput so the request converts directly
type CreateLessonRequest struct {
	CourseID        uint    `json:"courseId" validate:"required"`
	Title           string  `json:"title" validate:"required,min=3,max=200,plaintext"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	VideoURL        *string `json:"videoUrl,omitempty" validate:"omitempty,url"`
	ContentType     *string `json:"contentType,omitempty" validate:"omitempty,oneof=video quiz assignment lesson text"`
	Content         *string `json:"content,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty" validate:"omitempty,gte=0"`
	IsPreview       *bool   `json:"isPreview,omitempty"`
	PassingScore    *int    `json:"passingScore,omitempty" validate:"omitempty,gte=0,lte=100"`
}

func (r *CreateLessonRequest) Input() actions.CreateLessonInput {
	return actions.CreateLessonInput(*r)
}

type UpdateLessonRequest struct {
	Title           *string `json:"title,omitempty" validate:"omitempty,min=3,max=200,plaintext"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	ContentType     *string `json:"content_type,omitempty" validate:"omitempty,oneof=video quiz assignment lesson text"`
	Content         *string `json:"content,omitempty"`
	VideoURL        *string `json:"video_url,omitempty" validate:"omitempty,url"`
	DurationMinutes *int    `json:"duration_minutes,omitempty" validate:"omitempty,gte=0"`
	IsPreview       *bool   `json:"is_preview,omitempty"`
	PassingScore    *int    `json:"passing_score,omitempty" validate:"omitempty,gte=0,lte=100"`
}

func (r *UpdateLessonRequest) Update() actions.LessonUpdate {
	return actions.LessonUpdate(*r)
}

type ReorderRequest struct {
	Order []ordering.Position `json:"order" validate:"required"`
}

func CreateLesson() fiber.Handler {
	return validators.Body[CreateLessonRequest]()
}

func UpdateLesson() fiber.Handler {
	return validators.Body[UpdateLessonRequest]()
}

func ReorderLessons() fiber.Handler {
	return validators.Body[ReorderRequest]()
}
