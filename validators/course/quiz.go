package courseValidator

import (
	"learnhub/actions"
	"learnhub/validators"

	"github.com/gofiber/fiber/v2"
)

type QuestionRequest struct {
	Question      string   `json:"question" validate:"required,max=1000"`
	Options       []string `json:"options" validate:"required,min=2,max=10,dive,required"`
	CorrectOption int      `json:"correct_option" validate:"gte=0"`
	Points        *int     `json:"points,omitempty" validate:"omitempty,gt=0"`
	Explanation   *string  `json:"explanation,omitempty"`
}

func (r *QuestionRequest) Check() map[string]string {
	if r.CorrectOption >= len(r.Options) {
		return map[string]string{"correct_option": "Must point at one of the options!"}
	}
	return nil
}

func (r *QuestionRequest) Input() actions.QuestionInput {
	return actions.QuestionInput(*r)
}

type UpdateQuestionRequest struct {
	Question      *string  `json:"question,omitempty" validate:"omitempty,max=1000"`
	Options       []string `json:"options,omitempty" validate:"omitempty,min=2,max=10,dive,required"`
	CorrectOption *int     `json:"correct_option,omitempty" validate:"omitempty,gte=0"`
	Points        *int     `json:"points,omitempty" validate:"omitempty,gt=0"`
	Explanation   *string  `json:"explanation,omitempty"`
}

func (r *UpdateQuestionRequest) Update() actions.QuestionUpdate {
	return actions.QuestionUpdate(*r)
}

type AnswerRequest struct {
	QuestionID  uint `json:"questionId" validate:"required"`
	OptionIndex *int `json:"optionIndex" validate:"required,gte=0"`
}

func AddQuestion() fiber.Handler {
	return validators.Body[QuestionRequest]()
}

func UpdateQuestion() fiber.Handler {
	return validators.Body[UpdateQuestionRequest]()
}

func Answer() fiber.Handler {
	return validators.Body[AnswerRequest]()
}
