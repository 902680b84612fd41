package courseController

import (
	"learnhub/middleware"
	"learnhub/validators"
	courseValidator "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) AddQuizQuestion(c *fiber.Ctx) error {
	req := validators.Request[courseValidator.QuestionRequest](c)
	res := h.acts.AddQuizQuestion(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"), req.Input())
	return middleware.ActionResponse(c, fiber.StatusCreated, "Question added.", res)
}

func (h *Handler) UpdateQuizQuestion(c *fiber.Ctx) error {
	req := validators.Request[courseValidator.UpdateQuestionRequest](c)
	res := h.acts.UpdateQuizQuestion(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"), req.Update())
	return middleware.ActionResponse(c, fiber.StatusOK, "Question updated.", res)
}

func (h *Handler) DeleteQuizQuestion(c *fiber.Ctx) error {
	res := h.acts.DeleteQuizQuestion(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Question deleted.", res)
}

func (h *Handler) ListQuizQuestions(c *fiber.Ctx) error {
	res := h.acts.ListQuizQuestions(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Question list.", res)
}

func (h *Handler) StartQuizAttempt(c *fiber.Ctx) error {
	res := h.acts.StartQuizAttempt(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Quiz attempt started.", res)
}

func (h *Handler) AnswerQuestion(c *fiber.Ctx) error {
	req := validators.Request[courseValidator.AnswerRequest](c)
	res := h.acts.AnswerQuestion(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"), req.QuestionID, *req.OptionIndex)
	return middleware.ActionResponse(c, fiber.StatusOK, "Answer saved.", res)
}

func (h *Handler) SubmitQuizAttempt(c *fiber.Ctx) error {
	res := h.acts.SubmitQuizAttempt(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Quiz submitted.", res)
}

func (h *Handler) GetQuizAttempt(c *fiber.Ctx) error {
	res := h.acts.GetQuizAttempt(c.UserContext(), middleware.SessionFrom(c), paramID(c, "id"))
	return middleware.ActionResponse(c, fiber.StatusOK, "Quiz attempt.", res)
}
