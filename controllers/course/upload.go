package courseController

import (
	"learnhub/actions"
	"learnhub/middleware"
	"learnhub/validators"
	courseValidator "learnhub/validators/course"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) UploadFile(c *fiber.Ctx) error {
	req := validators.Request[courseValidator.UploadRequest](c)

	file, err := req.File.Open()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unable to read uploaded file!", nil)
	}
	defer file.Close()

	res := h.acts.UploadFile(c.UserContext(), middleware.SessionFrom(c), actions.UploadInput{
		Kind:        req.Kind,
		Filename:    req.File.Filename,
		ContentType: req.File.Header.Get("Content-Type"),
		Size:        req.File.Size,
		Body:        file,
	})
	return middleware.ActionResponse(c, fiber.StatusCreated, "File uploaded successfully.", res)
}
