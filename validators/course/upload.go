package courseValidator

import (
	"mime/multipart"

	"learnhub/middleware"
	"learnhub/validators"

	"github.com/gofiber/fiber/v2"
)

type UploadRequest struct {
	Kind string                `json:"kind" form:"kind" validate:"required,oneof=thumbnail video attachment"`
	File *multipart.FileHeader `json:"-"`
}

// Upload checks the multipart form carries a file and a known kind
func Upload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := &UploadRequest{Kind: c.FormValue("kind")}
		file, err := c.FormFile("file")
		if err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"file": "File is required!"})
		}
		req.File = file
		if errs := validators.Struct(req); errs != nil {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals(validators.Validated, req)
		return c.Next()
	}
}
