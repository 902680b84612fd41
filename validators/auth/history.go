package authValidator

import (
	"learnhub/validators"

	"github.com/gofiber/fiber/v2"
)

type HistoryQuery struct {
	Page  int `query:"page" validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

// LoginHistoryList validator middleware; zero values fall back to page 1 of 10
func LoginHistoryList() fiber.Handler {
	return validators.Query[HistoryQuery]()
}
