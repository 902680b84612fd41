package authRoutes

import (
	authController "learnhub/controllers/auth"
	"learnhub/middleware"
	authValidator "learnhub/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, h *authController.Handler, jwtKey string) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidator.Signup(), h.Signup)
	authGroup.Post("/login", authValidator.Login(), h.Login)
	authGroup.Get("/login/history", middleware.JWTMiddleware(jwtKey), authValidator.LoginHistoryList(), h.LoginHistoryList)
	authGroup.Post("/send/otp", authValidator.SendOTP(), h.SendOTP)
	authGroup.Patch("/verify/otp", authValidator.VerifyOTP(), h.VerifyOTP)
}
