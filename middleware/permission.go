package middleware

import (
	"errors"

	"learnhub/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CheckPermission returns a middleware that checks if the user has the required permission
func CheckPermission(db *gorm.DB, requiredPermission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// set by JWTMiddleware
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}

		var permission models.Permission
		err := db.WithContext(c.UserContext()).
			Where("user_id = ? AND permission = ? AND is_deleted = false", userID, requiredPermission).
			First(&permission).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
			}
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
		}

		return c.Next()
	}
}
