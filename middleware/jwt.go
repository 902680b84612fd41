package middleware

import (
	"fmt"
	"strings"
	"time"

	"learnhub/actions"
	"learnhub/authz"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 24 * time.Hour

// GenerateJWT generates a JWT token for the user
func GenerateJWT(secret string, userID uint, name, role, email, mobile string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"name":   name,
		"role":   role,
		"email":  email,
		"mobile": mobile,
		"iat":    time.Now().Unix(),               // issued at
		"exp":    time.Now().Add(tokenTTL).Unix(), // expiry 24h
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// JWTMiddleware checks for a valid bearer token and stores the caller in locals
func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
		}

		// The token should be prefixed with "Bearer "
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format", nil)
		}
		tokenString := authHeader[len("Bearer "):]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["userId"] == nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid token payload", nil)
		}

		// JWT numbers decode as float64
		userID, _ := claims["userId"].(float64)
		email, _ := claims["email"].(string)
		role, _ := claims["role"].(string)
		c.Locals("userId", uint(userID))
		c.Locals("email", email)
		c.Locals("role", role)

		return c.Next()
	}
}

// SessionFrom rebuilds the caller from the locals JWTMiddleware set. Routes
// without the middleware get nil, which actions report as unauthorized.
func SessionFrom(c *fiber.Ctx) *authz.Session {
	email, _ := c.Locals("email").(string)
	if email == "" {
		return nil
	}
	userID, _ := c.Locals("userId").(uint)
	role, _ := c.Locals("role").(string)
	return &authz.Session{UserID: userID, Email: email, Role: role}
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ActionResponse renders an action Result in the house envelope, mapping
// the failure kind onto an HTTP status.
func ActionResponse(c *fiber.Ctx, okCode int, message string, res actions.Result) error {
	if res.Success {
		return JsonResponse(c, okCode, true, message, res.Data)
	}
	if res.Error == nil {
		res.Error = &actions.Error{Kind: actions.Persistence, Detail: "Failed to process your request!"}
	}
	return c.Status(statusFor(res.Kind())).JSON(fiber.Map{
		"status":  false,
		"message": res.Error.Detail,
		"kind":    res.Error.Kind,
		"data":    nil,
	})
}

func statusFor(kind actions.ErrorKind) int {
	switch kind {
	case actions.Unauthorized:
		return fiber.StatusUnauthorized
	case actions.PermissionDenied:
		return fiber.StatusForbidden
	case actions.Validation:
		return fiber.StatusUnprocessableEntity
	case actions.NotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
