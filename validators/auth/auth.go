package authValidator

import (
	"strings"

	"learnhub/models"
	"learnhub/validators"

	"github.com/gofiber/fiber/v2"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile" validate:"required,mobile"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=STUDENT INSTRUCTOR"`
}

func (r *SignupRequest) Check() map[string]string {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Role == "" {
		r.Role = models.RoleStudent
	}
	return nil
}

type LoginRequest struct {
	Mobile   string `json:"mobile" validate:"omitempty,mobile"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (r *LoginRequest) Check() map[string]string {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" && r.Mobile == "" {
		return map[string]string{"credentials": "Either email or mobile number is required!"}
	}
	return nil
}

type SendOTPRequest struct {
	Mobile string `json:"mobile" validate:"required,mobile"`
}

type VerifyOTPRequest struct {
	Mobile string `json:"mobile" validate:"required,mobile"`
	Code   string `json:"code" validate:"required,len=6,numeric"`
}

// Signup validator middleware
func Signup() fiber.Handler {
	return validators.Body[SignupRequest]()
}

// Login validator middleware
func Login() fiber.Handler {
	return validators.Body[LoginRequest]()
}

func SendOTP() fiber.Handler {
	return validators.Body[SendOTPRequest]()
}

func VerifyOTP() fiber.Handler {
	return validators.Body[VerifyOTPRequest]()
}
