// Package validators parses request payloads, validates them with struct
// tags and hands the typed request to the next handler through c.Locals.
package validators

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"learnhub/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Validated is the c.Locals key holding the parsed request
const Validated = "validated"

var (
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
	markupPattern = regexp.MustCompile(`[<>{}]`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("plaintext", func(fl validator.FieldLevel) bool {
		return !markupPattern.MatchString(fl.Field().String())
	})
	return v
}

// PlainText reports whether s is free of markup characters
func PlainText(s string) bool {
	return !markupPattern.MatchString(s)
}

// Checker is implemented by requests with rules that span several fields
type Checker interface {
	Check() map[string]string
}

// Struct validates v and returns field errors keyed by JSON name, or nil
func Struct(v interface{}) map[string]string {
	errs := map[string]string{}
	if err := validate.Struct(v); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return map[string]string{"body": err.Error()}
		}
		for _, fe := range ve {
			errs[fieldPath(fe)] = message(fe)
		}
	}
	if ch, ok := v.(Checker); ok {
		for k, msg := range ch.Check() {
			if _, seen := errs[k]; !seen {
				errs[k] = msg
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// fieldPath drops the top-level struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required!"
	case "email":
		return "Invalid email!"
	case "mobile":
		return "Invalid mobile number!"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long!", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s!", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long!", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s!", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s!", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s!", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s!", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s!", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "len":
		return fmt.Sprintf("Must be exactly %s characters long!", fe.Param())
	case "numeric":
		return "Must contain digits only!"
	case "url":
		return "Invalid URL!"
	case "plaintext":
		return "Contains invalid characters (e.g., <, >, {, })!"
	default:
		return "Invalid value!"
	}
}

// Body parses the JSON body into a T, validates it and stores it for the
// next handler under Validated.
func Body[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)
		if err := c.BodyParser(req); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errs := Struct(req); errs != nil {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals(Validated, req)
		return c.Next()
	}
}

// Query is Body for query strings
func Query[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)
		if err := c.QueryParser(req); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if errs := Struct(req); errs != nil {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals(Validated, req)
		return c.Next()
	}
}

// ID checks that route parameter name is a positive integer
func ID(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		errs := map[string]string{}
		for _, name := range names {
			if id, err := c.ParamsInt(name); err != nil || id <= 0 {
				errs[name] = "Invalid ID!"
			}
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		return c.Next()
	}
}

// Request returns what Body or Query stored
func Request[T any](c *fiber.Ctx) *T {
	req, _ := c.Locals(Validated).(*T)
	return req
}
