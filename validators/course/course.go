package courseValidator

import (
	"strings"

	"learnhub/mapper"
	"learnhub/validators"

	"github.com/gofiber/fiber/v2"
)

// CourseRequest is the course editor form. Business rules such as the
// discount ceiling are enforced by the course actions.
type CourseRequest struct {
	mapper.CourseForm
	creating bool
}

func (r *CourseRequest) Check() map[string]string {
	errs := map[string]string{}
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		r.Title = &title
		if !validators.PlainText(title) {
			errs["title"] = "Title contains invalid characters (e.g., <, >, {, })!"
		}
	}
	if r.creating && (r.Title == nil || *r.Title == "") {
		errs["title"] = "Title is required!"
	}
	if r.Level != nil && *r.Level != "" {
		switch *r.Level {
		case "beginner", "intermediate", "advanced", mapper.LevelAllLevels:
		default:
			errs["level"] = "Must be one of: beginner, intermediate, advanced, all_levels!"
		}
	}
	return errs
}

type NewCourseRequest struct {
	CourseRequest
}

func (r *NewCourseRequest) Check() map[string]string {
	r.creating = true
	return r.CourseRequest.Check()
}

type PageQuery struct {
	Page  int `query:"page" validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

type SearchQuery struct {
	Q     string `query:"q" validate:"required,max=100"`
	Limit int    `query:"limit" validate:"gte=0,lte=100"`
}

func CreateCourse() fiber.Handler {
	return validators.Body[NewCourseRequest]()
}

func UpdateCourse() fiber.Handler {
	return validators.Body[CourseRequest]()
}

func CourseList() fiber.Handler {
	return validators.Query[PageQuery]()
}

func SearchCourses() fiber.Handler {
	return validators.Query[SearchQuery]()
}
