package course

import "gorm.io/gorm"

const (
	ContentVideo      = "video"
	ContentQuiz       = "quiz"
	ContentAssignment = "assignment"
	ContentLesson     = "lesson"
	ContentText       = "text"
)

// Lesson is an ordered item of a course. OrderIndex is zero based and dense
// over the non-deleted lessons of the course.
type Lesson struct {
	gorm.Model
	CourseID        uint    `json:"course_id" gorm:"index:idx_lesson_course_order;not null"`
	Title           string  `json:"title" gorm:"not null"`
	Description     *string `json:"description"`
	ContentType     string  `json:"content_type" gorm:"default:'lesson'"` // video, quiz, assignment, lesson, text
	Content         *string `json:"content" gorm:"type:text"`
	VideoURL        *string `json:"video_url"`
	DurationMinutes *int    `json:"duration_minutes"`
	IsPreview       bool    `json:"is_preview" gorm:"default:false"`
	PassingScore    *int    `json:"passing_score"` // quiz lessons only
	OrderIndex      int     `json:"order_index" gorm:"index:idx_lesson_course_order;default:0"`
	IsDeleted       bool    `json:"-" gorm:"default:false"`
}

// LessonCompletion tracks a student's completion of a lesson
type LessonCompletion struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"uniqueIndex:idx_completion_user_lesson;not null"`
	LessonID uint `json:"lesson_id" gorm:"uniqueIndex:idx_completion_user_lesson;not null"`
	CourseID uint `json:"course_id" gorm:"index;not null"`
}

// IsValidContentType reports whether t is a known lesson content type
func IsValidContentType(t string) bool {
	switch t {
	case ContentVideo, ContentQuiz, ContentAssignment, ContentLesson, ContentText:
		return true
	}
	return false
}
