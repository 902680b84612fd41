package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AttemptInProgress = "in_progress"
	AttemptSubmitted  = "submitted"
)

// QuizQuestion is a single choice question of a quiz lesson
type QuizQuestion struct {
	gorm.Model
	LessonID      uint                        `json:"lesson_id" gorm:"index;not null"`
	Question      string                      `json:"question" gorm:"type:text;not null"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectOption int                         `json:"-"`
	Points        int                         `json:"points" gorm:"default:1"`
	Explanation   *string                     `json:"explanation,omitempty"`
	OrderIndex    int                         `json:"order_index" gorm:"default:0"`
	IsDeleted     bool                        `json:"-" gorm:"default:false"`
}

type QuizAnswer struct {
	QuestionID  uint `json:"question_id"`
	OptionIndex int  `json:"option_index"`
}

// QuizAttempt is one run of a student through a quiz lesson. It is created
// in_progress and finalized exactly once on submit.
type QuizAttempt struct {
	gorm.Model
	UserID         uint                            `json:"user_id" gorm:"index;not null"`
	LessonID       uint                            `json:"lesson_id" gorm:"index;not null"`
	CourseID       uint                            `json:"course_id" gorm:"index;not null"`
	Status         string                          `json:"status" gorm:"default:'in_progress'"`
	Answers        datatypes.JSONSlice[QuizAnswer] `json:"answers"`
	Score          *int                            `json:"score"`
	MaxScore       int                             `json:"max_score" gorm:"default:0"`
	Passed         *bool                           `json:"passed"`
	StartedAt      time.Time                       `json:"started_at"`
	SubmittedAt    *time.Time                      `json:"submitted_at"`
	ElapsedSeconds *int                            `json:"elapsed_seconds"`
}
