package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Course is the persistence shape of a course. Optional columns are pointers
// so that partial writes can tell "absent" from "zero".
type Course struct {
	gorm.Model
	InstructorID       uint                        `json:"instructor_id" gorm:"index;not null"`
	Title              string                      `json:"title" gorm:"not null"`
	Description        *string                     `json:"description"`
	AboutCourse        *string                     `json:"about_course" gorm:"type:text"`
	RegularPrice       *float64                    `json:"regular_price"`
	DiscountedPrice    *float64                    `json:"discounted_price"`
	IsFree             *bool                       `json:"is_free" gorm:"default:true"`
	CourseTags         datatypes.JSONSlice[string] `json:"course_tags"`
	DurationHours      *int                        `json:"duration_hours"`
	DurationMinutes    *int                        `json:"duration_minutes"`
	ContentDripEnabled *bool                       `json:"content_drip_enabled" gorm:"default:false"`
	ContentDripType    *string                     `json:"content_drip_type"` // unlock_by_date, unlock_sequentially
	Status             string                      `json:"status" gorm:"default:'draft';index"`
	ThumbnailURL       *string                     `json:"thumbnail_url"`
	IntroVideoURL      *string                     `json:"intro_video_url"`
	WhatWillLearn      *string                     `json:"what_will_learn" gorm:"type:text"`
	TargetAudience     *string                     `json:"target_audience"`
	Requirements       *string                     `json:"requirements"`
	MaterialsIncluded  *string                     `json:"materials_included"`
	Category           *string                     `json:"category"`
	PublishedAt        *time.Time                  `json:"published_at"`
	Settings           []CourseSettings            `json:"course_settings,omitempty" gorm:"foreignKey:CourseID"`
	IsDeleted          bool                        `json:"-" gorm:"default:false"`
}

// CourseSettings is the one-or-absent settings row of a course
type CourseSettings struct {
	gorm.Model
	CourseID           uint       `json:"course_id" gorm:"uniqueIndex;not null"`
	PassingGrade       *int       `json:"passing_grade"`
	CertificateEnabled *bool      `json:"certificate_enabled"`
	EnrollmentStart    *time.Time `json:"enrollment_start"`
	EnrollmentEnd      *time.Time `json:"enrollment_end"`
	LifetimeAccess     *bool      `json:"lifetime_access"`
	AccessDays         *int       `json:"access_days"`
	MaxStudents        *int       `json:"max_students"`
	Level              *string    `json:"level"`
	Language           *string    `json:"language"`
}

// EffectivePassingGrade returns the settings passing grade or 70
func (c Course) EffectivePassingGrade() int {
	if len(c.Settings) > 0 && c.Settings[0].PassingGrade != nil {
		return *c.Settings[0].PassingGrade
	}
	return 70
}
