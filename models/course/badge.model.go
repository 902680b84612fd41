package course

import (
	"time"

	"gorm.io/gorm"
)

type Badge struct {
	gorm.Model
	InstructorID uint    `json:"instructor_id" gorm:"index;not null"`
	CourseID     *uint   `json:"course_id" gorm:"index"`
	Name         string  `json:"name" gorm:"not null"`
	Description  string  `json:"description"`
	IconURL      *string `json:"icon_url"`
	Criteria     string  `json:"criteria"`
	IsDeleted    bool    `json:"-" gorm:"default:false"`
}

type UserBadge struct {
	gorm.Model
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_user_badge;not null"`
	BadgeID   uint      `json:"badge_id" gorm:"uniqueIndex:idx_user_badge;not null"`
	Badge     Badge     `json:"badge,omitempty" gorm:"foreignKey:BadgeID"`
	AwardedBy uint      `json:"awarded_by"`
	AwardedAt time.Time `json:"awarded_at"`
}
