package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate represents an issued certificate for course completion.
// Both CertificateNumber and VerificationCode resolve it publicly.
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"uniqueIndex:idx_certificate_user_course;not null"`
	CourseID          uint      `json:"course_id" gorm:"uniqueIndex:idx_certificate_user_course;not null"`
	Course            Course    `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	CertificateNumber string    `json:"certificate_number" gorm:"uniqueIndex;not null"`
	VerificationCode  string    `json:"verification_code" gorm:"uniqueIndex;size:16;not null"`
	CertificateURL    string    `json:"certificate_url"`
	StudentName       string    `json:"student_name"`
	IssuedAt          time.Time `json:"issued_at"`
	IsDeleted         bool      `json:"-" gorm:"default:false"`
}
