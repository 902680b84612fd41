package course

import "gorm.io/gorm"

const (
	PriorityNormal    = "normal"
	PriorityImportant = "important"
	PriorityUrgent    = "urgent"
)

// Announcement belongs to an instructor. A nil CourseID makes it global to
// every student enrolled in one of the instructor's courses.
type Announcement struct {
	gorm.Model
	InstructorID uint   `json:"instructor_id" gorm:"index;not null"`
	CourseID     *uint  `json:"course_id" gorm:"index"`
	Title        string `json:"title" gorm:"not null"`
	Content      string `json:"content" gorm:"type:text"`
	Priority     string `json:"priority" gorm:"default:'normal'"`
	IsDeleted    bool   `json:"-" gorm:"default:false"`
}

func IsValidPriority(p string) bool {
	return p == PriorityNormal || p == PriorityImportant || p == PriorityUrgent
}

// PriorityRank orders urgent before important before normal
func PriorityRank(p string) int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityImportant:
		return 1
	}
	return 2
}
