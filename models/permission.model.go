package models

import (
	"gorm.io/gorm"
)

const (
	PermissionManageCourses = "manage-courses"
	PermissionLearn         = "learn"
)

type Permission struct {
	gorm.Model
	UserID     uint   `gorm:"not null;index"`
	User       User   `gorm:"foreignKey:UserID"`
	Role       string
	Permission string `gorm:"type:varchar(255)"` // e.g. "manage-courses"
	IsDeleted  bool   `gorm:"default:false"`
}

// DefaultPermissions returns the permission strings seeded for a role at signup
func DefaultPermissions(role string) []string {
	switch role {
	case RoleInstructor, RoleAdmin:
		return []string{"login", PermissionLearn, PermissionManageCourses, "view-profile"}
	default:
		return []string{"login", PermissionLearn, "view-profile"}
	}
}
