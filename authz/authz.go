// Package authz decides whether a principal owns a course or lesson.
// Missing rows deny; only store failures surface as errors.
package authz

import (
	"context"
	"errors"

	"learnhub/models"
	courseModels "learnhub/models/course"

	"gorm.io/gorm"
)

// ErrPrincipalNotFound means the session email matches no active user
var ErrPrincipalNotFound = errors.New("authz: principal not found")

// Session is the authenticated caller as the session provider reports it
type Session struct {
	UserID uint
	Email  string
	Role   string
}

type Authorizer struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Authorizer {
	return &Authorizer{db: db}
}

// WithTx binds the authorizer to a transaction so checks and writes share it
func (a *Authorizer) WithTx(tx *gorm.DB) *Authorizer {
	return &Authorizer{db: tx}
}

// ResolvePrincipal loads the active user behind a session email
func (a *Authorizer) ResolvePrincipal(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if email == "" {
		return user, ErrPrincipalNotFound
	}
	err := a.db.WithContext(ctx).Where("email = ? AND is_deleted = ?", email, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrPrincipalNotFound
	}
	return user, err
}

func (a *Authorizer) ResolvePrincipalID(ctx context.Context, email string) (uint, error) {
	user, err := a.ResolvePrincipal(ctx, email)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (a *Authorizer) AuthorizeCourseOwner(ctx context.Context, principalID, courseID uint) (bool, error) {
	var course courseModels.Course
	err := a.db.WithContext(ctx).Select("id", "instructor_id").
		Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return course.InstructorID == principalID, nil
}

// AuthorizeLessonOwner walks lesson -> course -> instructor
func (a *Authorizer) AuthorizeLessonOwner(ctx context.Context, principalID, lessonID uint) (bool, error) {
	var lesson courseModels.Lesson
	err := a.db.WithContext(ctx).Select("id", "course_id").
		Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return a.AuthorizeCourseOwner(ctx, principalID, lesson.CourseID)
}

// CourseOwnedBy restricts a courses query or write to the principal's courses
func CourseOwnedBy(principalID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("instructor_id = ? AND is_deleted = ?", principalID, false)
	}
}

// LessonOwnedBy restricts a lessons query or write to lessons of the
// principal's courses, so the ownership check travels inside the statement.
func LessonOwnedBy(principalID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		owned := db.Session(&gorm.Session{NewDB: true}).
			Model(&courseModels.Course{}).
			Select("id").
			Scopes(CourseOwnedBy(principalID))
		return db.Where("course_id IN (?)", owned)
	}
}
