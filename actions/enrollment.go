package actions

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"learnhub/authz"
	"learnhub/events"
	courseModels "learnhub/models/course"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

type EnrollmentResult struct {
	Enrollment courseModels.Enrollment `json:"enrollment"`
	Created    bool                    `json:"created"`
}

type CourseProgress struct {
	Enrollment         courseModels.Enrollment `json:"enrollment"`
	TotalLessons       int64                   `json:"totalLessons"`
	CompletedLessonIDs []uint                  `json:"completedLessonIds"`
}

// checkEnrollmentWindow compares whole days: the start day and the end day
// are both open for enrollment.
func checkEnrollmentWindow(s courseModels.CourseSettings, at time.Time) error {
	day := now.With(at.UTC())
	if s.EnrollmentStart != nil && day.EndOfDay().Before(now.With(s.EnrollmentStart.UTC()).BeginningOfDay()) {
		return fail(Validation, "Enrollment has not opened yet")
	}
	if s.EnrollmentEnd != nil && day.BeginningOfDay().After(now.With(s.EnrollmentEnd.UTC()).EndOfDay()) {
		return fail(Validation, "Enrollment has closed")
	}
	return nil
}

// Enroll finds or creates the caller's enrollment in a published course
func (a *Actions) Enroll(ctx context.Context, sess *authz.Session, courseID uint) Result {
	var course courseModels.Course
	res := run("enroll", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}

		var out EnrollmentResult
		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			c, err := lockCourse(tx, courseID)
			if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && c.Status != courseModels.StatusPublished) {
				return fail(NotFound, "Course not found")
			}
			if err != nil {
				return err
			}
			course = c

			var existing courseModels.Enrollment
			err = tx.Where("user_id = ? AND course_id = ?", user.ID, courseID).First(&existing).Error
			if err == nil && !existing.IsDeleted {
				out = EnrollmentResult{Enrollment: existing}
				return nil
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			var settings courseModels.CourseSettings
			serr := tx.Where("course_id = ?", courseID).First(&settings).Error
			if serr != nil && !errors.Is(serr, gorm.ErrRecordNotFound) {
				return serr
			}
			if err := checkEnrollmentWindow(settings, a.clock()); err != nil {
				return err
			}
			if settings.MaxStudents != nil && *settings.MaxStudents > 0 {
				var enrolled int64
				if err := tx.Model(&courseModels.Enrollment{}).
					Where("course_id = ? AND is_deleted = ?", courseID, false).
					Count(&enrolled).Error; err != nil {
					return err
				}
				if enrolled >= int64(*settings.MaxStudents) {
					return fail(Validation, "This course is full")
				}
			}

			if existing.ID != 0 {
				existing.IsDeleted = false
				existing.Status = courseModels.EnrollmentEnrolled
				existing.EnrolledAt = a.clock()
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				if err := a.recomputeProgress(tx, user.ID, courseID); err != nil {
					return err
				}
				if err := tx.First(&existing, existing.ID).Error; err != nil {
					return err
				}
				out = EnrollmentResult{Enrollment: existing, Created: true}
				return nil
			}

			enrollment := courseModels.Enrollment{
				UserID:     user.ID,
				CourseID:   courseID,
				Status:     courseModels.EnrollmentEnrolled,
				EnrolledAt: a.clock(),
			}
			if err := tx.Omit("Course").Create(&enrollment).Error; err != nil {
				return err
			}
			out = EnrollmentResult{Enrollment: enrollment, Created: true}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if out.Created {
			log.Printf("[ENROLLMENT] user %d enrolled in course %d", user.ID, courseID)
		}
		return out, nil
	})

	if out, ok := res.Data.(EnrollmentResult); ok && out.Created {
		a.publish(ctx, events.Event{
			Type:       events.TypeEnrollmentCreated,
			CourseID:   course.ID,
			CourseName: course.Title,
			UserID:     out.Enrollment.UserID,
			Recipients: []string{sess.Email},
		})
	}
	return res
}

// liveEnrollment loads the caller's active enrollment in a course
func liveEnrollment(tx *gorm.DB, userID, courseID uint) (courseModels.Enrollment, error) {
	var e courseModels.Enrollment
	err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&e).Error
	return e, err
}

// markLessonComplete records a completion once and refreshes progress
func (a *Actions) markLessonComplete(tx *gorm.DB, userID uint, lesson courseModels.Lesson) error {
	completion := courseModels.LessonCompletion{UserID: userID, LessonID: lesson.ID, CourseID: lesson.CourseID}
	err := tx.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).
		FirstOrCreate(&completion).Error
	if err != nil {
		return err
	}
	return a.recomputeProgress(tx, userID, lesson.CourseID)
}

// recomputeProgress writes progress, status and completed_at in one update so
// completed_at is set exactly when progress reaches 100.
func (a *Actions) recomputeProgress(tx *gorm.DB, userID, courseID uint) error {
	var total, completed int64
	if err := tx.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&courseModels.LessonCompletion{}).
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id").
		Where("lesson_completions.user_id = ? AND lesson_completions.course_id = ?", userID, courseID).
		Where("lessons.is_deleted = ?", false).
		Count(&completed).Error; err != nil {
		return err
	}

	progress := 0
	if total > 0 {
		progress = int(math.Round(100 * float64(completed) / float64(total)))
	}

	enrollment, err := liveEnrollment(tx, userID, courseID)
	if err != nil {
		return err
	}

	cols := map[string]interface{}{"progress": progress}
	switch {
	case progress == 100:
		cols["status"] = courseModels.EnrollmentCompleted
		if enrollment.CompletedAt == nil {
			cols["completed_at"] = a.clock()
		}
	case progress > 0:
		cols["status"] = courseModels.EnrollmentInProgress
		cols["completed_at"] = nil
	default:
		cols["status"] = courseModels.EnrollmentEnrolled
		cols["completed_at"] = nil
	}
	return tx.Model(&enrollment).Updates(cols).Error
}

// refreshCourseProgress recomputes every live enrollment of a course after
// its lesson set shrinks.
func (a *Actions) refreshCourseProgress(tx *gorm.DB, courseID uint) error {
	var userIDs []uint
	if err := tx.Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Pluck("user_id", &userIDs).Error; err != nil {
		return err
	}
	for _, userID := range userIDs {
		if err := a.recomputeProgress(tx, userID, courseID); err != nil {
			return err
		}
	}
	return nil
}

// CompleteLesson marks a lesson of an enrolled course as done
func (a *Actions) CompleteLesson(ctx context.Context, sess *authz.Session, lessonID uint) Result {
	return run("complete lesson", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}

		var enrollment courseModels.Enrollment
		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var lesson courseModels.Lesson
			err := tx.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fail(NotFound, "Lesson not found")
			}
			if err != nil {
				return err
			}
			if _, err := liveEnrollment(tx, user.ID, lesson.CourseID); errors.Is(err, gorm.ErrRecordNotFound) {
				return denied("access this lesson")
			} else if err != nil {
				return err
			}
			if err := a.markLessonComplete(tx, user.ID, lesson); err != nil {
				return err
			}
			enrollment, err = liveEnrollment(tx, user.ID, lesson.CourseID)
			return err
		})
		if err != nil {
			return nil, err
		}
		return enrollment, nil
	})
}

func (a *Actions) ListMyEnrollments(ctx context.Context, sess *authz.Session) Result {
	return run("fetch enrollments", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		enrollments := []courseModels.Enrollment{}
		err = a.db.WithContext(ctx).Preload("Course").
			Where("user_id = ? AND is_deleted = ?", user.ID, false).
			Order("enrolled_at DESC").
			Find(&enrollments).Error
		if err != nil {
			return nil, err
		}
		return enrollments, nil
	})
}

func (a *Actions) GetProgress(ctx context.Context, sess *authz.Session, courseID uint) Result {
	return run("fetch progress", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		db := a.db.WithContext(ctx)
		enrollment, err := liveEnrollment(db, user.ID, courseID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(NotFound, "You are not enrolled in this course")
		}
		if err != nil {
			return nil, err
		}

		out := CourseProgress{Enrollment: enrollment, CompletedLessonIDs: []uint{}}
		if err := db.Model(&courseModels.Lesson{}).
			Where("course_id = ? AND is_deleted = ?", courseID, false).
			Count(&out.TotalLessons).Error; err != nil {
			return nil, err
		}
		err = db.Model(&courseModels.LessonCompletion{}).
			Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id").
			Where("lesson_completions.user_id = ? AND lesson_completions.course_id = ? AND lessons.is_deleted = ?", user.ID, courseID, false).
			Order("lessons.order_index ASC").
			Pluck("lesson_completions.lesson_id", &out.CompletedLessonIDs).Error
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

// ReconcileEnrollments repairs rows whose completed_at disagrees with their
// progress, recomputing progress from the recorded completions.
func (a *Actions) ReconcileEnrollments(ctx context.Context) Result {
	return run("reconcile enrollments", func() (interface{}, error) {
		var broken []courseModels.Enrollment
		err := a.db.WithContext(ctx).
			Where("is_deleted = ?", false).
			Where("(progress = 100 AND completed_at IS NULL) OR (progress <> 100 AND completed_at IS NOT NULL)").
			Find(&broken).Error
		if err != nil {
			return nil, err
		}

		repaired := 0
		for _, e := range broken {
			err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				return a.recomputeProgress(tx, e.UserID, e.CourseID)
			})
			if err != nil {
				log.Printf("[ENROLLMENT] failed to reconcile enrollment %d: %v", e.ID, err)
				continue
			}
			repaired++
		}
		return map[string]int{"checked": len(broken), "repaired": repaired}, nil
	})
}
