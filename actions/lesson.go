package actions

import (
	"context"
	"errors"
	"strings"

	"learnhub/authz"
	"learnhub/events"
	courseModels "learnhub/models/course"
	"learnhub/ordering"

	"gorm.io/gorm"
)

type CreateLessonInput struct {
	CourseID        uint    `json:"courseId"`
	Title           string  `json:"title"`
	Description     *string `json:"description,omitempty"`
	VideoURL        *string `json:"videoUrl,omitempty"`
	ContentType     *string `json:"contentType,omitempty"`
	Content         *string `json:"content,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	IsPreview       *bool   `json:"isPreview,omitempty"`
	PassingScore    *int    `json:"passingScore,omitempty"`
}

// LessonUpdate lists the only lesson fields an update may touch. Course and
// position are deliberately absent; position changes go through reorder.
type LessonUpdate struct {
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	ContentType     *string `json:"content_type,omitempty"`
	Content         *string `json:"content,omitempty"`
	VideoURL        *string `json:"video_url,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	IsPreview       *bool   `json:"is_preview,omitempty"`
	PassingScore    *int    `json:"passing_score,omitempty"`
}

func (u LessonUpdate) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.Title != nil {
		cols["title"] = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.ContentType != nil {
		cols["content_type"] = *u.ContentType
	}
	if u.Content != nil {
		cols["content"] = *u.Content
	}
	if u.VideoURL != nil {
		cols["video_url"] = *u.VideoURL
	}
	if u.DurationMinutes != nil {
		cols["duration_minutes"] = *u.DurationMinutes
	}
	if u.IsPreview != nil {
		cols["is_preview"] = *u.IsPreview
	}
	if u.PassingScore != nil {
		cols["passing_score"] = *u.PassingScore
	}
	return cols
}

type LessonCreated struct {
	LessonID uint                `json:"lessonId"`
	Lesson   courseModels.Lesson `json:"lesson"`
}

type LessonList struct {
	Lessons []courseModels.Lesson `json:"lessons"`
}

func validateLessonFields(title *string, contentType *string, passingScore *int, duration *int) error {
	if title != nil && strings.TrimSpace(*title) == "" {
		return fail(Validation, "Lesson title is required")
	}
	if contentType != nil && !courseModels.IsValidContentType(*contentType) {
		return fail(Validation, "Invalid content type %q", *contentType)
	}
	if passingScore != nil && (*passingScore < 0 || *passingScore > 100) {
		return fail(Validation, "Passing score must be between 0 and 100")
	}
	if duration != nil && *duration < 0 {
		return fail(Validation, "Duration cannot be negative")
	}
	return nil
}

// lessonPositions returns the live lessons of a course in display order
func lessonPositions(tx *gorm.DB, courseID uint) ([]ordering.Position, error) {
	var positions []ordering.Position
	err := tx.Model(&courseModels.Lesson{}).
		Select("id", "order_index").
		Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index ASC, id ASC").
		Scan(&positions).Error
	return positions, err
}

func writePositions(tx *gorm.DB, principalID, courseID uint, positions []ordering.Position) error {
	for _, p := range positions {
		err := tx.Model(&courseModels.Lesson{}).
			Scopes(authz.LessonOwnedBy(principalID)).
			Where("id = ? AND course_id = ?", p.ID, courseID).
			Update("order_index", p.OrderIndex).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// CreateLesson appends a lesson to the end of a course
func (a *Actions) CreateLesson(ctx context.Context, sess *authz.Session, in CreateLessonInput) Result {
	var course courseModels.Course
	res := run("create lesson", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		if in.CourseID == 0 {
			return nil, fail(Validation, "Course is required")
		}
		if strings.TrimSpace(in.Title) == "" {
			return nil, fail(Validation, "Lesson title is required")
		}
		if err := validateLessonFields(nil, in.ContentType, in.PassingScore, in.DurationMinutes); err != nil {
			return nil, err
		}

		lesson := courseModels.Lesson{
			CourseID:        in.CourseID,
			Title:           strings.TrimSpace(in.Title),
			Description:     in.Description,
			VideoURL:        in.VideoURL,
			Content:         in.Content,
			DurationMinutes: in.DurationMinutes,
			PassingScore:    in.PassingScore,
			ContentType:     courseModels.ContentLesson,
		}
		if in.ContentType != nil {
			lesson.ContentType = *in.ContentType
		} else if in.VideoURL != nil && *in.VideoURL != "" {
			lesson.ContentType = courseModels.ContentVideo
		}
		if in.IsPreview != nil {
			lesson.IsPreview = *in.IsPreview
		}

		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			c, err := a.guardCourse(ctx, tx, user.ID, in.CourseID, "add lessons to this course")
			if err != nil {
				return err
			}
			course = c
			positions, err := lessonPositions(tx, in.CourseID)
			if err != nil {
				return err
			}
			lesson.OrderIndex = ordering.NextIndex(positions)
			return tx.Create(&lesson).Error
		})
		if err != nil {
			return nil, err
		}
		return LessonCreated{LessonID: lesson.ID, Lesson: lesson}, nil
	})

	if res.Success {
		created := res.Data.(LessonCreated)
		a.publish(ctx, events.Event{
			Type:       events.TypeLessonCreated,
			CourseID:   course.ID,
			CourseName: course.Title,
			Subject:    created.Lesson.Title,
			Recipients: a.enrolledEmails(ctx, course.ID),
		})
	}
	return res
}

// UpdateLesson applies the allowed fields. The ownership predicate is part of
// the update statement itself, so a foreign lesson matches no row.
func (a *Actions) UpdateLesson(ctx context.Context, sess *authz.Session, lessonID uint, upd LessonUpdate) Result {
	return run("update lesson", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		if err := validateLessonFields(upd.Title, upd.ContentType, upd.PassingScore, upd.DurationMinutes); err != nil {
			return nil, err
		}

		var lesson courseModels.Lesson
		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			cols := upd.columns()
			if len(cols) > 0 {
				result := tx.Model(&courseModels.Lesson{}).
					Scopes(authz.LessonOwnedBy(user.ID)).
					Where("id = ? AND is_deleted = ?", lessonID, false).
					Updates(cols)
				if result.Error != nil {
					return result.Error
				}
				if result.RowsAffected == 0 {
					return denied("update this lesson")
				}
			}
			err := tx.Scopes(authz.LessonOwnedBy(user.ID)).
				Where("id = ? AND is_deleted = ?", lessonID, false).
				First(&lesson).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return denied("update this lesson")
			}
			return err
		})
		if err != nil {
			return nil, err
		}
		return lesson, nil
	})
}

// DeleteLesson removes a lesson and closes the gap it leaves, in one
// transaction under the course lock.
func (a *Actions) DeleteLesson(ctx context.Context, sess *authz.Session, lessonID uint) Result {
	return run("delete lesson", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}

		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var lesson courseModels.Lesson
			err := tx.Select("id", "course_id").
				Where("id = ? AND is_deleted = ?", lessonID, false).
				First(&lesson).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return denied("delete this lesson")
			}
			if err != nil {
				return err
			}
			if _, err := a.guardCourse(ctx, tx, user.ID, lesson.CourseID, "delete this lesson"); err != nil {
				return err
			}

			result := tx.Model(&courseModels.Lesson{}).
				Scopes(authz.LessonOwnedBy(user.ID)).
				Where("id = ? AND is_deleted = ?", lessonID, false).
				Update("is_deleted", true)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return denied("delete this lesson")
			}
			if err := tx.Model(&courseModels.QuizQuestion{}).
				Where("lesson_id = ?", lessonID).
				Update("is_deleted", true).Error; err != nil {
				return err
			}

			remaining, err := lessonPositions(tx, lesson.CourseID)
			if err != nil {
				return err
			}
			if err := writePositions(tx, user.ID, lesson.CourseID, ordering.Renumber(remaining)); err != nil {
				return err
			}
			return a.refreshCourseProgress(tx, lesson.CourseID)
		})
		return nil, err
	})
}

// ReorderLessons persists a drag and drop order. The ids must be exactly the
// course's live lessons.
func (a *Actions) ReorderLessons(ctx context.Context, sess *authz.Session, courseID uint, order []ordering.Position) Result {
	return run("reorder lessons", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}

		var applied []ordering.Position
		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if _, err := a.guardCourse(ctx, tx, user.ID, courseID, "reorder lessons of this course"); err != nil {
				return err
			}
			current, err := lessonPositions(tx, courseID)
			if err != nil {
				return err
			}
			members := make([]uint, len(current))
			for i, p := range current {
				members[i] = p.ID
			}
			applied, err = ordering.ApplyExplicitOrder(members, order)
			if errors.Is(err, ordering.ErrInvalidIDs) {
				return fail(Validation, "Invalid lesson IDs")
			}
			if err != nil {
				return err
			}
			return writePositions(tx, user.ID, courseID, applied)
		})
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"order": applied}, nil
	})
}

// GetLessonsByCourse lists the live lessons of a course by position
func (a *Actions) GetLessonsByCourse(ctx context.Context, courseID uint) Result {
	return run("fetch lessons", func() (interface{}, error) {
		lessons, err := liveLessons(a.db.WithContext(ctx), courseID)
		if err != nil {
			return nil, err
		}
		return LessonList{Lessons: lessons}, nil
	})
}

// ListCourseLessons is the editor listing, full bodies included, for the
// course owner only.
func (a *Actions) ListCourseLessons(ctx context.Context, sess *authz.Session, courseID uint) Result {
	return run("fetch lessons", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		ok, err := a.authz.AuthorizeCourseOwner(ctx, user.ID, courseID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, denied("view lessons of this course")
		}
		lessons, err := liveLessons(a.db.WithContext(ctx), courseID)
		if err != nil {
			return nil, err
		}
		return LessonList{Lessons: lessons}, nil
	})
}

// GetPublishedLessons is the catalog listing. Drafts and archived courses are
// not found and only preview lessons keep their bodies.
func (a *Actions) GetPublishedLessons(ctx context.Context, courseID uint) Result {
	return run("fetch lessons", func() (interface{}, error) {
		db := a.db.WithContext(ctx)
		var count int64
		if err := db.Model(&courseModels.Course{}).Scopes(published).Where("id = ?", courseID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fail(NotFound, "Course not found")
		}
		lessons, err := liveLessons(db, courseID)
		if err != nil {
			return nil, err
		}
		return LessonList{Lessons: hideLockedBodies(lessons)}, nil
	})
}

func liveLessons(db *gorm.DB, courseID uint) ([]courseModels.Lesson, error) {
	lessons := []courseModels.Lesson{}
	err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index ASC, id ASC").
		Find(&lessons).Error
	return lessons, err
}

func hideLockedBodies(lessons []courseModels.Lesson) []courseModels.Lesson {
	for i := range lessons {
		if !lessons[i].IsPreview {
			lessons[i].Content = nil
			lessons[i].VideoURL = nil
		}
	}
	return lessons
}
