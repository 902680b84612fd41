package actions

import (
	"context"
	"errors"
	"log"
	"strings"

	"learnhub/authz"
	"learnhub/mapper"
	courseModels "learnhub/models/course"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// courseColumns is the allow-list for course updates. Identity, owner and
// status are never written through UpdateCourse.
var courseColumns = map[string]bool{
	"title": true, "description": true, "about_course": true,
	"regular_price": true, "discounted_price": true, "is_free": true,
	"course_tags": true, "duration_hours": true, "duration_minutes": true,
	"content_drip_enabled": true, "content_drip_type": true,
	"thumbnail_url": true, "intro_video_url": true, "what_will_learn": true,
	"target_audience": true, "requirements": true, "materials_included": true,
	"category": true,
}

type CourseCreated struct {
	CourseID uint `json:"courseId"`
}

type CoursePage struct {
	Courses []courseModels.Course `json:"courses"`
	Total   int64                 `json:"total"`
	Page    int                   `json:"page"`
	Limit   int                   `json:"limit"`
}

type CourseDetail struct {
	Course  courseModels.Course   `json:"course"`
	Lessons []courseModels.Lesson `json:"lessons"`
}

func validateCourseForm(f mapper.CourseForm, creating bool) error {
	if creating && (f.Title == nil || strings.TrimSpace(*f.Title) == "") {
		return fail(Validation, "Course title is required")
	}
	if !creating && f.Title != nil && strings.TrimSpace(*f.Title) == "" {
		return fail(Validation, "Course title cannot be empty")
	}
	if f.Price != nil && f.Price.Float() < 0 {
		return fail(Validation, "Price cannot be negative")
	}
	if f.DiscountedPrice != nil && f.DiscountedPrice.Float() < 0 {
		return fail(Validation, "Discounted price cannot be negative")
	}
	if f.Price != nil && f.DiscountedPrice != nil && f.DiscountedPrice.Float() > f.Price.Float() {
		return fail(Validation, "Discounted price cannot exceed the regular price")
	}
	if f.PassingGrade != nil && (f.PassingGrade.Int() < 0 || f.PassingGrade.Int() > 100) {
		return fail(Validation, "Passing grade must be between 0 and 100")
	}
	if f.MaxStudents != nil && f.MaxStudents.Int() < 0 {
		return fail(Validation, "Max students cannot be negative")
	}
	if f.AccessDays != nil && f.AccessDays.Int() < 0 {
		return fail(Validation, "Access days cannot be negative")
	}
	return nil
}

// CreateCourse stores a draft course with its settings row
func (a *Actions) CreateCourse(ctx context.Context, sess *authz.Session, form mapper.CourseForm) Result {
	return run("create course", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		if !user.IsInstructor() {
			return nil, denied("create courses")
		}
		if err := validateCourseForm(form, true); err != nil {
			return nil, err
		}

		course := a.mapper.ToStorage(form)
		course.InstructorID = user.ID
		course.Status = courseModels.StatusDraft
		if course.IsFree == nil {
			free := true
			course.IsFree = &free
		}
		settings := a.mapper.ToSettings(form)

		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit("Settings").Create(&course).Error; err != nil {
				return err
			}
			settings.CourseID = course.ID
			return tx.Create(&settings).Error
		})
		if err != nil {
			return nil, err
		}
		log.Printf("[COURSE] instructor %d created course %d", user.ID, course.ID)
		return CourseCreated{CourseID: course.ID}, nil
	})
}

// UpdateCourse writes only the fields present on the form
func (a *Actions) UpdateCourse(ctx context.Context, sess *authz.Session, courseID uint, form mapper.CourseForm) Result {
	var updated courseModels.Course
	res := run("update course", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		if err := validateCourseForm(form, false); err != nil {
			return nil, err
		}
		cols := filterFields(mapper.CourseColumns(a.mapper.ToStorage(form)), courseColumns)

		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			current, err := a.guardCourse(ctx, tx, user.ID, courseID, "update this course")
			if err != nil {
				return err
			}
			if err := checkPrices(current, form); err != nil {
				return err
			}

			if len(cols) > 0 {
				result := tx.Model(&courseModels.Course{}).
					Scopes(authz.CourseOwnedBy(user.ID)).
					Where("id = ?", courseID).
					Updates(cols)
				if result.Error != nil {
					return result.Error
				}
				if result.RowsAffected == 0 {
					return denied("update this course")
				}
			}
			if mapper.HasSettings(form) {
				if err := a.upsertSettings(tx, courseID, form); err != nil {
					return err
				}
			}
			return tx.Preload("Settings").First(&updated, courseID).Error
		})
		if err != nil {
			return nil, err
		}
		return a.mapper.ToForm(updated), nil
	})

	if res.Success && updated.Status == courseModels.StatusPublished {
		a.reindex(ctx, updated)
	}
	return res
}

// checkPrices compares a partial price change against the stored prices.
// Forms carrying both prices are checked by validateCourseForm.
func checkPrices(current courseModels.Course, f mapper.CourseForm) error {
	switch {
	case f.DiscountedPrice != nil && f.Price == nil && current.RegularPrice != nil:
		if f.DiscountedPrice.Float() > *current.RegularPrice {
			return fail(Validation, "Discounted price cannot exceed the regular price")
		}
	case f.Price != nil && f.DiscountedPrice == nil && current.DiscountedPrice != nil:
		if f.Price.Float() < *current.DiscountedPrice {
			return fail(Validation, "Regular price cannot be below the discounted price")
		}
	}
	return nil
}

func (a *Actions) upsertSettings(tx *gorm.DB, courseID uint, form mapper.CourseForm) error {
	var settings courseModels.CourseSettings
	err := tx.Where("course_id = ?", courseID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = a.mapper.ToSettings(form)
		settings.CourseID = courseID
		return tx.Create(&settings).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&settings).Updates(mapper.SettingsColumns(form)).Error
}

// GetCourseForm renders an owned course in the editor's shape
func (a *Actions) GetCourseForm(ctx context.Context, sess *authz.Session, courseID uint) Result {
	return run("fetch course", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		var course courseModels.Course
		err = a.db.WithContext(ctx).Preload("Settings").
			Scopes(authz.CourseOwnedBy(user.ID)).
			Where("id = ?", courseID).
			First(&course).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, denied("view this course")
		}
		if err != nil {
			return nil, err
		}
		return a.mapper.ToForm(course), nil
	})
}

func (a *Actions) ListInstructorCourses(ctx context.Context, sess *authz.Session) Result {
	return run("fetch courses", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		courses := []courseModels.Course{}
		err = a.db.WithContext(ctx).Preload("Settings").
			Scopes(authz.CourseOwnedBy(user.ID)).
			Order("created_at DESC").
			Find(&courses).Error
		if err != nil {
			return nil, err
		}
		return courses, nil
	})
}

// PublishCourse makes a course visible to students. A course without
// lessons cannot be published.
func (a *Actions) PublishCourse(ctx context.Context, sess *authz.Session, courseID uint) Result {
	var course courseModels.Course
	res := run("publish course", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			current, err := a.guardCourse(ctx, tx, user.ID, courseID, "publish this course")
			if err != nil {
				return err
			}
			var lessons int64
			if err := tx.Model(&courseModels.Lesson{}).
				Where("course_id = ? AND is_deleted = ?", courseID, false).
				Count(&lessons).Error; err != nil {
				return err
			}
			if lessons == 0 {
				return fail(Validation, "Add at least one lesson before publishing")
			}

			cols := map[string]interface{}{"status": courseModels.StatusPublished}
			if current.PublishedAt == nil {
				cols["published_at"] = a.clock()
			}
			if err := tx.Model(&courseModels.Course{}).
				Scopes(authz.CourseOwnedBy(user.ID)).
				Where("id = ?", courseID).
				Updates(cols).Error; err != nil {
				return err
			}
			return tx.Preload("Settings").First(&course, courseID).Error
		})
		if err != nil {
			return nil, err
		}
		return course, nil
	})

	if res.Success {
		a.reindex(ctx, course)
	}
	return res
}

// ArchiveCourse hides a course from students. Courses are never hard deleted.
func (a *Actions) ArchiveCourse(ctx context.Context, sess *authz.Session, courseID uint) Result {
	res := run("archive course", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		result := a.db.WithContext(ctx).Model(&courseModels.Course{}).
			Scopes(authz.CourseOwnedBy(user.ID)).
			Where("id = ?", courseID).
			Update("status", courseModels.StatusArchived)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, denied("archive this course")
		}
		return nil, nil
	})

	if res.Success && a.indexer != nil {
		if err := a.indexer.RemoveCourse(ctx, courseID); err != nil {
			log.Printf("[SEARCH] failed to remove course %d: %v", courseID, err)
		}
	}
	return res
}

// DeleteCourse is ArchiveCourse
func (a *Actions) DeleteCourse(ctx context.Context, sess *authz.Session, courseID uint) Result {
	return a.ArchiveCourse(ctx, sess, courseID)
}

func (a *Actions) reindex(ctx context.Context, course courseModels.Course) {
	if a.indexer == nil {
		return
	}
	if err := a.indexer.IndexCourse(ctx, course); err != nil {
		log.Printf("[SEARCH] failed to index course %d: %v", course.ID, err)
	}
}

func published(db *gorm.DB) *gorm.DB {
	return db.Where("status = ? AND is_deleted = ?", courseModels.StatusPublished, false)
}

func (a *Actions) ListPublishedCourses(ctx context.Context, page, limit int) Result {
	return run("fetch courses", func() (interface{}, error) {
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = defaultPageSize
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}

		out := CoursePage{Courses: []courseModels.Course{}, Page: page, Limit: limit}
		db := a.db.WithContext(ctx)
		if err := db.Model(&courseModels.Course{}).Scopes(published).Count(&out.Total).Error; err != nil {
			return nil, err
		}
		err := db.Preload("Settings").Scopes(published).
			Order("published_at DESC, id DESC").
			Offset((page - 1) * limit).Limit(limit).
			Find(&out.Courses).Error
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

// SearchCourses queries the search index when one is configured and falls
// back to a title match otherwise.
func (a *Actions) SearchCourses(ctx context.Context, query string, limit int) Result {
	return run("search courses", func() (interface{}, error) {
		query = strings.TrimSpace(query)
		if query == "" {
			return nil, fail(Validation, "Search query is required")
		}
		if limit < 1 || limit > maxPageSize {
			limit = defaultPageSize
		}

		db := a.db.WithContext(ctx)
		if a.indexer != nil {
			ids, err := a.indexer.SearchCourses(ctx, query, limit)
			if err == nil {
				return a.coursesInOrder(db, ids)
			}
			log.Printf("[SEARCH] index query failed, using title match: %v", err)
		}

		courses := []courseModels.Course{}
		err := db.Scopes(published).
			Where("LOWER(title) LIKE ?", "%"+strings.ToLower(query)+"%").
			Order("published_at DESC").
			Limit(limit).
			Find(&courses).Error
		if err != nil {
			return nil, err
		}
		return courses, nil
	})
}

func (a *Actions) coursesInOrder(db *gorm.DB, ids []uint) ([]courseModels.Course, error) {
	out := []courseModels.Course{}
	if len(ids) == 0 {
		return out, nil
	}
	var found []courseModels.Course
	if err := db.Scopes(published).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]courseModels.Course, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetPublishedCourse is the student view. Lesson bodies stay hidden unless
// the lesson is a preview.
func (a *Actions) GetPublishedCourse(ctx context.Context, courseID uint) Result {
	return run("fetch course", func() (interface{}, error) {
		db := a.db.WithContext(ctx)
		var course courseModels.Course
		err := db.Preload("Settings").Scopes(published).Where("id = ?", courseID).First(&course).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(NotFound, "Course not found")
		}
		if err != nil {
			return nil, err
		}

		lessons, err := liveLessons(db, courseID)
		if err != nil {
			return nil, err
		}
		return CourseDetail{Course: course, Lessons: hideLockedBodies(lessons)}, nil
	})
}
