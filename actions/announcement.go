package actions

import (
	"context"
	"sort"
	"strings"

	"learnhub/authz"
	"learnhub/events"
	courseModels "learnhub/models/course"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

type AnnouncementInput struct {
	CourseID *uint  `json:"courseId,omitempty"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Priority string `json:"priority,omitempty"`
}

type AnnouncementUpdate struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

func (a *Actions) CreateAnnouncement(ctx context.Context, sess *authz.Session, in AnnouncementInput) Result {
	var announcement courseModels.Announcement
	var courseName string
	res := run("create announcement", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		if !user.IsInstructor() {
			return nil, denied("post announcements")
		}
		if strings.TrimSpace(in.Title) == "" {
			return nil, fail(Validation, "Announcement title is required")
		}
		if in.Priority == "" {
			in.Priority = courseModels.PriorityNormal
		}
		if !courseModels.IsValidPriority(in.Priority) {
			return nil, fail(Validation, "Invalid priority %q", in.Priority)
		}
		if in.CourseID != nil {
			ok, err := a.authz.AuthorizeCourseOwner(ctx, user.ID, *in.CourseID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, denied("post announcements to this course")
			}
			var course courseModels.Course
			if err := a.db.WithContext(ctx).Select("id", "title").First(&course, *in.CourseID).Error; err != nil {
				return nil, err
			}
			courseName = course.Title
		}

		announcement = courseModels.Announcement{
			InstructorID: user.ID,
			CourseID:     in.CourseID,
			Title:        strings.TrimSpace(in.Title),
			Content:      in.Content,
			Priority:     in.Priority,
		}
		if err := a.db.WithContext(ctx).Create(&announcement).Error; err != nil {
			return nil, err
		}
		return announcement, nil
	})

	if res.Success {
		a.publish(ctx, events.Event{
			Type:       events.TypeAnnouncementCreated,
			CourseID:   derefUint(announcement.CourseID),
			CourseName: courseName,
			Subject:    announcement.Title,
			Text:       announcement.Content,
			Priority:   announcement.Priority,
			Recipients: a.announcementRecipients(ctx, announcement),
		})
	}
	return res
}

// announcementRecipients is the course audience, or for a global
// announcement every student of the instructor's courses
func (a *Actions) announcementRecipients(ctx context.Context, an courseModels.Announcement) []string {
	if an.CourseID != nil {
		return a.enrolledEmails(ctx, *an.CourseID)
	}
	var courseIDs []uint
	err := a.db.WithContext(ctx).Model(&courseModels.Course{}).
		Scopes(authz.CourseOwnedBy(an.InstructorID)).
		Pluck("id", &courseIDs).Error
	if err != nil || len(courseIDs) == 0 {
		return nil
	}
	return a.enrolledEmails(ctx, courseIDs...)
}

func (a *Actions) UpdateAnnouncement(ctx context.Context, sess *authz.Session, id uint, upd AnnouncementUpdate) Result {
	return run("update announcement", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		cols := map[string]interface{}{}
		if upd.Title != nil {
			if strings.TrimSpace(*upd.Title) == "" {
				return nil, fail(Validation, "Announcement title cannot be empty")
			}
			cols["title"] = strings.TrimSpace(*upd.Title)
		}
		if upd.Content != nil {
			cols["content"] = *upd.Content
		}
		if upd.Priority != nil {
			if !courseModels.IsValidPriority(*upd.Priority) {
				return nil, fail(Validation, "Invalid priority %q", *upd.Priority)
			}
			cols["priority"] = *upd.Priority
		}

		db := a.db.WithContext(ctx)
		owned := func() *gorm.DB {
			return db.Model(&courseModels.Announcement{}).Where("id = ? AND instructor_id = ? AND is_deleted = ?", id, user.ID, false)
		}
		if len(cols) > 0 {
			result := owned().Updates(cols)
			if result.Error != nil {
				return nil, result.Error
			}
			if result.RowsAffected == 0 {
				return nil, denied("update this announcement")
			}
		}
		var announcement courseModels.Announcement
		if err := owned().First(&announcement).Error; err != nil {
			if isNotFound(err) {
				return nil, denied("update this announcement")
			}
			return nil, err
		}
		return announcement, nil
	})
}

func (a *Actions) DeleteAnnouncement(ctx context.Context, sess *authz.Session, id uint) Result {
	return run("delete announcement", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		result := a.db.WithContext(ctx).Model(&courseModels.Announcement{}).
			Where("id = ? AND instructor_id = ? AND is_deleted = ?", id, user.ID, false).
			Update("is_deleted", true)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, denied("delete this announcement")
		}
		return nil, nil
	})
}

func (a *Actions) ListInstructorAnnouncements(ctx context.Context, sess *authz.Session) Result {
	return run("fetch announcements", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		announcements := []courseModels.Announcement{}
		err = a.db.WithContext(ctx).
			Where("instructor_id = ? AND is_deleted = ?", user.ID, false).
			Order("created_at DESC").
			Find(&announcements).Error
		if err != nil {
			return nil, err
		}
		return announcements, nil
	})
}

// ListStudentAnnouncements gathers the announcements of the caller's enrolled
// courses and the global ones of their instructors.
func (a *Actions) ListStudentAnnouncements(ctx context.Context, sess *authz.Session) Result {
	return run("fetch announcements", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		db := a.db.WithContext(ctx)

		var courseIDs []uint
		if err := db.Model(&courseModels.Enrollment{}).
			Where("user_id = ? AND is_deleted = ?", user.ID, false).
			Pluck("course_id", &courseIDs).Error; err != nil {
			return nil, err
		}
		announcements := []courseModels.Announcement{}
		if len(courseIDs) == 0 {
			return announcements, nil
		}
		var instructorIDs []uint
		if err := db.Model(&courseModels.Course{}).
			Where("id IN ?", courseIDs).
			Distinct().
			Pluck("instructor_id", &instructorIDs).Error; err != nil {
			return nil, err
		}

		err = db.Where("is_deleted = ?", false).
			Where(db.Where("course_id IN ?", courseIDs).
				Or("course_id IS NULL AND instructor_id IN ?", instructorIDs)).
			Find(&announcements).Error
		if err != nil {
			return nil, err
		}
		SortAnnouncements(announcements)
		return announcements, nil
	})
}

// SortAnnouncements orders newest day first and, within a day, urgent before
// important before normal.
func SortAnnouncements(list []courseModels.Announcement) {
	sort.SliceStable(list, func(i, j int) bool {
		di := now.With(list[i].CreatedAt.UTC()).BeginningOfDay()
		dj := now.With(list[j].CreatedAt.UTC()).BeginningOfDay()
		if !di.Equal(dj) {
			return di.After(dj)
		}
		ri, rj := courseModels.PriorityRank(list[i].Priority), courseModels.PriorityRank(list[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func derefUint(p *uint) uint {
	if p == nil {
		return 0
	}
	return *p
}
