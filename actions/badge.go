package actions

import (
	"context"
	"strings"

	"learnhub/authz"
	courseModels "learnhub/models/course"

	"gorm.io/gorm"
)

type BadgeInput struct {
	CourseID    *uint   `json:"courseId,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	IconURL     *string `json:"iconUrl,omitempty"`
	Criteria    string  `json:"criteria"`
}

type BadgeUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IconURL     *string `json:"icon_url,omitempty"`
	Criteria    *string `json:"criteria,omitempty"`
}

type BadgeAward struct {
	Award   courseModels.UserBadge `json:"award"`
	Created bool                   `json:"created"`
}

func (a *Actions) CreateBadge(ctx context.Context, sess *authz.Session, in BadgeInput) Result {
	return run("create badge", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		if !user.IsInstructor() {
			return nil, denied("create badges")
		}
		if strings.TrimSpace(in.Name) == "" {
			return nil, fail(Validation, "Badge name is required")
		}
		if in.CourseID != nil {
			ok, err := a.authz.AuthorizeCourseOwner(ctx, user.ID, *in.CourseID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, denied("create badges for this course")
			}
		}

		badge := courseModels.Badge{
			InstructorID: user.ID,
			CourseID:     in.CourseID,
			Name:         strings.TrimSpace(in.Name),
			Description:  in.Description,
			IconURL:      in.IconURL,
			Criteria:     in.Criteria,
		}
		if err := a.db.WithContext(ctx).Create(&badge).Error; err != nil {
			return nil, err
		}
		return badge, nil
	})
}

func ownedBadge(db *gorm.DB, instructorID, badgeID uint) *gorm.DB {
	return db.Model(&courseModels.Badge{}).
		Where("id = ? AND instructor_id = ? AND is_deleted = ?", badgeID, instructorID, false)
}

func (a *Actions) UpdateBadge(ctx context.Context, sess *authz.Session, badgeID uint, upd BadgeUpdate) Result {
	return run("update badge", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		cols := map[string]interface{}{}
		if upd.Name != nil {
			if strings.TrimSpace(*upd.Name) == "" {
				return nil, fail(Validation, "Badge name cannot be empty")
			}
			cols["name"] = strings.TrimSpace(*upd.Name)
		}
		if upd.Description != nil {
			cols["description"] = *upd.Description
		}
		if upd.IconURL != nil {
			cols["icon_url"] = *upd.IconURL
		}
		if upd.Criteria != nil {
			cols["criteria"] = *upd.Criteria
		}

		db := a.db.WithContext(ctx)
		if len(cols) > 0 {
			result := ownedBadge(db, user.ID, badgeID).Updates(cols)
			if result.Error != nil {
				return nil, result.Error
			}
			if result.RowsAffected == 0 {
				return nil, denied("update this badge")
			}
		}
		var badge courseModels.Badge
		if err := ownedBadge(db, user.ID, badgeID).First(&badge).Error; err != nil {
			if isNotFound(err) {
				return nil, denied("update this badge")
			}
			return nil, err
		}
		return badge, nil
	})
}

func (a *Actions) DeleteBadge(ctx context.Context, sess *authz.Session, badgeID uint) Result {
	return run("delete badge", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		result := ownedBadge(a.db.WithContext(ctx), user.ID, badgeID).Update("is_deleted", true)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, denied("delete this badge")
		}
		return nil, nil
	})
}

func (a *Actions) ListInstructorBadges(ctx context.Context, sess *authz.Session) Result {
	return run("fetch badges", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		badges := []courseModels.Badge{}
		err = a.db.WithContext(ctx).
			Where("instructor_id = ? AND is_deleted = ?", user.ID, false).
			Order("created_at DESC").
			Find(&badges).Error
		if err != nil {
			return nil, err
		}
		return badges, nil
	})
}

// AwardBadge gives a badge to a student of the badge owner. Awarding twice
// returns the first award.
func (a *Actions) AwardBadge(ctx context.Context, sess *authz.Session, badgeID, studentID uint) Result {
	return run("award badge", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}

		var out BadgeAward
		err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var badge courseModels.Badge
			if err := ownedBadge(tx, user.ID, badgeID).First(&badge).Error; err != nil {
				if isNotFound(err) {
					return denied("award this badge")
				}
				return err
			}

			enrolled := tx.Model(&courseModels.Enrollment{}).
				Where("user_id = ? AND is_deleted = ?", studentID, false)
			if badge.CourseID != nil {
				enrolled = enrolled.Where("course_id = ?", *badge.CourseID)
			} else {
				owned := tx.Session(&gorm.Session{NewDB: true}).
					Model(&courseModels.Course{}).
					Select("id").
					Scopes(authz.CourseOwnedBy(user.ID))
				enrolled = enrolled.Where("course_id IN (?)", owned)
			}
			var count int64
			if err := enrolled.Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fail(Validation, "The student is not enrolled in your course")
			}

			err := tx.Where("user_id = ? AND badge_id = ?", studentID, badgeID).First(&out.Award).Error
			if err == nil {
				return nil
			}
			if !isNotFound(err) {
				return err
			}
			out.Award = courseModels.UserBadge{
				UserID:    studentID,
				BadgeID:   badgeID,
				AwardedBy: user.ID,
				AwardedAt: a.clock(),
			}
			out.Created = true
			return tx.Omit("Badge").Create(&out.Award).Error
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

func (a *Actions) ListMyBadges(ctx context.Context, sess *authz.Session) Result {
	return run("fetch badges", func() (interface{}, error) {
		user, err := a.principal(ctx, sess)
		if err != nil {
			return nil, err
		}
		awards := []courseModels.UserBadge{}
		err = a.db.WithContext(ctx).Preload("Badge").
			Where("user_id = ?", user.ID).
			Order("awarded_at DESC").
			Find(&awards).Error
		if err != nil {
			return nil, err
		}
		return awards, nil
	})
}
