package mapper

import (
	courseModels "learnhub/models/course"
)

// CourseColumns lists the columns a mapped course row actually carries,
// keyed by column name. Nil optionals are left out.
func CourseColumns(c courseModels.Course) map[string]interface{} {
	cols := map[string]interface{}{}
	if c.Title != "" {
		cols["title"] = c.Title
	}
	if c.Status != "" {
		cols["status"] = c.Status
	}
	if c.CourseTags != nil {
		cols["course_tags"] = c.CourseTags
	}
	putString(cols, "description", c.Description)
	putString(cols, "about_course", c.AboutCourse)
	putString(cols, "content_drip_type", c.ContentDripType)
	putString(cols, "thumbnail_url", c.ThumbnailURL)
	putString(cols, "intro_video_url", c.IntroVideoURL)
	putString(cols, "what_will_learn", c.WhatWillLearn)
	putString(cols, "target_audience", c.TargetAudience)
	putString(cols, "requirements", c.Requirements)
	putString(cols, "materials_included", c.MaterialsIncluded)
	putString(cols, "category", c.Category)
	if c.RegularPrice != nil {
		cols["regular_price"] = *c.RegularPrice
	}
	if c.DiscountedPrice != nil {
		cols["discounted_price"] = *c.DiscountedPrice
	}
	if c.IsFree != nil {
		cols["is_free"] = *c.IsFree
	}
	if c.DurationHours != nil {
		cols["duration_hours"] = *c.DurationHours
	}
	if c.DurationMinutes != nil {
		cols["duration_minutes"] = *c.DurationMinutes
	}
	if c.ContentDripEnabled != nil {
		cols["content_drip_enabled"] = *c.ContentDripEnabled
	}
	return cols
}

// SettingsColumns is the partial-update counterpart of ToSettings: only the
// settings fields present on the form, no defaults.
func SettingsColumns(f CourseForm) map[string]interface{} {
	cols := map[string]interface{}{}
	if f.PassingGrade != nil {
		cols["passing_grade"] = f.PassingGrade.Int()
	}
	if f.CertificateEnabled != nil {
		cols["certificate_enabled"] = *f.CertificateEnabled
	}
	if f.LifetimeAccess != nil {
		cols["lifetime_access"] = *f.LifetimeAccess
	}
	if f.AccessDays != nil {
		cols["access_days"] = f.AccessDays.Int()
	}
	if f.MaxStudents != nil {
		cols["max_students"] = f.MaxStudents.Int()
	}
	if f.Level != nil {
		cols["level"] = *f.Level
	}
	if f.Language != nil {
		cols["language"] = *f.Language
	}
	if f.EnrollmentStart != nil {
		cols["enrollment_start"] = parseDate(f.EnrollmentStart)
	}
	if f.EnrollmentEnd != nil {
		cols["enrollment_end"] = parseDate(f.EnrollmentEnd)
	}
	return cols
}

// HasSettings reports whether the form carries any settings field
func HasSettings(f CourseForm) bool {
	return len(SettingsColumns(f)) > 0
}

func putString(cols map[string]interface{}, key string, v *string) {
	if v != nil {
		cols[key] = *v
	}
}
