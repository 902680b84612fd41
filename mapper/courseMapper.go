// Package mapper translates between the course editor's form shape and the
// persistence shape of courses and their settings row.
package mapper

import (
	"strings"
	"time"

	courseModels "learnhub/models/course"

	"github.com/jinzhu/now"
	"gorm.io/datatypes"
)

const (
	DefaultPassingGrade = 70
	DefaultLanguage     = "English"
	LevelAllLevels      = "all_levels"

	dateLayout = "2006-01-02"
)

// CourseForm is the record the course editor submits and renders. Every field
// is optional: nil means "not present", never "zero".
type CourseForm struct {
	Title             *string  `json:"title,omitempty"`
	ShortDescription  *string  `json:"shortDescription,omitempty"`
	Description       *string  `json:"description,omitempty"`
	Price             *Numeric `json:"price,omitempty"`
	DiscountedPrice   *Numeric `json:"discountedPrice,omitempty"`
	CourseTags        *string  `json:"courseTags,omitempty"`
	DurationHours     *Numeric `json:"durationHours,omitempty"`
	DurationMinutes   *Numeric `json:"durationMinutes,omitempty"`
	ContentDrip       *bool    `json:"contentDrip,omitempty"`
	ContentDripType   *string  `json:"contentDripType,omitempty"`
	Status            *string  `json:"status,omitempty"`
	ThumbnailURL      *string  `json:"thumbnailUrl,omitempty"`
	IntroVideoURL     *string  `json:"introVideoUrl,omitempty"`
	WhatYouWillLearn  *string  `json:"whatYouWillLearn,omitempty"`
	TargetAudience    *string  `json:"targetAudience,omitempty"`
	Requirements      *string  `json:"requirements,omitempty"`
	MaterialsIncluded *string  `json:"materialsIncluded,omitempty"`
	Category          *string  `json:"category,omitempty"`

	// settings row, flattened
	PassingGrade       *Numeric `json:"passingGrade,omitempty"`
	CertificateEnabled *bool    `json:"certificateEnabled,omitempty"`
	EnrollmentStart    *string  `json:"enrollmentStart,omitempty"`
	EnrollmentEnd      *string  `json:"enrollmentEnd,omitempty"`
	LifetimeAccess     *bool    `json:"lifetimeAccess,omitempty"`
	AccessDays         *Numeric `json:"accessDays,omitempty"`
	MaxStudents        *Numeric `json:"maxStudents,omitempty"`
	Level              *string  `json:"level,omitempty"`
	Language           *string  `json:"language,omitempty"`
}

// Mapper carries the only configurable default, the course language.
// The zero value uses DefaultLanguage.
type Mapper struct {
	DefaultLanguage string
}

func (m Mapper) language() string {
	if m.DefaultLanguage == "" {
		return DefaultLanguage
	}
	return m.DefaultLanguage
}

// ToStorage renames and coerces form fields into a course row. Absent fields
// stay nil so a partial update never overwrites columns the form did not send.
func (m Mapper) ToStorage(f CourseForm) courseModels.Course {
	c := courseModels.Course{
		Description:        cloneString(f.ShortDescription),
		AboutCourse:        cloneString(f.Description),
		ContentDripEnabled: cloneBool(f.ContentDrip),
		ContentDripType:    cloneString(f.ContentDripType),
		ThumbnailURL:       cloneString(f.ThumbnailURL),
		IntroVideoURL:      cloneString(f.IntroVideoURL),
		WhatWillLearn:      cloneString(f.WhatYouWillLearn),
		TargetAudience:     cloneString(f.TargetAudience),
		Requirements:       cloneString(f.Requirements),
		MaterialsIncluded:  cloneString(f.MaterialsIncluded),
		Category:           cloneString(f.Category),
		DurationHours:      numericToInt(f.DurationHours),
		DurationMinutes:    numericToInt(f.DurationMinutes),
		DiscountedPrice:    numericToFloat(f.DiscountedPrice),
	}
	if f.Title != nil {
		c.Title = strings.TrimSpace(*f.Title)
	}
	if f.Status != nil {
		c.Status = *f.Status
	}
	if f.Price != nil {
		c.RegularPrice = numericToFloat(f.Price)
		free := f.Price.Float() == 0
		c.IsFree = &free
	}
	if f.CourseTags != nil {
		c.CourseTags = datatypes.JSONSlice[string](SplitTags(*f.CourseTags))
	}
	return c
}

// ToForm is the inverse of ToStorage plus ToSettings. The first settings row,
// when present, is flattened into the form with defaults for missing values.
func (m Mapper) ToForm(c courseModels.Course) CourseForm {
	status := c.Status
	if status == "" {
		status = courseModels.StatusDraft
	}
	tags := JoinTags(c.CourseTags)

	f := CourseForm{
		Title:             cloneString(&c.Title),
		ShortDescription:  cloneString(c.Description),
		Description:       cloneString(c.AboutCourse),
		Price:             floatToNumeric(c.RegularPrice),
		DiscountedPrice:   floatToNumeric(c.DiscountedPrice),
		CourseTags:        &tags,
		DurationHours:     intToNumeric(c.DurationHours),
		DurationMinutes:   intToNumeric(c.DurationMinutes),
		ContentDrip:       cloneBool(c.ContentDripEnabled),
		ContentDripType:   cloneString(c.ContentDripType),
		Status:            &status,
		ThumbnailURL:      cloneString(c.ThumbnailURL),
		IntroVideoURL:     cloneString(c.IntroVideoURL),
		WhatYouWillLearn:  cloneString(c.WhatWillLearn),
		TargetAudience:    cloneString(c.TargetAudience),
		Requirements:      cloneString(c.Requirements),
		MaterialsIncluded: cloneString(c.MaterialsIncluded),
		Category:          cloneString(c.Category),
	}

	var s courseModels.CourseSettings
	if len(c.Settings) > 0 {
		s = c.Settings[0]
	}
	m.flattenSettings(&f, s)
	return f
}

func (m Mapper) flattenSettings(f *CourseForm, s courseModels.CourseSettings) {
	passing := DefaultPassingGrade
	if s.PassingGrade != nil {
		passing = *s.PassingGrade
	}
	certificate := s.CertificateEnabled != nil && *s.CertificateEnabled
	lifetime := s.LifetimeAccess == nil || *s.LifetimeAccess
	level := LevelAllLevels
	if s.Level != nil && *s.Level != "" {
		level = *s.Level
	}
	language := m.language()
	if s.Language != nil && *s.Language != "" {
		language = *s.Language
	}

	f.PassingGrade = Num(float64(passing))
	f.CertificateEnabled = &certificate
	f.LifetimeAccess = &lifetime
	f.AccessDays = Num(float64(intOrZero(s.AccessDays)))
	f.MaxStudents = Num(float64(intOrZero(s.MaxStudents)))
	f.Level = &level
	f.Language = &language
	f.EnrollmentStart = formatDate(s.EnrollmentStart)
	f.EnrollmentEnd = formatDate(s.EnrollmentEnd)
}

// ToSettings extracts the settings row of a form with the same defaults
// ToForm applies. Used when a course is created.
func (m Mapper) ToSettings(f CourseForm) courseModels.CourseSettings {
	passing := DefaultPassingGrade
	if f.PassingGrade != nil {
		passing = f.PassingGrade.Int()
	}
	certificate := f.CertificateEnabled != nil && *f.CertificateEnabled
	lifetime := f.LifetimeAccess == nil || *f.LifetimeAccess
	accessDays := 0
	if f.AccessDays != nil {
		accessDays = f.AccessDays.Int()
	}
	maxStudents := 0
	if f.MaxStudents != nil {
		maxStudents = f.MaxStudents.Int()
	}
	level := LevelAllLevels
	if f.Level != nil && *f.Level != "" {
		level = *f.Level
	}
	language := m.language()
	if f.Language != nil && *f.Language != "" {
		language = *f.Language
	}

	return courseModels.CourseSettings{
		PassingGrade:       &passing,
		CertificateEnabled: &certificate,
		LifetimeAccess:     &lifetime,
		AccessDays:         &accessDays,
		MaxStudents:        &maxStudents,
		Level:              &level,
		Language:           &language,
		EnrollmentStart:    parseDate(f.EnrollmentStart),
		EnrollmentEnd:      parseDate(f.EnrollmentEnd),
	}
}

// SplitTags turns "a, b,,c " into ["a","b","c"]. The result is never nil.
func SplitTags(s string) []string {
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// Package level helpers using the zero Mapper

func ToStorage(f CourseForm) courseModels.Course { return Mapper{}.ToStorage(f) }

func ToForm(c courseModels.Course) CourseForm { return Mapper{}.ToForm(c) }

func ToSettings(f CourseForm) courseModels.CourseSettings { return Mapper{}.ToSettings(f) }

func parseDate(s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	t, err := now.With(time.Now().UTC()).Parse(strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func numericToFloat(n *Numeric) *float64 {
	if n == nil {
		return nil
	}
	v := n.Float()
	return &v
}

func numericToInt(n *Numeric) *int {
	if n == nil {
		return nil
	}
	v := n.Int()
	return &v
}

func floatToNumeric(f *float64) *Numeric {
	if f == nil {
		return nil
	}
	return Num(*f)
}

func intToNumeric(i *int) *Numeric {
	if i == nil {
		return nil
	}
	return Num(float64(*i))
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
