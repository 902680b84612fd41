package actions

import (
	"testing"

	"learnhub/mapper"
	courseModels "learnhub/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestCreateCourseWithSettings(t *testing.T) {
	f := setup(t)
	res := f.actions.CreateCourse(f.ctx, sessionOf(f.instructor), mapper.CourseForm{
		Title:            strPtr("Distributed Systems"),
		ShortDescription: strPtr("Consensus and friends"),
		Price:            mapper.Num(49),
		DiscountedPrice:  mapper.Num(29),
		CourseTags:       strPtr("raft, paxos"),
		PassingGrade:     mapper.Num(80),
		MaxStudents:      mapper.Num(30),
		Status:           strPtr(courseModels.StatusPublished),
	})
	require.True(t, res.Success, res.Error)
	id := res.Data.(CourseCreated).CourseID

	var course courseModels.Course
	require.NoError(t, f.db.Preload("Settings").First(&course, id).Error)
	assert.Equal(t, f.instructor.ID, course.InstructorID)
	assert.Equal(t, courseModels.StatusDraft, course.Status)
	assert.Equal(t, []string{"raft", "paxos"}, []string(course.CourseTags))
	assert.False(t, *course.IsFree)
	require.Len(t, course.Settings, 1)
	assert.Equal(t, 80, *course.Settings[0].PassingGrade)
	assert.Equal(t, 30, *course.Settings[0].MaxStudents)
	assert.True(t, *course.Settings[0].LifetimeAccess)
}

func TestCreateCourseDefaultsToFree(t *testing.T) {
	f := setup(t)
	res := f.actions.CreateCourse(f.ctx, sessionOf(f.instructor), mapper.CourseForm{Title: strPtr("Free")})
	require.True(t, res.Success, res.Error)

	var course courseModels.Course
	require.NoError(t, f.db.First(&course, res.Data.(CourseCreated).CourseID).Error)
	assert.True(t, *course.IsFree)
}

func TestCreateCourseRules(t *testing.T) {
	f := setup(t)

	res := f.actions.CreateCourse(f.ctx, sessionOf(f.student), mapper.CourseForm{Title: strPtr("Mine")})
	requireFailure(t, res, PermissionDenied)

	sess := sessionOf(f.instructor)
	requireFailure(t, f.actions.CreateCourse(f.ctx, sess, mapper.CourseForm{}), Validation)
	requireFailure(t, f.actions.CreateCourse(f.ctx, sess, mapper.CourseForm{
		Title: strPtr("x"), Price: mapper.Num(10), DiscountedPrice: mapper.Num(20),
	}), Validation)
	requireFailure(t, f.actions.CreateCourse(f.ctx, sess, mapper.CourseForm{
		Title: strPtr("x"), PassingGrade: mapper.Num(120),
	}), Validation)
}

func TestUpdateCourseIsPartial(t *testing.T) {
	f := setup(t)
	created := f.actions.CreateCourse(f.ctx, sessionOf(f.instructor), mapper.CourseForm{
		Title:            strPtr("Original"),
		ShortDescription: strPtr("keep me"),
		Price:            mapper.Num(100),
		Level:            strPtr("beginner"),
	})
	require.True(t, created.Success, created.Error)
	id := created.Data.(CourseCreated).CourseID

	res := f.actions.UpdateCourse(f.ctx, sessionOf(f.instructor), id, mapper.CourseForm{
		Title:        strPtr("Renamed"),
		PassingGrade: mapper.Num(55),
		Status:       strPtr(courseModels.StatusPublished),
	})
	require.True(t, res.Success, res.Error)

	form := res.Data.(mapper.CourseForm)
	assert.Equal(t, "Renamed", *form.Title)
	assert.Equal(t, "keep me", *form.ShortDescription)
	assert.Equal(t, 100.0, form.Price.Float())
	assert.Equal(t, 55, form.PassingGrade.Int())
	assert.Equal(t, "beginner", *form.Level)
	assert.Equal(t, courseModels.StatusDraft, *form.Status)
}

func TestUpdateCourseCreatesMissingSettings(t *testing.T) {
	f := setup(t)
	res := f.actions.UpdateCourse(f.ctx, sessionOf(f.instructor), f.course.ID, mapper.CourseForm{
		CertificateEnabled: boolPtr(true),
	})
	require.True(t, res.Success, res.Error)

	var settings courseModels.CourseSettings
	require.NoError(t, f.db.Where("course_id = ?", f.course.ID).First(&settings).Error)
	assert.True(t, *settings.CertificateEnabled)
	assert.Equal(t, mapper.DefaultPassingGrade, *settings.PassingGrade)
}

func TestUpdateCourseChecksDiscountAgainstStoredPrice(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.Model(&f.course).Update("regular_price", 20.0).Error)

	res := f.actions.UpdateCourse(f.ctx, sessionOf(f.instructor), f.course.ID, mapper.CourseForm{DiscountedPrice: mapper.Num(25)})
	requireFailure(t, res, Validation)
}

func TestUpdateCourseChecksPriceAgainstStoredDiscount(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.Model(&f.course).Updates(map[string]interface{}{"regular_price": 50.0, "discounted_price": 40.0}).Error)

	res := f.actions.UpdateCourse(f.ctx, sessionOf(f.instructor), f.course.ID, mapper.CourseForm{Price: mapper.Num(10)})
	requireFailure(t, res, Validation)

	var course courseModels.Course
	require.NoError(t, f.db.First(&course, f.course.ID).Error)
	assert.Equal(t, 50.0, *course.RegularPrice)

	res = f.actions.UpdateCourse(f.ctx, sessionOf(f.instructor), f.course.ID, mapper.CourseForm{Price: mapper.Num(45)})
	require.True(t, res.Success, res.Error)
}

func TestStrangerCannotEditCourse(t *testing.T) {
	f := setup(t)
	sess := sessionOf(f.stranger)

	requireFailure(t, f.actions.UpdateCourse(f.ctx, sess, f.course.ID, mapper.CourseForm{Title: strPtr("Mine now")}), PermissionDenied)
	requireFailure(t, f.actions.GetCourseForm(f.ctx, sess, f.course.ID), PermissionDenied)
	requireFailure(t, f.actions.PublishCourse(f.ctx, sess, f.course.ID), PermissionDenied)
	requireFailure(t, f.actions.ArchiveCourse(f.ctx, sess, f.course.ID), PermissionDenied)

	var course courseModels.Course
	require.NoError(t, f.db.First(&course, f.course.ID).Error)
	assert.Equal(t, "Go in Practice", course.Title)
	assert.Equal(t, courseModels.StatusDraft, course.Status)
}

func TestGetCourseFormAppliesDefaults(t *testing.T) {
	f := setup(t)
	res := f.actions.GetCourseForm(f.ctx, sessionOf(f.instructor), f.course.ID)
	require.True(t, res.Success, res.Error)

	form := res.Data.(mapper.CourseForm)
	assert.Equal(t, 70, form.PassingGrade.Int())
	assert.True(t, *form.LifetimeAccess)
	assert.Equal(t, 0, form.MaxStudents.Int())
	assert.Equal(t, "draft", *form.Status)
}

func TestPublishRequiresLessons(t *testing.T) {
	idx := &fakeIndexer{}
	f := setup(t, WithIndexer(idx))
	sess := sessionOf(f.instructor)

	requireFailure(t, f.actions.PublishCourse(f.ctx, sess, f.course.ID), Validation)

	f.lesson("Intro", 0)
	res := f.actions.PublishCourse(f.ctx, sess, f.course.ID)
	require.True(t, res.Success, res.Error)
	course := res.Data.(courseModels.Course)
	assert.Equal(t, courseModels.StatusPublished, course.Status)
	require.NotNil(t, course.PublishedAt)
	assert.True(t, course.PublishedAt.Equal(fixedNow))
	assert.Equal(t, "Go in Practice", idx.indexed[f.course.ID])

	require.True(t, f.actions.DeleteCourse(f.ctx, sess, f.course.ID).Success)
	assert.Equal(t, []uint{f.course.ID}, idx.removed)

	var archived courseModels.Course
	require.NoError(t, f.db.First(&archived, f.course.ID).Error)
	assert.Equal(t, courseModels.StatusArchived, archived.Status)
	assert.False(t, archived.IsDeleted)
}

func TestListInstructorCourses(t *testing.T) {
	f := setup(t)
	other := courseModels.Course{InstructorID: f.stranger.ID, Title: "Not mine"}
	require.NoError(t, f.db.Create(&other).Error)

	res := f.actions.ListInstructorCourses(f.ctx, sessionOf(f.instructor))
	require.True(t, res.Success, res.Error)
	courses := res.Data.([]courseModels.Course)
	require.Len(t, courses, 1)
	assert.Equal(t, f.course.ID, courses[0].ID)
}

func TestPublishedCatalog(t *testing.T) {
	f := setup(t)
	f.publish()
	preview := courseModels.Lesson{CourseID: f.course.ID, Title: "Preview", IsPreview: true, Content: strPtr("free"), OrderIndex: 0}
	paid := courseModels.Lesson{CourseID: f.course.ID, Title: "Paid", Content: strPtr("secret"), VideoURL: strPtr("https://v/2"), OrderIndex: 1}
	require.NoError(t, f.db.Create(&preview).Error)
	require.NoError(t, f.db.Create(&paid).Error)
	draft := courseModels.Course{InstructorID: f.instructor.ID, Title: "Draft"}
	require.NoError(t, f.db.Create(&draft).Error)

	page := f.actions.ListPublishedCourses(f.ctx, 0, 0)
	require.True(t, page.Success, page.Error)
	assert.Equal(t, int64(1), page.Data.(CoursePage).Total)
	assert.Equal(t, 1, page.Data.(CoursePage).Page)
	assert.Equal(t, 10, page.Data.(CoursePage).Limit)

	detail := f.actions.GetPublishedCourse(f.ctx, f.course.ID)
	require.True(t, detail.Success, detail.Error)
	lessons := detail.Data.(CourseDetail).Lessons
	require.Len(t, lessons, 2)
	assert.Equal(t, "free", *lessons[0].Content)
	assert.Nil(t, lessons[1].Content)
	assert.Nil(t, lessons[1].VideoURL)

	requireFailure(t, f.actions.GetPublishedCourse(f.ctx, draft.ID), NotFound)
}

func TestSearchCoursesFallsBackToTitleMatch(t *testing.T) {
	f := setup(t)
	f.publish()

	res := f.actions.SearchCourses(f.ctx, "practice", 5)
	require.True(t, res.Success, res.Error)
	courses := res.Data.([]courseModels.Course)
	require.Len(t, courses, 1)

	requireFailure(t, f.actions.SearchCourses(f.ctx, "  ", 5), Validation)
}

func TestSearchCoursesUsesIndexOrder(t *testing.T) {
	idx := &fakeIndexer{}
	f := setup(t, WithIndexer(idx))
	f.publish()
	second := courseModels.Course{InstructorID: f.instructor.ID, Title: "Rust", Status: courseModels.StatusPublished}
	require.NoError(t, f.db.Create(&second).Error)
	idx.hits = []uint{second.ID, 777, f.course.ID}

	res := f.actions.SearchCourses(f.ctx, "systems", 5)
	require.True(t, res.Success, res.Error)
	courses := res.Data.([]courseModels.Course)
	require.Len(t, courses, 2)
	assert.Equal(t, second.ID, courses[0].ID)
	assert.Equal(t, f.course.ID, courses[1].ID)
}
