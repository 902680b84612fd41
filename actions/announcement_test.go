package actions

import (
	"testing"
	"time"

	courseModels "learnhub/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSortAnnouncements(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	at := func(title, priority string, created time.Time) courseModels.Announcement {
		return courseModels.Announcement{Model: gorm.Model{CreatedAt: created}, Title: title, Priority: priority}
	}
	list := []courseModels.Announcement{
		at("old-urgent", courseModels.PriorityUrgent, day1),
		at("new-normal-late", courseModels.PriorityNormal, day2.Add(5*time.Hour)),
		at("new-important", courseModels.PriorityImportant, day2),
		at("new-urgent", courseModels.PriorityUrgent, day2.Add(time.Hour)),
	}
	SortAnnouncements(list)

	var titles []string
	for _, a := range list {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"new-urgent", "new-important", "new-normal-late", "old-urgent"}, titles)
}

func TestCreateAnnouncement(t *testing.T) {
	f := setup(t)
	f.enroll(f.student)
	sess := sessionOf(f.instructor)

	res := f.actions.CreateAnnouncement(f.ctx, sess, AnnouncementInput{CourseID: &f.course.ID, Title: "Exam moved", Content: "Friday", Priority: "urgent"})
	require.True(t, res.Success, res.Error)

	sent := f.publisher.ofType("announcement.created")
	require.Len(t, sent, 1)
	assert.Equal(t, "urgent", sent[0].Priority)
	assert.Equal(t, "Go in Practice", sent[0].CourseName)
	assert.Equal(t, []string{f.student.Email}, sent[0].Recipients)

	global := f.actions.CreateAnnouncement(f.ctx, sess, AnnouncementInput{Title: "Welcome"})
	require.True(t, global.Success, global.Error)
	assert.Equal(t, courseModels.PriorityNormal, global.Data.(courseModels.Announcement).Priority)
	assert.Equal(t, []string{f.student.Email}, f.publisher.ofType("announcement.created")[1].Recipients)

	requireFailure(t, f.actions.CreateAnnouncement(f.ctx, sess, AnnouncementInput{Title: "x", Priority: "meh"}), Validation)
	requireFailure(t, f.actions.CreateAnnouncement(f.ctx, sessionOf(f.stranger), AnnouncementInput{CourseID: &f.course.ID, Title: "x"}), PermissionDenied)
	requireFailure(t, f.actions.CreateAnnouncement(f.ctx, sessionOf(f.student), AnnouncementInput{Title: "x"}), PermissionDenied)
}

func TestUpdateAndDeleteAnnouncement(t *testing.T) {
	f := setup(t)
	sess := sessionOf(f.instructor)
	id := f.actions.CreateAnnouncement(f.ctx, sess, AnnouncementInput{Title: "Draft"}).Data.(courseModels.Announcement).ID

	res := f.actions.UpdateAnnouncement(f.ctx, sess, id, AnnouncementUpdate{Priority: strPtr("important")})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "important", res.Data.(courseModels.Announcement).Priority)
	assert.Equal(t, "Draft", res.Data.(courseModels.Announcement).Title)

	requireFailure(t, f.actions.UpdateAnnouncement(f.ctx, sessionOf(f.stranger), id, AnnouncementUpdate{Title: strPtr("x")}), PermissionDenied)
	requireFailure(t, f.actions.DeleteAnnouncement(f.ctx, sessionOf(f.stranger), id), PermissionDenied)

	require.True(t, f.actions.DeleteAnnouncement(f.ctx, sess, id).Success)
	list := f.actions.ListInstructorAnnouncements(f.ctx, sess)
	assert.Empty(t, list.Data.([]courseModels.Announcement))
}

func TestListStudentAnnouncements(t *testing.T) {
	f := setup(t)
	f.enroll(f.student)
	otherCourse := courseModels.Course{InstructorID: f.stranger.ID, Title: "Elsewhere"}
	require.NoError(t, f.db.Create(&otherCourse).Error)

	mine := []courseModels.Announcement{
		{InstructorID: f.instructor.ID, CourseID: &f.course.ID, Title: "course", Priority: "normal"},
		{InstructorID: f.instructor.ID, Title: "global", Priority: "urgent"},
		{InstructorID: f.stranger.ID, CourseID: &otherCourse.ID, Title: "not enrolled", Priority: "normal"},
		{InstructorID: f.stranger.ID, Title: "foreign global", Priority: "normal"},
	}
	require.NoError(t, f.db.Create(&mine).Error)

	res := f.actions.ListStudentAnnouncements(f.ctx, sessionOf(f.student))
	require.True(t, res.Success, res.Error)
	list := res.Data.([]courseModels.Announcement)
	require.Len(t, list, 2)
	assert.Equal(t, "global", list[0].Title)
	assert.Equal(t, "course", list[1].Title)

	empty := f.actions.ListStudentAnnouncements(f.ctx, sessionOf(f.stranger))
	require.True(t, empty.Success)
	assert.Empty(t, empty.Data.([]courseModels.Announcement))
}
