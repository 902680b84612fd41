package authz

import (
	"context"
	"testing"

	"learnhub/database"
	"learnhub/models"
	courseModels "learnhub/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	owner    models.User
	stranger models.User
	course   courseModels.Course
	lesson   courseModels.Lesson
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, err := database.OpenSqlite(":memory:")
	require.NoError(t, err)

	f := fixture{db: db}
	f.owner = models.User{Email: "owner@example.com", Password: "x", Role: models.RoleInstructor}
	f.stranger = models.User{Email: "stranger@example.com", Password: "x", Role: models.RoleInstructor}
	require.NoError(t, db.Create(&f.owner).Error)
	require.NoError(t, db.Create(&f.stranger).Error)

	f.course = courseModels.Course{InstructorID: f.owner.ID, Title: "Owned"}
	require.NoError(t, db.Create(&f.course).Error)
	f.lesson = courseModels.Lesson{CourseID: f.course.ID, Title: "Intro"}
	require.NoError(t, db.Create(&f.lesson).Error)
	return f
}

func TestResolvePrincipalID(t *testing.T) {
	f := setup(t)
	a := New(f.db)
	ctx := context.Background()

	id, err := a.ResolvePrincipalID(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, id)

	_, err = a.ResolvePrincipalID(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrPrincipalNotFound)

	_, err = a.ResolvePrincipalID(ctx, "")
	assert.ErrorIs(t, err, ErrPrincipalNotFound)
}

func TestResolvePrincipalSkipsDeletedUsers(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.Model(&f.stranger).Update("is_deleted", true).Error)

	_, err := New(f.db).ResolvePrincipalID(context.Background(), "stranger@example.com")
	assert.ErrorIs(t, err, ErrPrincipalNotFound)
}

func TestAuthorizeCourseOwner(t *testing.T) {
	f := setup(t)
	a := New(f.db)
	ctx := context.Background()

	ok, err := a.AuthorizeCourseOwner(ctx, f.owner.ID, f.course.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.AuthorizeCourseOwner(ctx, f.stranger.ID, f.course.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.AuthorizeCourseOwner(ctx, f.owner.ID, 9999)
	require.NoError(t, err)
	assert.False(t, ok, "missing course denies without error")
}

func TestAuthorizeLessonOwnerIsTransitive(t *testing.T) {
	f := setup(t)
	a := New(f.db)
	ctx := context.Background()

	ok, err := a.AuthorizeLessonOwner(ctx, f.owner.ID, f.lesson.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.AuthorizeLessonOwner(ctx, f.stranger.ID, f.lesson.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.AuthorizeLessonOwner(ctx, f.owner.ID, 4242)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLessonOwnedByScopesWrites(t *testing.T) {
	f := setup(t)

	res := f.db.Model(&courseModels.Lesson{}).Scopes(LessonOwnedBy(f.stranger.ID)).
		Where("id = ?", f.lesson.ID).Update("title", "hijacked")
	require.NoError(t, res.Error)
	assert.Zero(t, res.RowsAffected)

	res = f.db.Model(&courseModels.Lesson{}).Scopes(LessonOwnedBy(f.owner.ID)).
		Where("id = ?", f.lesson.ID).Update("title", "renamed")
	require.NoError(t, res.Error)
	assert.EqualValues(t, 1, res.RowsAffected)
}
