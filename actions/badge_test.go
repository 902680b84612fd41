package actions

import (
	"testing"

	courseModels "learnhub/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeLifecycle(t *testing.T) {
	f := setup(t)
	sess := sessionOf(f.instructor)

	created := f.actions.CreateBadge(f.ctx, sess, BadgeInput{CourseID: &f.course.ID, Name: "Finisher", Criteria: "complete all lessons"})
	require.True(t, created.Success, created.Error)
	badge := created.Data.(courseModels.Badge)

	upd := f.actions.UpdateBadge(f.ctx, sess, badge.ID, BadgeUpdate{IconURL: strPtr("https://icons/x.png")})
	require.True(t, upd.Success, upd.Error)
	assert.Equal(t, "https://icons/x.png", *upd.Data.(courseModels.Badge).IconURL)
	assert.Equal(t, "Finisher", upd.Data.(courseModels.Badge).Name)

	requireFailure(t, f.actions.UpdateBadge(f.ctx, sessionOf(f.stranger), badge.ID, BadgeUpdate{Name: strPtr("x")}), PermissionDenied)
	requireFailure(t, f.actions.CreateBadge(f.ctx, sessionOf(f.stranger), BadgeInput{CourseID: &f.course.ID, Name: "x"}), PermissionDenied)
	requireFailure(t, f.actions.CreateBadge(f.ctx, sess, BadgeInput{Name: " "}), Validation)

	list := f.actions.ListInstructorBadges(f.ctx, sess)
	require.Len(t, list.Data.([]courseModels.Badge), 1)

	require.True(t, f.actions.DeleteBadge(f.ctx, sess, badge.ID).Success)
	assert.Empty(t, f.actions.ListInstructorBadges(f.ctx, sess).Data.([]courseModels.Badge))
}

func TestAwardBadge(t *testing.T) {
	f := setup(t)
	sess := sessionOf(f.instructor)
	badge := f.actions.CreateBadge(f.ctx, sess, BadgeInput{Name: "Early bird"}).Data.(courseModels.Badge)

	requireFailure(t, f.actions.AwardBadge(f.ctx, sess, badge.ID, f.student.ID), Validation)

	f.enroll(f.student)
	first := f.actions.AwardBadge(f.ctx, sess, badge.ID, f.student.ID)
	require.True(t, first.Success, first.Error)
	assert.True(t, first.Data.(BadgeAward).Created)

	second := f.actions.AwardBadge(f.ctx, sess, badge.ID, f.student.ID)
	require.True(t, second.Success, second.Error)
	assert.False(t, second.Data.(BadgeAward).Created)
	assert.Equal(t, first.Data.(BadgeAward).Award.ID, second.Data.(BadgeAward).Award.ID)

	requireFailure(t, f.actions.AwardBadge(f.ctx, sessionOf(f.stranger), badge.ID, f.student.ID), PermissionDenied)

	mine := f.actions.ListMyBadges(f.ctx, sessionOf(f.student))
	require.True(t, mine.Success, mine.Error)
	awards := mine.Data.([]courseModels.UserBadge)
	require.Len(t, awards, 1)
	assert.Equal(t, "Early bird", awards[0].Badge.Name)
}
