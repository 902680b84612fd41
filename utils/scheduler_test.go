package utils

import (
	"testing"
	"time"

	"learnhub/database"
	"learnhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeExpiredOTPs(t *testing.T) {
	db, err := database.OpenSqlite(":memory:")
	require.NoError(t, err)

	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	codes := []models.OTP{
		{Mobile: "1", Code: "111111", ExpiresAt: at.AddDate(0, 0, -1)},            // expired yesterday
		{Mobile: "2", Code: "222222", ExpiresAt: at.Add(-time.Hour)},              // expired today, kept
		{Mobile: "3", Code: "333333", ExpiresAt: at.Add(time.Hour), IsUsed: true}, // used
		{Mobile: "4", Code: "444444", ExpiresAt: at.Add(5 * time.Minute)},         // live
	}
	require.NoError(t, db.Create(&codes).Error)

	n, err := PurgeExpiredOTPs(db, at)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var left []models.OTP
	require.NoError(t, db.Unscoped().Order("mobile").Find(&left).Error)
	require.Len(t, left, 2)
	assert.Equal(t, "2", left[0].Mobile)
	assert.Equal(t, "4", left[1].Mobile)
}
