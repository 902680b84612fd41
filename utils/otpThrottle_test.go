package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryThrottle(t *testing.T) {
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	th := NewMemoryThrottle(OTPCooldown)
	th.now = func() time.Time { return at }
	ctx := context.Background()

	ok, err := th.Allow(ctx, "9876543210")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = th.Allow(ctx, "9876543210")
	assert.False(t, ok)

	ok, _ = th.Allow(ctx, "9123456780")
	assert.True(t, ok, "numbers are throttled separately")

	at = at.Add(OTPCooldown)
	ok, _ = th.Allow(ctx, "9876543210")
	assert.True(t, ok)
}

func TestRedisThrottleUnreachable(t *testing.T) {
	rdb := NewRedisClient("127.0.0.1:1", "")
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedisThrottle(rdb, OTPCooldown).Allow(ctx, "9876543210")
	assert.Error(t, err)
}

func TestThrottleKey(t *testing.T) {
	assert.Equal(t, "otp:throttle:9876543210", throttleKey("9876543210"))
}
