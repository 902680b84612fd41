package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const OTPCooldown = time.Minute

// OTPThrottle limits how often a code may be sent to one mobile number
type OTPThrottle interface {
	Allow(ctx context.Context, mobile string) (bool, error)
}

func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

// RedisThrottle holds a per-mobile key for the cooldown, so the limit is
// shared by every instance of the service.
type RedisThrottle struct {
	rdb      *redis.Client
	cooldown time.Duration
}

func NewRedisThrottle(rdb *redis.Client, cooldown time.Duration) *RedisThrottle {
	return &RedisThrottle{rdb: rdb, cooldown: cooldown}
}

func (t *RedisThrottle) Allow(ctx context.Context, mobile string) (bool, error) {
	return t.rdb.SetNX(ctx, throttleKey(mobile), 1, t.cooldown).Result()
}

func throttleKey(mobile string) string {
	return "otp:throttle:" + mobile
}

// MemoryThrottle is the single-process fallback used without Redis
type MemoryThrottle struct {
	mu       sync.Mutex
	until    map[string]time.Time
	cooldown time.Duration
	now      func() time.Time
}

func NewMemoryThrottle(cooldown time.Duration) *MemoryThrottle {
	return &MemoryThrottle{until: map[string]time.Time{}, cooldown: cooldown, now: time.Now}
}

func (t *MemoryThrottle) Allow(_ context.Context, mobile string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	at := t.now()
	if until, ok := t.until[mobile]; ok && at.Before(until) {
		return false, nil
	}
	t.until[mobile] = at.Add(t.cooldown)
	return true, nil
}
