package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryLimiter_WindowAndReset(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _ := m.Allow(ctx, "ip", 3, time.Minute)
		require.True(t, ok, "hit %d", i+1)
	}
	ok, retry := m.Allow(ctx, "ip", 3, time.Minute)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)

	ok, _ = m.Allow(ctx, "other-ip", 3, time.Minute)
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = m.Allow(ctx, "ip", 3, time.Minute)
	assert.True(t, ok, "window reset")
}

func TestMemoryLimiter_SweepsExpiredKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }
	m.sweepAt = 4
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c", "d"} {
		ok, _ := m.Allow(ctx, key, 1, time.Minute)
		require.True(t, ok)
	}
	require.Len(t, m.store, 4)

	now = now.Add(time.Minute)
	ok, _ := m.Allow(ctx, "e", 1, time.Minute)
	assert.True(t, ok)
	assert.Len(t, m.store, 1, "expired keys are evicted")
	assert.Contains(t, m.store, "e")
}

func TestMemoryLimiter_SweepKeepsLiveKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }
	m.sweepAt = 2
	ctx := context.Background()

	m.Allow(ctx, "old", 1, time.Second)
	m.Allow(ctx, "live", 1, time.Hour)
	now = now.Add(2 * time.Second)

	m.Allow(ctx, "new", 1, time.Hour)
	assert.NotContains(t, m.store, "old")
	assert.Contains(t, m.store, "live")

	ok, _ := m.Allow(ctx, "live", 1, time.Hour)
	assert.False(t, ok, "live counter survived the sweep")
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	ctx := context.Background()
	prefix := "ratelimit-test:" + t.Name() + ":"
	t.Cleanup(func() { rdb.Del(ctx, prefix+"ip") })

	l := NewRedis(rdb, prefix, zap.NewNop())
	for i := 0; i < 2; i++ {
		ok, _ := l.Allow(ctx, "ip", 2, time.Minute)
		require.True(t, ok)
	}
	ok, retry := l.Allow(ctx, "ip", 2, time.Minute)
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })

	ok, _ := NewRedis(rdb, "x:", zap.NewNop()).Allow(context.Background(), "ip", 1, time.Minute)
	assert.True(t, ok)
}
