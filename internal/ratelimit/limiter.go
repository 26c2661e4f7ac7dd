// Package ratelimit implements fixed-window request limits keyed by caller.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Limiter interface {
	// Allow counts one hit for key and reports whether it is within limit for
	// the current window, plus the time left until the window resets.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration)
}

// sweepAt is the number of tracked keys that triggers a sweep of expired ones.
const sweepAt = 1024

// MemoryLimiter keeps counters in process memory. Expired counters are
// dropped whenever the map reaches sweepAt keys.
type MemoryLimiter struct {
	mu      sync.Mutex
	store   map[string]*bucket
	now     func() time.Time
	sweepAt int
}

type bucket struct {
	count   int
	resetAt time.Time
	window  time.Duration
}

func NewMemory() *MemoryLimiter {
	return &MemoryLimiter{store: make(map[string]*bucket), now: time.Now, sweepAt: sweepAt}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.store[key]
	if !ok && len(m.store) >= m.sweepAt {
		m.sweep(now)
	}
	if !ok || !now.Before(b.resetAt) || b.window != window {
		b = &bucket{resetAt: now.Add(window), window: window}
		m.store[key] = b
	}

	if b.count >= limit {
		return false, b.resetAt.Sub(now)
	}
	b.count++
	return true, b.resetAt.Sub(now)
}

// sweep deletes counters whose window has ended. The next sweep waits until
// the map doubles, so a full map of live keys is not rescanned on every call.
func (m *MemoryLimiter) sweep(now time.Time) {
	for k, b := range m.store {
		if !now.Before(b.resetAt) {
			delete(m.store, k)
		}
	}
	if len(m.store) >= m.sweepAt/2 {
		m.sweepAt = 2 * len(m.store)
	} else if m.sweepAt > sweepAt && len(m.store) < m.sweepAt/4 {
		m.sweepAt /= 2
	}
}

// RedisLimiter shares counters between replicas through Redis.
// Redis failures let the request through.
type RedisLimiter struct {
	rdb    *redis.Client
	prefix string
	log    *zap.Logger
}

func NewRedis(rdb *redis.Client, prefix string, log *zap.Logger) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: prefix, log: log}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration) {
	k := l.prefix + key
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		l.log.Warn("rate limit incr failed", zap.String("key", k), zap.Error(err))
		return true, 0
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, window).Err(); err != nil {
			l.log.Warn("rate limit expire failed", zap.String("key", k), zap.Error(err))
		}
	}

	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		// A key without expiry would block forever; repair it.
		if err := l.rdb.Expire(ctx, k, window).Err(); err != nil {
			l.log.Warn("rate limit expire repair failed", zap.String("key", k), zap.Error(err))
		}
		ttl = window
	}
	return n <= int64(limit), ttl
}
