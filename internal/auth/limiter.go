package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether one more request under key fits the window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// ─── In-process fixed window ─────────────────────────────────────────────────

type window struct {
	start time.Time
	count int
}

// MemoryLimiter is a fixed-window counter per key. Expired windows are
// reclaimed by Sweep.
type MemoryLimiter struct {
	mu      sync.Mutex
	max     int
	period  time.Duration
	now     func() time.Time
	windows map[string]*window
}

// NewMemoryLimiter allows max requests per key per period.
func NewMemoryLimiter(max int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{max: max, period: period, now: time.Now, windows: make(map[string]*window)}
}

// WithClock replaces the time source. Used by tests.
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.period {
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.max, nil
}

// Sweep drops every window that has ended and returns how many were
// removed.
func (l *MemoryLimiter) Sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for k, w := range l.windows {
		if now.Sub(w.start) >= l.period {
			delete(l.windows, k)
			n++
		}
	}
	return n
}

// ─── Redis fixed window ──────────────────────────────────────────────────────

// RedisLimiter shares the fixed-window counters across replicas.
type RedisLimiter struct {
	rdb    redis.UniversalClient
	max    int64
	period time.Duration
}

// NewRedisLimiter allows max requests per key per period.
func NewRedisLimiter(rdb redis.UniversalClient, max int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, max: int64(max), period: period}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := "ratelimit:" + key
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return true, fmt.Errorf("redis incr: %w", err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, l.period).Err(); err != nil {
			return true, fmt.Errorf("redis expire: %w", err)
		}
	}
	return n <= l.max, nil
}
