// Package ratelimit throttles requests per key, in memory or in Redis.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned by callers that turn a denial into an error.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	// Allow reports whether one request is allowed for key.
	Allow(ctx context.Context, key string) (bool, error)

	// AllowN reports whether n requests are allowed for key.
	AllowN(ctx context.Context, key string, n int) (bool, error)

	// Reset forgets the history of key.
	Reset(ctx context.Context, key string) error

	// Close releases any resources held by the limiter.
	Close() error
}

// RetryAfterer is implemented by limiters that can tell how long a denied
// key has to wait.
type RetryAfterer interface {
	RetryAfter(key string) time.Duration
}

// Quota describes a limiter's budget.
type Quota struct {
	// Requests allowed per Window.
	Requests int
	Window   time.Duration
}

// MemoryLimiter is a per-key token bucket. A bucket holds Requests tokens
// and refills at Requests per Window. Buckets idle for a full window are
// evicted.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	quota   Quota
	every   rate.Limit
	done    chan struct{}
	once    sync.Once
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter creates a MemoryLimiter allowing requests per window
// for each key.
func NewMemoryLimiter(requests int, window time.Duration) *MemoryLimiter {
	return newMemoryLimiter(requests, window, time.Now)
}

func newMemoryLimiter(requests int, window time.Duration, now func() time.Time) *MemoryLimiter {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	m := &MemoryLimiter{
		buckets: make(map[string]*bucket),
		quota:   Quota{Requests: requests, Window: window},
		every:   rate.Every(window / time.Duration(requests)),
		done:    make(chan struct{}),
		now:     now,
	}
	go m.evictLoop()
	return m
}

// Quota returns the configured budget.
func (m *MemoryLimiter) Quota() Quota {
	return m.quota
}

// Allow implements Limiter.
func (m *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return m.AllowN(ctx, key, 1)
}

// AllowN implements Limiter.
func (m *MemoryLimiter) AllowN(_ context.Context, key string, n int) (bool, error) {
	now := m.now()
	return m.bucket(key, now).AllowN(now, n), nil
}

// RetryAfter implements RetryAfterer.
func (m *MemoryLimiter) RetryAfter(key string) time.Duration {
	now := m.now()
	r := m.bucket(key, now).ReserveN(now, 1)
	if !r.OK() {
		return m.quota.Window
	}
	d := r.DelayFrom(now)
	r.CancelAt(now)
	return d
}

// Remaining returns the number of whole requests key may still make now.
func (m *MemoryLimiter) Remaining(key string) int {
	now := m.now()
	tokens := int(m.bucket(key, now).TokensAt(now))
	if tokens < 0 {
		return 0
	}
	return tokens
}

// Reset implements Limiter.
func (m *MemoryLimiter) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.buckets, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of tracked keys.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

// Close stops the eviction goroutine. It is safe to call more than once.
func (m *MemoryLimiter) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}

func (m *MemoryLimiter) bucket(key string, now time.Time) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(m.every, m.quota.Requests)}
		m.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (m *MemoryLimiter) evictLoop() {
	ticker := time.NewTicker(m.quota.Window)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.evictIdle(m.now())
		}
	}
}

// evictIdle drops buckets unused for a window; such buckets are full again.
func (m *MemoryLimiter) evictIdle(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, b := range m.buckets {
		if now.Sub(b.lastSeen) >= m.quota.Window {
			delete(m.buckets, key)
		}
	}
}

var (
	_ Limiter      = (*MemoryLimiter)(nil)
	_ RetryAfterer = (*MemoryLimiter)(nil)
)
