package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a fixed window counter held in a map, for tests and
// single-process dev wiring.
type MemoryLimiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	counts  map[string]int
	windows map[string]time.Time
}

// NewMemoryLimiter constructs an in-process limiter.
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:     cfg,
		now:     time.Now,
		counts:  make(map[string]int),
		windows: make(map[string]time.Time),
	}
}

// WithClock overrides the time source for tests.
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	window := l.now().Truncate(l.cfg.Window)
	if l.windows[key] != window {
		l.windows[key] = window
		l.counts[key] = 0
	}
	l.counts[key]++

	n := l.counts[key]
	remaining := l.cfg.Limit - n
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   n <= l.cfg.Limit,
		Limit:     l.cfg.Limit,
		Remaining: remaining,
		ResetAt:   window.Add(l.cfg.Window),
	}, nil
}
