// Package ratelimit throttles the public token endpoints. Limits are fixed
// windows keyed by client IP; Redis backs production, an in-memory limiter
// backs tests and dev mode.
package ratelimit

import (
	"context"
	"time"
)

// Result describes one admission decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter admits or refuses a request under the given key.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Config fixes the window shape for a limiter instance.
type Config struct {
	// Limit is the number of requests admitted per window.
	Limit int
	// Window is the fixed window length.
	Window time.Duration
}

// DefaultPublic is the window applied to unauthenticated token endpoints.
var DefaultPublic = Config{Limit: 60, Window: time.Minute}

// DefaultUpload is the tighter window applied to document uploads.
var DefaultUpload = Config{Limit: 10, Window: time.Minute}
