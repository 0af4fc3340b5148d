// Package ratelimit provides the fixed-window call limiter used to keep
// per-method outbound call volume under each destination's published
// rate limit.
package ratelimit

import (
	"context"
	"time"
)

// Limiter reports whether another call is allowed within the current
// fixed window, incrementing the window's counter as a side effect.
// UseCase depends on interface, not concrete implementation.
type Limiter interface {
	Allow(ctx context.Context, key string, maxCalls int, window time.Duration) (bool, error)
}
