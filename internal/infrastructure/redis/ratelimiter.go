package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateKeyPrefix = "mq:rate:"

// Limiter is a fixed-window call limiter backed by Redis INCR+EXPIRE:
// the first caller in a window sets the expiry, every caller after it
// just increments, so the window resets itself without a background
// sweeper.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

func (l *Limiter) Allow(ctx context.Context, key string, maxCalls int, window time.Duration) (bool, error) {
	fullKey := rateKeyPrefix + key

	current, err := l.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return false, fmt.Errorf("incr rate key: %w", err)
	}
	if current == 1 {
		if err := l.client.Expire(ctx, fullKey, window).Err(); err != nil {
			return false, fmt.Errorf("expire rate key: %w", err)
		}
	}

	return current <= int64(maxCalls), nil
}
