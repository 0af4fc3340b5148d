package lock

import (
	"context"
	"sync"
	"time"
)

// MemLocker is an in-memory Locker used in tests in place of the Redis
// SET NX EX implementation.
type MemLocker struct {
	mu      sync.Mutex
	heldTil map[string]time.Time
	now     func() time.Time
}

func NewMemLocker(now func() time.Time) *MemLocker {
	if now == nil {
		now = time.Now
	}
	return &MemLocker{heldTil: make(map[string]time.Time), now: now}
}

func (l *MemLocker) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if until, ok := l.heldTil[key]; ok && now.Before(until) {
		return false, nil
	}
	l.heldTil[key] = now.Add(ttl)
	return true, nil
}

func (l *MemLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.heldTil, key)
	return nil
}
