package methodadapter

import (
	"context"
	"time"

	"github.com/indexpulse/core/internal/domain"
	"github.com/sony/gobreaker"
)

// BreakerAdapter wraps an Adapter with its own circuit breaker (one per
// wrapped adapter, shared by every endpoint that adapter calls) so a
// string of transport failures trips open instead of piling up blocked
// goroutines against it.
type BreakerAdapter struct {
	inner   Adapter
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerAdapter(name string, inner Adapter) *BreakerAdapter {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &BreakerAdapter{inner: inner, breaker: gobreaker.NewCircuitBreaker(settings)}
}

func (b *BreakerAdapter) Submit(ctx context.Context, url string, job domain.QueueJob) (Outcome, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		outcome, err := b.inner.Submit(ctx, url, job)
		if err != nil {
			return Outcome{}, err
		}
		return outcome, nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return result.(Outcome), nil
}
