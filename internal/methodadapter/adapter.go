// Package methodadapter implements one outbound adapter per submission
// method, each satisfying the same Adapter interface so the worker loop
// never switches on method-specific logic beyond dispatch.
package methodadapter

import (
	"context"

	"github.com/indexpulse/core/internal/domain"
)

// Outcome classifies what happened so the worker can decide whether to
// retry, requeue with a rate-limit delay, or disable a credential.
type Outcome struct {
	Success    bool
	StatusCode int
	Body       string
}

// Adapter submits one URL to one destination. UseCase depends on
// interface, not concrete implementation.
type Adapter interface {
	Submit(ctx context.Context, url string, job domain.QueueJob) (Outcome, error)
}

// Registry resolves the adapter registered for a method. It stores
// adapters as given; callers that want a circuit breaker register a
// BreakerAdapter.
type Registry struct {
	adapters map[domain.Method]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[domain.Method]Adapter)}
}

func (r *Registry) Register(method domain.Method, adapter Adapter) {
	r.adapters[method] = adapter
}

func (r *Registry) For(method domain.Method) (Adapter, bool) {
	a, ok := r.adapters[method]
	return a, ok
}
