package repository

import (
	"context"

	"github.com/indexpulse/core/internal/domain"
)

// UseCase depends on interface, not concrete implementation.
type CredentialRepository interface {
	Create(ctx context.Context, c *domain.Credential) error
	GetByID(ctx context.Context, id string) (*domain.Credential, error)
	List(ctx context.Context) ([]*domain.Credential, error)

	// NextAvailable returns the available credential with the lowest
	// used_today (least-used-first), locked FOR UPDATE SKIP LOCKED so
	// concurrent submitters don't pick the same one before either
	// commits its IncrementUsage.
	NextAvailable(ctx context.Context) (*domain.Credential, error)

	IncrementUsage(ctx context.Context, id string) error
	SetRateLimited(ctx context.Context, id string, rateLimited bool) error
	Disable(ctx context.Context, id string) error
	Enable(ctx context.Context, id string) error

	// ResetAllQuotas zeroes used_today and clears rate_limited on every
	// credential; called once by the midnight reset job.
	ResetAllQuotas(ctx context.Context) error
}
