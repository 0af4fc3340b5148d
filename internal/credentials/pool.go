// Package credentials manages the pool of search-console/custom-search
// credentials shared across projects, rotating usage so no single
// credential exhausts its daily quota while others sit idle.
package credentials

import (
	"context"
	"fmt"
	"net/http"

	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/metrics"
	"github.com/indexpulse/core/internal/repository"
)

// Pool hands out the least-used available credential and tracks usage
// against its daily quota, the same rotation policy as the original
// service account manager's get_next_available.
type Pool struct {
	repo repository.CredentialRepository
}

func NewPool(repo repository.CredentialRepository) *Pool {
	return &Pool{repo: repo}
}

// Acquire returns the least-used available credential and immediately
// records one unit of usage against it, so a caller never needs a
// separate commit step between selection and spend.
func (p *Pool) Acquire(ctx context.Context) (*domain.Credential, error) {
	cred, err := p.repo.NextAvailable(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.repo.IncrementUsage(ctx, cred.ID); err != nil {
		return nil, fmt.Errorf("increment credential usage: %w", err)
	}
	cred.UsedToday++
	metrics.CredentialQuotaRemaining.WithLabelValues(cred.ID).Set(float64(cred.RemainingQuota()))
	return cred, nil
}

// ReportAPIError inspects the status code returned by the destination
// API and rate-limits the credential on 401/403/429, mirroring
// disable_account's "temporarily disable after 429/403 errors" intent
// but distinguishing it from an admin's explicit Disable so the
// midnight reset can clear it automatically.
func (p *Pool) ReportAPIError(ctx context.Context, credentialID string, statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return p.repo.SetRateLimited(ctx, credentialID, true)
	default:
		return nil
	}
}

// AcquireSpecific records one unit of usage against a caller-chosen
// credential (a project's pinned override) rather than picking the
// least-used one, failing if it is no longer available.
func (p *Pool) AcquireSpecific(ctx context.Context, credentialID string) (*domain.Credential, error) {
	cred, err := p.repo.GetByID(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if !cred.Available() {
		return nil, domain.ErrNoCredentialAvailable
	}
	if err := p.repo.IncrementUsage(ctx, cred.ID); err != nil {
		return nil, fmt.Errorf("increment credential usage: %w", err)
	}
	cred.UsedToday++
	metrics.CredentialQuotaRemaining.WithLabelValues(cred.ID).Set(float64(cred.RemainingQuota()))
	return cred, nil
}

// AcquireForProject picks a credential for project: its pinned override
// if one is configured, otherwise the least-used credential in the
// shared pool. Used by both the probe chain and the Google Indexing API
// method adapter so project-level pinning means the same thing in both
// paths.
func (p *Pool) AcquireForProject(ctx context.Context, project *domain.Project) (*domain.Credential, error) {
	if project.CredentialsRef != nil {
		return p.AcquireSpecific(ctx, *project.CredentialsRef)
	}
	return p.Acquire(ctx)
}

func (p *Pool) Disable(ctx context.Context, credentialID string) error {
	return p.repo.Disable(ctx, credentialID)
}

func (p *Pool) Enable(ctx context.Context, credentialID string) error {
	return p.repo.Enable(ctx, credentialID)
}

func (p *Pool) List(ctx context.Context) ([]*domain.Credential, error) {
	return p.repo.List(ctx)
}

// ResetDailyQuotas clears used_today and rate_limited on every
// credential. It does not touch an admin's explicit Disable — that flag
// is only ever cleared by Enable.
func (p *Pool) ResetDailyQuotas(ctx context.Context) error {
	if err := p.repo.ResetAllQuotas(ctx); err != nil {
		return err
	}
	creds, err := p.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list credentials after reset: %w", err)
	}
	for _, cred := range creds {
		metrics.CredentialQuotaRemaining.WithLabelValues(cred.ID).Set(float64(cred.RemainingQuota()))
	}
	return nil
}
