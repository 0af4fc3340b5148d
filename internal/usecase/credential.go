package usecase

import (
	"context"
	"fmt"

	"github.com/indexpulse/core/internal/credentials"
	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/repository"
)

// CredentialUsecase is the admin-facing wrapper around the credentials
// pool: adding, listing, and disabling search-console/custom-search
// credentials. Every method requires the caller to already be an admin
// (checked against domain.User.IsAdmin by middleware.RequireAdmin before
// the handler calls in).
type CredentialUsecase struct {
	repo repository.CredentialRepository
	pool *credentials.Pool
}

func NewCredentialUsecase(repo repository.CredentialRepository, pool *credentials.Pool) *CredentialUsecase {
	return &CredentialUsecase{repo: repo, pool: pool}
}

type AddCredentialInput struct {
	Name        string
	Email       string
	KeyMaterial string
	DailyQuota  int
}

func (u *CredentialUsecase) AddCredential(ctx context.Context, input AddCredentialInput) (*domain.Credential, error) {
	if input.DailyQuota <= 0 {
		input.DailyQuota = 200
	}
	c := &domain.Credential{
		Name:        input.Name,
		Email:       input.Email,
		KeyMaterial: input.KeyMaterial,
		DailyQuota:  input.DailyQuota,
		IsActive:    true,
	}
	if err := u.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create credential: %w", err)
	}
	return c, nil
}

func (u *CredentialUsecase) List(ctx context.Context) ([]*domain.Credential, error) {
	return u.pool.List(ctx)
}

func (u *CredentialUsecase) Disable(ctx context.Context, id string) error {
	return u.pool.Disable(ctx, id)
}

func (u *CredentialUsecase) Enable(ctx context.Context, id string) error {
	return u.pool.Enable(ctx, id)
}
