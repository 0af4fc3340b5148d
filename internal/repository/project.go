package repository

import (
	"context"

	"github.com/indexpulse/core/internal/domain"
)

// UseCase depends on interface, not concrete implementation.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByOwner(ctx context.Context, ownerID string, limit int, cursor string) ([]*domain.Project, string, error)
	Update(ctx context.Context, p *domain.Project) error
}
