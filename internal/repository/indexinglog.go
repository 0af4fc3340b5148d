package repository

import (
	"context"

	"github.com/indexpulse/core/internal/domain"
)

// UseCase depends on interface, not concrete implementation.
type IndexingLogRepository interface {
	Create(ctx context.Context, l *domain.IndexingLog) error
	ListByURL(ctx context.Context, urlID string, limit int) ([]*domain.IndexingLog, error)
}
