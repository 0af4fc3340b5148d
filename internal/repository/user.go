package repository

import (
	"context"
	"time"

	"github.com/indexpulse/core/internal/domain"
)

type UserRepository interface {
	FindOrCreate(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	CreateMagicToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	ClaimMagicToken(ctx context.Context, tokenHash string) (*domain.MagicToken, error)

	// Upsert guarantees a row exists for userID so FK constraints on
	// projects/urls are always satisfiable once a JWT has been issued.
	Upsert(ctx context.Context, userID string) error
}
