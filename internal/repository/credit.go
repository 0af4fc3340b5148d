package repository

import (
	"context"

	"github.com/indexpulse/core/internal/domain"
)

// UseCase depends on interface, not concrete implementation.
//
// Debit and Refund must each run as a single transaction that both
// writes the ledger row and updates users.credit_balance, so a crash
// mid-operation never leaves the derived balance out of sync with the
// transaction log.
type CreditRepository interface {
	GetBalance(ctx context.Context, userID string) (int, error)

	// Debit appends a negative-amount transaction and decrements the
	// balance, failing with domain.ErrInsufficientCredits if balance <
	// amount. Returns the created transaction.
	Debit(ctx context.Context, userID string, urlID string, amount int) (*domain.CreditTransaction, error)

	// Refund appends a positive-amount transaction tied to a prior debit.
	// Callers are expected to have already checked
	// url.CreditDebited && !url.CreditRefunded via the URL repository;
	// Refund itself only guards against double-crediting the same urlID.
	Refund(ctx context.Context, userID string, urlID string, amount int, reason string) (*domain.CreditTransaction, error)

	// Grant appends a positive-amount transaction not tied to any URL
	// (purchase or bonus).
	Grant(ctx context.Context, userID string, amount int, kind domain.TransactionKind) (*domain.CreditTransaction, error)

	ListTransactions(ctx context.Context, userID string, limit int, cursor string) ([]*domain.CreditTransaction, string, error)

	// HasRefunded reports whether a refund transaction already exists for
	// urlID, used to make the nightly refund sweep idempotent.
	HasRefunded(ctx context.Context, urlID string) (bool, error)
}
