package usecase

import (
	"context"
	"fmt"

	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/repository"
)

// CreditLedger is the sole writer of credit_transactions and the only
// component permitted to change a user's derived credit_balance,
// grounded on the original CreditService's debit/refund/add triad.
type CreditLedger struct {
	credits repository.CreditRepository
	urls    repository.URLRepository
}

func NewCreditLedger(credits repository.CreditRepository, urls repository.URLRepository) *CreditLedger {
	return &CreditLedger{credits: credits, urls: urls}
}

func (l *CreditLedger) Balance(ctx context.Context, userID string) (int, error) {
	return l.credits.GetBalance(ctx, userID)
}

// DebitForSubmission charges one credit for a URL submission and marks
// the URL as debited so the refund path later knows it owes one back.
func (l *CreditLedger) DebitForSubmission(ctx context.Context, userID, urlID string) error {
	if _, err := l.credits.Debit(ctx, userID, urlID, 1); err != nil {
		return fmt.Errorf("debit credits: %w", err)
	}
	if err := l.urls.SetCreditDebited(ctx, urlID, true); err != nil {
		return fmt.Errorf("mark credit debited: %w", err)
	}
	return nil
}

// Refund issues a refund transaction for a URL and marks it
// credit_refunded. It is idempotent: a second call for the same urlID
// returns domain.ErrAlreadyRefunded instead of double-crediting.
func (l *CreditLedger) Refund(ctx context.Context, userID, urlID, reason string) error {
	if _, err := l.credits.Refund(ctx, userID, urlID, 1, reason); err != nil {
		return fmt.Errorf("refund credits: %w", err)
	}
	if err := l.urls.SetCreditRefunded(ctx, urlID, true); err != nil {
		return fmt.Errorf("mark credit refunded: %w", err)
	}
	return nil
}

func (l *CreditLedger) Grant(ctx context.Context, userID string, amount int, kind domain.TransactionKind) error {
	if _, err := l.credits.Grant(ctx, userID, amount, kind); err != nil {
		return fmt.Errorf("grant credits: %w", err)
	}
	return nil
}

func (l *CreditLedger) ListTransactions(ctx context.Context, userID string, limit int, cursor string) ([]*domain.CreditTransaction, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return l.credits.ListTransactions(ctx, userID, limit, cursor)
}
