package postgres

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/indexpulse/core/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CreditRepository struct {
	pool *pgxpool.Pool
}

func NewCreditRepository(pool *pgxpool.Pool) *CreditRepository {
	return &CreditRepository{pool: pool}
}

func (r *CreditRepository) GetBalance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := r.pool.QueryRow(ctx, `SELECT credit_balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// Debit is grounded on the original credits service's debit_credits: it
// rejects the operation entirely if the balance would go negative,
// rather than letting it go negative and reconciling later.
func (r *CreditRepository) Debit(ctx context.Context, userID, urlID string, amount int) (*domain.CreditTransaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var balance int
	if err := tx.QueryRow(ctx, `SELECT credit_balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance); err != nil {
		return nil, fmt.Errorf("lock user balance: %w", err)
	}
	if balance < amount {
		return nil, domain.ErrInsufficientCredits
	}

	var txn domain.CreditTransaction
	err = tx.QueryRow(ctx, `
		INSERT INTO credit_transactions (user_ref, amount, kind, description, url_ref)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_ref, amount, kind, description, url_ref, created_at`,
		userID, -amount, domain.TransactionDebit, "URL submission", urlID,
	).Scan(&txn.ID, &txn.UserRef, &txn.Amount, &txn.Kind, &txn.Description, &txn.URLRef, &txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert debit transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET credit_balance = credit_balance - $2, updated_at = NOW() WHERE id = $1`, userID, amount); err != nil {
		return nil, fmt.Errorf("apply debit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &txn, nil
}

// Refund guards only against double-crediting the same urlID — callers
// are expected to have already checked url.CreditDebited &&
// !url.CreditRefunded via the URL repository before calling this.
func (r *CreditRepository) Refund(ctx context.Context, userID, urlID string, amount int, reason string) (*domain.CreditTransaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM credit_transactions WHERE url_ref = $1 AND kind = $2)`,
		urlID, domain.TransactionRefund,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check existing refund: %w", err)
	}
	if exists {
		return nil, domain.ErrAlreadyRefunded
	}

	var txn domain.CreditTransaction
	err = tx.QueryRow(ctx, `
		INSERT INTO credit_transactions (user_ref, amount, kind, description, url_ref)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_ref, amount, kind, description, url_ref, created_at`,
		userID, amount, domain.TransactionRefund, reason, urlID,
	).Scan(&txn.ID, &txn.UserRef, &txn.Amount, &txn.Kind, &txn.Description, &txn.URLRef, &txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert refund transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET credit_balance = credit_balance + $2, updated_at = NOW() WHERE id = $1`, userID, amount); err != nil {
		return nil, fmt.Errorf("apply refund: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &txn, nil
}

func (r *CreditRepository) Grant(ctx context.Context, userID string, amount int, kind domain.TransactionKind) (*domain.CreditTransaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var txn domain.CreditTransaction
	err = tx.QueryRow(ctx, `
		INSERT INTO credit_transactions (user_ref, amount, kind, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_ref, amount, kind, description, url_ref, created_at`,
		userID, amount, kind, string(kind),
	).Scan(&txn.ID, &txn.UserRef, &txn.Amount, &txn.Kind, &txn.Description, &txn.URLRef, &txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert grant transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET credit_balance = credit_balance + $2, updated_at = NOW() WHERE id = $1`, userID, amount); err != nil {
		return nil, fmt.Errorf("apply grant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &txn, nil
}

func (r *CreditRepository) HasRefunded(ctx context.Context, urlID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM credit_transactions WHERE url_ref = $1 AND kind = $2)`,
		urlID, domain.TransactionRefund,
	).Scan(&exists)
	return exists, err
}

type txnCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

func (r *CreditRepository) ListTransactions(ctx context.Context, userID string, limit int, cursor string) ([]*domain.CreditTransaction, string, error) {
	args := []any{userID}
	where := "user_ref = $1"

	if cursor != "" {
		var c txnCursor
		b, err := base64.RawURLEncoding.DecodeString(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("decode cursor: %w", err)
		}
		if err := json.Unmarshal(b, &c); err != nil {
			return nil, "", fmt.Errorf("decode cursor: %w", err)
		}
		args = append(args, c.CreatedAt, c.ID)
		where += " AND (created_at, id) < ($2, $3)"
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, user_ref, amount, kind, description, url_ref, created_at
		FROM credit_transactions
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`, where, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*domain.CreditTransaction
	for rows.Next() {
		var t domain.CreditTransaction
		if err := rows.Scan(&t.ID, &t.UserRef, &t.Amount, &t.Kind, &t.Description, &t.URLRef, &t.CreatedAt); err != nil {
			return nil, "", fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, &t)
	}

	var next string
	if len(txns) == limit {
		last := txns[len(txns)-1]
		b, _ := json.Marshal(txnCursor{CreatedAt: last.CreatedAt, ID: last.ID})
		next = base64.RawURLEncoding.EncodeToString(b)
	}
	return txns, next, nil
}
