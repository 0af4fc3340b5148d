package repository

import (
	"context"
	"time"

	"github.com/indexpulse/core/internal/domain"
)

// UseCase depends on interface, not concrete implementation.
type URLRepository interface {
	Create(ctx context.Context, u *domain.URL) error
	GetByID(ctx context.Context, id string) (*domain.URL, error)
	ListByProject(ctx context.Context, projectID string, limit int, cursor string) ([]*domain.URL, string, error)

	// UpdateStatus transitions a URL's status and bumps updated_at.
	UpdateStatus(ctx context.Context, id string, status domain.URLStatus) error

	// MarkSubmitted transitions a pending URL to submitted and stamps
	// submitted_at, the step that follows a pre-check that did not find
	// the URL already indexed.
	MarkSubmitted(ctx context.Context, id string, submittedAt time.Time) error

	SetPreIndexed(ctx context.Context, id string, preIndexed bool) error

	// RecordMethodAttempt persists one method adapter's attempt counter and
	// last status after an attempt; it does not change the URL's status.
	RecordMethodAttempt(ctx context.Context, id string, method domain.Method, lastStatus string) error

	// MarkIndexed records a positive verification result together with
	// the title and snippet the probe returned.
	MarkIndexed(ctx context.Context, id string, title, snippet string, checkedAt time.Time, checkMethod string) error

	// MarkCheckedNotIndexed advances last_checked_at/check_count without
	// flipping is_indexed.
	MarkCheckedNotIndexed(ctx context.Context, id string, checkedAt time.Time, checkMethod string) error

	// RecordCheckAttempt advances last_checked_at/check_count/check_method
	// only, for an inconclusive verification pass that must leave status
	// untouched.
	RecordCheckAttempt(ctx context.Context, id string, checkedAt time.Time, checkMethod string) error

	SetCreditDebited(ctx context.Context, id string, debited bool) error
	SetCreditRefunded(ctx context.Context, id string, refunded bool) error
	SetVerifiedNotIndexed(ctx context.Context, id string, verified bool) error

	// ClaimPendingBatch locks up to limit URLs in `pending` state so the
	// submission dispatcher can enqueue their method jobs exactly once.
	// FOR UPDATE SKIP LOCKED lets multiple dispatcher replicas run
	// concurrently without double-submitting the same URL.
	ClaimPendingBatch(ctx context.Context, limit int) ([]*domain.URL, error)

	// ClaimForVerification returns not-yet-indexed URLs in submitted,
	// indexing, verifying or not_indexed status due for a verification pass at the given tier boundary (age >= minAge, age <
	// maxAge when maxAge > 0), locked to prevent overlap with other
	// verification workers.
	ClaimForVerification(ctx context.Context, minAge, maxAge time.Duration, limit int) ([]*domain.URL, error)

	// ClaimForRefundSweep returns submitted URLs older than age whose
	// credit was debited but never refunded and which are still not
	// indexed — candidates for the 14-day automatic refund.
	ClaimForRefundSweep(ctx context.Context, age time.Duration, limit int) ([]*domain.URL, error)
}
