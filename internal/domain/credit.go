package domain

import (
	"errors"
	"time"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrAlreadyRefunded     = errors.New("url credit already refunded")
	ErrNotDebited          = errors.New("url credit was never debited")
)

type TransactionKind string

const (
	TransactionPurchase TransactionKind = "purchase"
	TransactionDebit    TransactionKind = "debit"
	TransactionRefund   TransactionKind = "refund"
	TransactionBonus    TransactionKind = "bonus"
)

type CreditTransaction struct {
	ID          string
	UserRef     string
	Amount      int
	Kind        TransactionKind
	Description string
	URLRef      *string
	CreatedAt   time.Time
}

// RefundReason values used as CreditTransaction.Description. Kept as
// constants so the sweeper, the pre-check path, and tests agree on the
// exact text.
const (
	RefundReasonAlreadyIndexed  = "Auto-refund: URL already indexed at submission"
	RefundReasonURLRemoved      = "Auto-refund: URL removed"
	RefundReasonNotIndexed14Day = "Auto-refund: URL not indexed after 14 days"
)
