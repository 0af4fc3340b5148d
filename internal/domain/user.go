package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrTokenInvalid = errors.New("token is invalid or expired")
	ErrUnauthorized = errors.New("unauthorized")
)

// User.CreditBalance is derived state: it must always equal the initial
// grant written when the user row is created plus the sum of the signed
// amounts of every CreditTransaction belonging to this user. The
// initial grant is not itself recorded as a transaction. The ledger is
// the only component allowed to mutate it.
type User struct {
	ID            string
	Email         string
	CreditBalance int
	IsAdmin       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type MagicToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
