package domain

import (
	"errors"
	"time"
)

var ErrCredentialNotFound = errors.New("credential not found")
var ErrNoCredentialAvailable = errors.New("no credential available")

// Credential is a search-engine service credential with a daily call
// quota. key_material is an inlined JSON secret (a service-account key or
// API key blob) and is never logged.
type Credential struct {
	ID           string
	Name         string
	Email        string
	KeyMaterial  string
	DailyQuota   int
	UsedToday    int
	IsActive     bool
	RateLimited  bool // set on 401/403/429, cleared only by ResetDailyQuotas
	LastResetAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Available reports whether this credential can serve another request
// right now: not explicitly disabled, not rate-limited for the day, and
// under quota.
func (c Credential) Available() bool {
	return c.IsActive && !c.RateLimited && c.UsedToday < c.DailyQuota
}

func (c Credential) RemainingQuota() int {
	remaining := c.DailyQuota - c.UsedToday
	if remaining < 0 {
		return 0
	}
	return remaining
}
