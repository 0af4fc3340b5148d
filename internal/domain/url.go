package domain

import (
	"errors"
	"time"
)

var (
	ErrURLNotFound     = errors.New("url not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrDuplicateURL    = errors.New("url already exists in this project")
)

type URLStatus string

const (
	URLStatusPending    URLStatus = "pending"
	URLStatusSubmitted  URLStatus = "submitted"
	URLStatusIndexing   URLStatus = "indexing"
	URLStatusVerifying  URLStatus = "verifying"
	URLStatusIndexed    URLStatus = "indexed"
	URLStatusNotIndexed URLStatus = "not_indexed"
	URLStatusRecredited URLStatus = "recredited"
)

// NonTerminal reports whether a URL in this status is still a candidate
// for verification sweeps or the refund sweeper.
func (s URLStatus) NonTerminal() bool {
	switch s {
	case URLStatusSubmitted, URLStatusIndexing, URLStatusVerifying, URLStatusNotIndexed:
		return true
	default:
		return false
	}
}

// MethodCounters holds one attempt counter and last-status string per
// method. Counters are monotonically non-decreasing for the life of a URL.
type MethodCounters struct {
	IndexNowAttempts   int
	PingomaticAttempts int
	WebSubAttempts     int
	ArchiveOrgAttempts int
	BacklinkAttempts   int
	GoogleAPIAttempts  int

	IndexNowLastStatus   string
	PingomaticLastStatus string
	WebSubLastStatus     string
	ArchiveOrgLastStatus string
	BacklinkLastStatus   string
	GoogleAPILastStatus  string
}

func (c *MethodCounters) Attempts(m Method) int {
	switch m {
	case MethodIndexNow:
		return c.IndexNowAttempts
	case MethodPingomatic:
		return c.PingomaticAttempts
	case MethodWebSub:
		return c.WebSubAttempts
	case MethodArchiveOrg:
		return c.ArchiveOrgAttempts
	case MethodBacklink:
		return c.BacklinkAttempts
	case MethodGoogleAPI:
		return c.GoogleAPIAttempts
	default:
		return 0
	}
}

// RecordAttempt increments the counter for m and stores lastStatus
// ("success" or "error"). Never decrements — counters are monotonic.
func (c *MethodCounters) RecordAttempt(m Method, lastStatus string) {
	switch m {
	case MethodIndexNow:
		c.IndexNowAttempts++
		c.IndexNowLastStatus = lastStatus
	case MethodPingomatic:
		c.PingomaticAttempts++
		c.PingomaticLastStatus = lastStatus
	case MethodWebSub:
		c.WebSubAttempts++
		c.WebSubLastStatus = lastStatus
	case MethodArchiveOrg:
		c.ArchiveOrgAttempts++
		c.ArchiveOrgLastStatus = lastStatus
	case MethodBacklink:
		c.BacklinkAttempts++
		c.BacklinkLastStatus = lastStatus
	case MethodGoogleAPI:
		c.GoogleAPIAttempts++
		c.GoogleAPILastStatus = lastStatus
	}
}

type URL struct {
	ID         string
	ProjectRef string
	Text       string

	Status URLStatus
	MethodCounters

	IsIndexed      bool
	IndexedAt      *time.Time
	IndexedTitle   string
	IndexedSnippet string

	LastCheckedAt *time.Time
	CheckCount    int
	CheckMethod   string

	CreditDebited  bool
	CreditRefunded bool

	PreIndexed         bool
	VerifiedNotIndexed bool

	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Project struct {
	ID             string
	OwnerID        string
	MainDomain     string
	CredentialsRef *string
	WebhookURL     string
	NotifyByEmail  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
