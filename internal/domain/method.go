package domain

import "time"

// Method is the closed set of channels through which a URL is notified to
// search engines. Dispatch on Method should always be an exhaustive switch,
// never a string comparison against an open set of values.
type Method string

const (
	MethodIndexNow    Method = "indexnow"
	MethodPingomatic  Method = "pingomatic"
	MethodWebSub      Method = "websub"
	MethodArchiveOrg  Method = "archive_org"
	MethodBacklink    Method = "backlink"
	MethodGoogleAPI   Method = "google_api"
)

// AllMethods lists the six methods enqueued for every URL, in the order
// they are scored (lowest initial delay first).
var AllMethods = []Method{
	MethodIndexNow,
	MethodPingomatic,
	MethodWebSub,
	MethodArchiveOrg,
	MethodBacklink,
	MethodGoogleAPI,
}

// InitialDelay returns the staggered offset from submission time at which
// the method first becomes eligible to run.
func (m Method) InitialDelay() time.Duration {
	switch m {
	case MethodIndexNow:
		return 0
	case MethodPingomatic:
		return 120 * time.Second
	case MethodWebSub:
		return 240 * time.Second
	case MethodArchiveOrg:
		return 480 * time.Second
	case MethodBacklink:
		return 720 * time.Second
	case MethodGoogleAPI:
		return 1800 * time.Second
	default:
		return 0
	}
}

// RateLimit returns the method's fixed-window leaky bucket, or ok=false
// when the method has no independent window (google_api is gated by the
// credentials pool's daily quota instead).
func (m Method) RateLimit() (maxCalls int, window time.Duration, ok bool) {
	switch m {
	case MethodIndexNow:
		return 100, 60 * time.Second, true
	case MethodPingomatic:
		return 30, 60 * time.Second, true
	case MethodWebSub:
		return 30, 60 * time.Second, true
	case MethodArchiveOrg:
		return 15, 60 * time.Second, true
	case MethodBacklink:
		return 30, 60 * time.Second, true
	case MethodGoogleAPI:
		return 0, 0, false
	default:
		return 0, 0, false
	}
}

func (m Method) Valid() bool {
	switch m {
	case MethodIndexNow, MethodPingomatic, MethodWebSub, MethodArchiveOrg, MethodBacklink, MethodGoogleAPI:
		return true
	default:
		return false
	}
}
