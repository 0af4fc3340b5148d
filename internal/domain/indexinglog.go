package domain

import "time"

type LogStatus string

const (
	LogStatusSuccess LogStatus = "success"
	LogStatusError   LogStatus = "error"
)

// IndexingLog is one append-only record of a method adapter invocation
// against a URL. response_body is truncated by the caller before
// persisting (see scheduler.maxLoggedBody).
type IndexingLog struct {
	ID             string
	URLRef         string
	Method         Method
	Status         LogStatus
	ResponseCode   int
	ResponseBody   string
	CredentialsRef *string
	CreatedAt      time.Time
}
