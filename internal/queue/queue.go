// Package queue defines the method job queue abstraction shared by the
// Redis-backed production implementation and the in-memory fake used in
// tests.
package queue

import (
	"context"
	"time"

	"github.com/indexpulse/core/internal/domain"
)

// MethodPriority is the delay, from URL submission time, at which each
// method's job becomes eligible. IndexNow fires immediately; the rest
// are staggered so a single burst of submissions doesn't hammer every
// destination at once.
var MethodPriority = map[domain.Method]time.Duration{
	domain.MethodIndexNow:   0,
	domain.MethodPingomatic: 120 * time.Second,
	domain.MethodWebSub:     240 * time.Second,
	domain.MethodArchiveOrg: 480 * time.Second,
	domain.MethodBacklink:   720 * time.Second,
	domain.MethodGoogleAPI:  1800 * time.Second,
}

const BackoffBase = 5 * time.Minute

// JobQueue is a time-scored job queue: jobs become eligible for Pop once
// their score (an absolute Unix time) has elapsed. UseCase depends on
// interface, not concrete implementation.
type JobQueue interface {
	// EnqueueURL schedules one job per method in domain.AllMethods,
	// staggered per MethodPriority, for a freshly-pending URL.
	EnqueueURL(ctx context.Context, urlID, projectID string, indexNowConfig *domain.IndexNowConfig) error

	// PopEligible atomically removes and returns up to batch jobs whose
	// score is <= now.
	PopEligible(ctx context.Context, batch int) ([]domain.QueueJob, error)

	// Requeue reinserts job with a score of now+delay, used on retry.
	Requeue(ctx context.Context, job domain.QueueJob, delay time.Duration) error

	// Stats reports total/eligible/delayed counts for monitoring.
	Stats(ctx context.Context) (Stats, error)
}

type Stats struct {
	Total    int64
	Eligible int64
	Delayed  int64
}
