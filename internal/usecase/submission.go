package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/notify"
	"github.com/indexpulse/core/internal/probes"
	"github.com/indexpulse/core/internal/queue"
	"github.com/indexpulse/core/internal/repository"
)

// CheckerBuilder resolves the ordered probe chain for a project: its own
// credential if one is configured, otherwise the global pool's.
type CheckerBuilder func(ctx context.Context, project *domain.Project) *probes.Checker

// SubmissionDispatcher is the entry point called when new URLs are added
// to a project, and periodically for URLs stuck in pending.
type SubmissionDispatcher struct {
	urls         repository.URLRepository
	projects     repository.ProjectRepository
	users        repository.UserRepository
	credits      *CreditLedger
	queue        queue.JobQueue
	buildChecker CheckerBuilder
	notifier     *notify.Fanout
	logger       *slog.Logger
}

func NewSubmissionDispatcher(
	urls repository.URLRepository,
	projects repository.ProjectRepository,
	users repository.UserRepository,
	credits *CreditLedger,
	jobQueue queue.JobQueue,
	buildChecker CheckerBuilder,
	notifier *notify.Fanout,
	logger *slog.Logger,
) *SubmissionDispatcher {
	return &SubmissionDispatcher{
		urls:         urls,
		projects:     projects,
		users:        users,
		credits:      credits,
		queue:        jobQueue,
		buildChecker: buildChecker,
		notifier:     notifier,
		logger:       logger.With("component", "submission_dispatcher"),
	}
}

// SubmitURLs creates one URL row per text, debits one credit each, runs
// the pre-check, and either marks an already-indexed URL terminal with
// an automatic refund or enqueues its six method jobs.
func (d *SubmissionDispatcher) SubmitURLs(ctx context.Context, userID, projectID string, texts []string, indexNowConfig *domain.IndexNowConfig) ([]*domain.URL, error) {
	project, err := d.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	balance, err := d.credits.Balance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	if balance < len(texts) {
		return nil, domain.ErrInsufficientCredits
	}

	owner, err := d.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}

	checker := d.buildChecker(ctx, project)

	results := make([]*domain.URL, 0, len(texts))
	for _, text := range texts {
		u, err := d.submitOne(ctx, userID, project, owner.Email, text, indexNowConfig, checker)
		if err != nil {
			if errors.Is(err, domain.ErrDuplicateURL) {
				continue
			}
			return results, err
		}
		results = append(results, u)
	}
	return results, nil
}

func (d *SubmissionDispatcher) submitOne(
	ctx context.Context,
	userID string,
	project *domain.Project,
	ownerEmail string,
	text string,
	indexNowConfig *domain.IndexNowConfig,
	checker *probes.Checker,
) (*domain.URL, error) {
	u := &domain.URL{ProjectRef: project.ID, Text: text, Status: domain.URLStatusPending}
	if err := d.urls.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create url: %w", err)
	}

	if err := d.credits.DebitForSubmission(ctx, userID, u.ID); err != nil {
		return nil, fmt.Errorf("debit credit: %w", err)
	}
	u.CreditDebited = true

	// The pre-check must not block progress: any error here is treated
	// as "not indexed yet" and the URL is submitted anyway.
	result := checker.Check(ctx, text)
	if result.Indexed == probes.VerdictYes {
		now := time.Now()
		if err := d.urls.MarkIndexed(ctx, u.ID, result.Title, result.Snippet, now, result.Method); err != nil {
			d.logger.ErrorContext(ctx, "mark pre-indexed failed", "url_id", u.ID, "error", err)
			return u, nil
		}
		if err := d.urls.SetPreIndexed(ctx, u.ID, true); err != nil {
			d.logger.ErrorContext(ctx, "set pre_indexed failed", "url_id", u.ID, "error", err)
		}
		if err := d.credits.Refund(ctx, userID, u.ID, domain.RefundReasonAlreadyIndexed); err != nil {
			d.logger.ErrorContext(ctx, "refund pre-indexed url failed", "url_id", u.ID, "error", err)
		}

		u.Status = domain.URLStatusIndexed
		u.IsIndexed = true
		u.IndexedAt = &now
		u.PreIndexed = true
		d.notifier.NotifyIndexed(ctx, notify.IndexedEvent{URL: u, Project: project, OwnerEmail: ownerEmail})
		return u, nil
	}

	now := time.Now()
	if err := d.urls.MarkSubmitted(ctx, u.ID, now); err != nil {
		return nil, fmt.Errorf("mark submitted: %w", err)
	}
	u.Status = domain.URLStatusSubmitted
	u.SubmittedAt = &now

	if err := d.queue.EnqueueURL(ctx, u.ID, project.ID, indexNowConfig); err != nil {
		// The queue is a workload hint, not the source of truth: the URL
		// goes back to pending so the periodic pending-URL sweep picks it
		// up and enqueues it again.
		d.logger.ErrorContext(ctx, "enqueue url methods failed", "url_id", u.ID, "error", err)
		if err := d.urls.UpdateStatus(ctx, u.ID, domain.URLStatusPending); err != nil {
			d.logger.ErrorContext(ctx, "revert to pending failed", "url_id", u.ID, "error", err)
		} else {
			u.Status = domain.URLStatusPending
		}
	}
	return u, nil
}

// DispatchPendingBatch is the backstop named in §4.5: URLs left in
// pending (a crash between Create and MarkSubmitted, or a failed
// EnqueueURL that put the URL back in pending) are claimed and
// re-enqueued without repeating the pre-check or the debit, both of
// which already happened when the URL was created.
func (d *SubmissionDispatcher) DispatchPendingBatch(ctx context.Context, limit int) (int, error) {
	pending, err := d.urls.ClaimPendingBatch(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("claim pending batch: %w", err)
	}

	for _, u := range pending {
		if err := d.queue.EnqueueURL(ctx, u.ID, u.ProjectRef, nil); err != nil {
			d.logger.ErrorContext(ctx, "enqueue pending url failed", "url_id", u.ID, "error", err)
		}
	}
	return len(pending), nil
}
