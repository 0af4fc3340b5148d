package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/metrics"
	"github.com/indexpulse/core/internal/repository"
	"github.com/indexpulse/core/internal/usecase"
	"github.com/robfig/cron/v3"
)

const (
	refundSweepAge = 14 * 24 * time.Hour
	refundCronSpec = "0 2 * * *"
)

// RefundSweeper implements §4.7: URLs debited 14 days ago that never
// indexed get their credit back automatically, grounded on the
// teacher's reaper sweep structure (batch claim, per-item best effort
// with logged-and-continue failures) with the interval ticker replaced
// by a UTC-anchored cron fire since §4.7 pins an exact clock time.
type RefundSweeper struct {
	urls      repository.URLRepository
	credits   *usecase.CreditLedger
	projects  repository.ProjectRepository
	logger    *slog.Logger
	batchSize int
}

func NewRefundSweeper(
	urls repository.URLRepository,
	credits *usecase.CreditLedger,
	projects repository.ProjectRepository,
	logger *slog.Logger,
	batchSize int,
) *RefundSweeper {
	return &RefundSweeper{
		urls:      urls,
		credits:   credits,
		projects:  projects,
		logger:    logger.With("component", "refund_sweeper"),
		batchSize: batchSize,
	}
}

func (s *RefundSweeper) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(timeUTC))
	if _, err := c.AddFunc(refundCronSpec, func() { s.sweep(ctx) }); err != nil {
		return err
	}
	c.Start()
	s.logger.Info("refund sweeper started", "cron", refundCronSpec)

	go func() {
		<-ctx.Done()
		c.Stop()
		s.logger.Info("refund sweeper shut down")
	}()
	return nil
}

func (s *RefundSweeper) sweep(ctx context.Context) {
	candidates, err := s.urls.ClaimForRefundSweep(ctx, refundSweepAge, s.batchSize)
	if err != nil {
		s.logger.Error("claim refund sweep failed", "error", err)
		return
	}
	if len(candidates) == 0 {
		return
	}

	refunded := 0
	for _, u := range candidates {
		if !u.Status.NonTerminal() {
			continue
		}
		if err := s.refundOne(ctx, u); err != nil {
			s.logger.Error("refund url failed", "url_id", u.ID, "error", err)
			continue
		}
		refunded++
	}
	metrics.RefundsIssuedTotal.Add(float64(refunded))
	if refunded > 0 {
		s.logger.Info("auto-refunded stale urls", "count", refunded)
	}
}

func (s *RefundSweeper) refundOne(ctx context.Context, u *domain.URL) error {
	project, err := s.projects.GetByID(ctx, u.ProjectRef)
	if err != nil {
		return err
	}
	if err := s.credits.Refund(ctx, project.OwnerID, u.ID, domain.RefundReasonNotIndexed14Day); err != nil {
		if errors.Is(err, domain.ErrAlreadyRefunded) {
			return nil
		}
		return err
	}
	return s.urls.UpdateStatus(ctx, u.ID, domain.URLStatusRecredited)
}
