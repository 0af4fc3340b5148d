package scheduler

import (
	"context"
	"log/slog"

	"github.com/indexpulse/core/internal/credentials"
	"github.com/robfig/cron/v3"
)

// CredentialResetScheduler fires ResetDailyQuotas once at UTC midnight,
// clearing used_today and rate_limited on every credential without
// touching an admin's explicit Disable.
type CredentialResetScheduler struct {
	pool   *credentials.Pool
	logger *slog.Logger
	cron   *cron.Cron
}

func NewCredentialResetScheduler(pool *credentials.Pool, logger *slog.Logger) *CredentialResetScheduler {
	return &CredentialResetScheduler{
		pool:   pool,
		logger: logger.With("component", "credential_reset_scheduler"),
		cron:   cron.New(cron.WithLocation(timeUTC)),
	}
}

func (s *CredentialResetScheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc("0 0 * * *", func() {
		if err := s.pool.ResetDailyQuotas(ctx); err != nil {
			s.logger.Error("reset daily quotas failed", "error", err)
			return
		}
		s.logger.Info("credential daily quotas reset")
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
	return nil
}
