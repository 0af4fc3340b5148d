package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/metrics"
	"github.com/indexpulse/core/internal/notify"
	"github.com/indexpulse/core/internal/probes"
	"github.com/indexpulse/core/internal/repository"
	"github.com/indexpulse/core/internal/usecase"
	"github.com/robfig/cron/v3"
)

// VerificationTier is one of the five age-windowed sweeps from §4.6.
// MinAge/MaxAge bound how long a URL has been submitted; MaxAge == 0
// means "no upper bound". A tier fires on Interval if set, otherwise at
// the fixed daily UTC time named by CronSpec.
type VerificationTier struct {
	Name     string
	MinAge   time.Duration
	MaxAge   time.Duration
	Interval time.Duration
	CronSpec string
	Limit    int
}

// DefaultTiers carries the age windows, cadences and limits of §4.6's
// five rows: the first three fire on a fixed cadence, the last two at a
// pinned UTC clock time. Tiers select on submission age only; no tier,
// the fresh one included, filters on how recently a URL was last checked.
var DefaultTiers = []VerificationTier{
	{Name: "fresh", MinAge: 0, MaxAge: 6 * time.Hour, Interval: time.Hour, Limit: 100},
	{Name: "recent", MinAge: 0, MaxAge: 24 * time.Hour, Interval: 6 * time.Hour, Limit: 200},
	{Name: "aging", MinAge: 24 * time.Hour, MaxAge: 3 * 24 * time.Hour, Interval: 12 * time.Hour, Limit: 200},
	{Name: "stale", MinAge: 3 * 24 * time.Hour, MaxAge: 7 * 24 * time.Hour, CronSpec: "0 6 * * *", Limit: 200},
	{Name: "final", MinAge: 7 * 24 * time.Hour, MaxAge: 10 * 24 * time.Hour, CronSpec: "0 8 * * *", Limit: 200},
}

// VerificationScheduler runs each tier on its own ticker or cron entry, each claiming its own
// age-windowed batch and verifying every URL in it against the checker
// built for that URL's project.
type VerificationScheduler struct {
	urls         repository.URLRepository
	projects     repository.ProjectRepository
	users        repository.UserRepository
	buildChecker usecase.CheckerBuilder
	notifier     *notify.Fanout
	logger       *slog.Logger
}

func NewVerificationScheduler(
	urls repository.URLRepository,
	projects repository.ProjectRepository,
	users repository.UserRepository,
	builder *probes.Builder,
	notifier *notify.Fanout,
	logger *slog.Logger,
) *VerificationScheduler {
	return &VerificationScheduler{
		urls:         urls,
		projects:     projects,
		users:        users,
		buildChecker: builder.Build,
		notifier:     notifier,
		logger:       logger.With("component", "verification_scheduler"),
	}
}

// Start launches one goroutine per interval-based tier and registers the
// cron-based tiers on a shared cron.Cron running in UTC.
func (s *VerificationScheduler) Start(ctx context.Context, tiers []VerificationTier) error {
	c := cron.New(cron.WithLocation(timeUTC))
	for _, tier := range tiers {
		switch {
		case tier.Interval > 0:
			go s.runTicker(ctx, tier)
		case tier.CronSpec != "":
			t := tier
			if _, err := c.AddFunc(t.CronSpec, func() { s.sweepTier(ctx, t) }); err != nil {
				return err
			}
		}
	}
	c.Start()
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return nil
}

func (s *VerificationScheduler) runTicker(ctx context.Context, tier VerificationTier) {
	ticker := time.NewTicker(tier.Interval)
	defer ticker.Stop()

	s.logger.Info("verification tier started", "tier", tier.Name, "interval", tier.Interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepTier(ctx, tier)
		}
	}
}

func (s *VerificationScheduler) sweepTier(ctx context.Context, tier VerificationTier) {
	start := time.Now()
	defer func() {
		metrics.VerificationSweepDuration.WithLabelValues(tier.Name).Observe(time.Since(start).Seconds())
	}()

	candidates, err := s.urls.ClaimForVerification(ctx, tier.MinAge, tier.MaxAge, tier.Limit)
	if err != nil {
		s.logger.Error("claim for verification failed", "tier", tier.Name, "error", err)
		return
	}
	if len(candidates) == 0 {
		return
	}

	byProject := make(map[string][]*domain.URL)
	for _, u := range candidates {
		byProject[u.ProjectRef] = append(byProject[u.ProjectRef], u)
	}

	verified := 0
	for projectID, urls := range byProject {
		verified += s.verifyProjectBatch(ctx, tier.Name, projectID, urls)
	}
	s.logger.Info("verification tier swept", "tier", tier.Name, "candidates", len(candidates), "verified", verified)
}

func (s *VerificationScheduler) verifyProjectBatch(ctx context.Context, tierName, projectID string, urls []*domain.URL) int {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		s.logger.Error("load project for verification failed", "project_id", projectID, "error", err)
		return 0
	}
	owner, err := s.users.FindByID(ctx, project.OwnerID)
	if err != nil {
		s.logger.Error("load project owner failed", "project_id", projectID, "error", err)
		return 0
	}

	checker := s.buildChecker(ctx, project)

	n := 0
	for _, u := range urls {
		if s.verifyOne(ctx, tierName, project, owner.Email, u, checker) {
			n++
		}
	}
	return n
}

func (s *VerificationScheduler) verifyOne(ctx context.Context, tierName string, project *domain.Project, ownerEmail string, u *domain.URL, checker *probes.Checker) bool {
	originalStatus := u.Status
	switch u.Status {
	case domain.URLStatusSubmitted:
		u.Status = domain.URLStatusIndexing
	case domain.URLStatusIndexing:
		u.Status = domain.URLStatusVerifying
	}
	statusPromoted := u.Status != originalStatus

	result := checker.Check(ctx, u.Text)
	now := time.Now()

	switch result.Indexed {
	case probes.VerdictYes:
		metrics.VerificationResultsTotal.WithLabelValues(tierName, "indexed").Inc()
		if err := s.urls.MarkIndexed(ctx, u.ID, result.Title, result.Snippet, now, result.Method); err != nil {
			s.logger.Error("mark indexed failed", "url_id", u.ID, "error", err)
			return false
		}
		s.notifier.NotifyIndexed(ctx, notify.IndexedEvent{URL: u, Project: project, OwnerEmail: ownerEmail})
		return true
	case probes.VerdictNo:
		metrics.VerificationResultsTotal.WithLabelValues(tierName, "not_indexed").Inc()
		if err := s.urls.MarkCheckedNotIndexed(ctx, u.ID, now, result.Method); err != nil {
			s.logger.Error("mark checked not indexed failed", "url_id", u.ID, "error", err)
			return false
		}
		if err := s.urls.SetVerifiedNotIndexed(ctx, u.ID, true); err != nil {
			s.logger.Error("set verified_not_indexed failed", "url_id", u.ID, "error", err)
		}
		return true
	default:
		metrics.VerificationResultsTotal.WithLabelValues(tierName, "unknown").Inc()
		if err := s.urls.RecordCheckAttempt(ctx, u.ID, now, result.Method); err != nil {
			s.logger.Error("record check attempt failed", "url_id", u.ID, "error", err)
		}
		// unknown: advance the status transition computed above (if any)
		// but leave verified_not_indexed untouched, per §4.6.
		if statusPromoted {
			if err := s.urls.UpdateStatus(ctx, u.ID, u.Status); err != nil {
				s.logger.Error("advance verification status failed", "url_id", u.ID, "error", err)
			}
		}
		return true
	}
}
