package scheduler

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/metrics"
	"github.com/indexpulse/core/internal/notify"
	"github.com/indexpulse/core/internal/probes"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fixedVerdictProbe struct {
	result probes.Result
}

func (p fixedVerdictProbe) Check(context.Context, string) (probes.Result, error) {
	return p.result, nil
}

type fakeVerificationURLRepo struct {
	claimForVerification     func(ctx context.Context, minAge, maxAge time.Duration, limit int) ([]*domain.URL, error)
	markIndexedCalls         int
	markCheckedCalls         int
	setVerifiedNotIndexed    int
	updateStatusCalls        int
	recordCheckAttemptCalls  int
}

func (r *fakeVerificationURLRepo) Create(context.Context, *domain.URL) error           { return nil }
func (r *fakeVerificationURLRepo) GetByID(context.Context, string) (*domain.URL, error) { return nil, nil }
func (r *fakeVerificationURLRepo) ListByProject(context.Context, string, int, string) ([]*domain.URL, string, error) {
	return nil, "", nil
}
func (r *fakeVerificationURLRepo) UpdateStatus(context.Context, string, domain.URLStatus) error {
	r.updateStatusCalls++
	return nil
}
func (r *fakeVerificationURLRepo) MarkSubmitted(context.Context, string, time.Time) error { return nil }
func (r *fakeVerificationURLRepo) SetPreIndexed(context.Context, string, bool) error       { return nil }
func (r *fakeVerificationURLRepo) RecordMethodAttempt(context.Context, string, domain.Method, string) error {
	return nil
}
func (r *fakeVerificationURLRepo) MarkIndexed(context.Context, string, string, string, time.Time, string) error {
	r.markIndexedCalls++
	return nil
}
func (r *fakeVerificationURLRepo) MarkCheckedNotIndexed(context.Context, string, time.Time, string) error {
	r.markCheckedCalls++
	return nil
}
func (r *fakeVerificationURLRepo) RecordCheckAttempt(context.Context, string, time.Time, string) error {
	r.recordCheckAttemptCalls++
	return nil
}
func (r *fakeVerificationURLRepo) SetCreditDebited(context.Context, string, bool) error   { return nil }
func (r *fakeVerificationURLRepo) SetCreditRefunded(context.Context, string, bool) error  { return nil }
func (r *fakeVerificationURLRepo) SetVerifiedNotIndexed(context.Context, string, bool) error {
	r.setVerifiedNotIndexed++
	return nil
}
func (r *fakeVerificationURLRepo) ClaimPendingBatch(context.Context, int) ([]*domain.URL, error) {
	return nil, nil
}
func (r *fakeVerificationURLRepo) ClaimForVerification(ctx context.Context, minAge, maxAge time.Duration, limit int) ([]*domain.URL, error) {
	return r.claimForVerification(ctx, minAge, maxAge, limit)
}
func (r *fakeVerificationURLRepo) ClaimForRefundSweep(context.Context, time.Duration, int) ([]*domain.URL, error) {
	return nil, nil
}

type fakeVerificationProjectRepo struct {
	project *domain.Project
}

func (r *fakeVerificationProjectRepo) Create(context.Context, *domain.Project) error { return nil }
func (r *fakeVerificationProjectRepo) GetByID(context.Context, string) (*domain.Project, error) {
	return r.project, nil
}
func (r *fakeVerificationProjectRepo) ListByOwner(context.Context, string, int, string) ([]*domain.Project, string, error) {
	return nil, "", nil
}
func (r *fakeVerificationProjectRepo) Update(context.Context, *domain.Project) error { return nil }

type fakeVerificationUserRepo struct {
	owner *domain.User
}

func (r *fakeVerificationUserRepo) FindOrCreate(context.Context, string) (*domain.User, error) {
	return r.owner, nil
}
func (r *fakeVerificationUserRepo) FindByID(context.Context, string) (*domain.User, error) {
	return r.owner, nil
}
func (r *fakeVerificationUserRepo) CreateMagicToken(context.Context, string, string, time.Time) error {
	return nil
}
func (r *fakeVerificationUserRepo) ClaimMagicToken(context.Context, string) (*domain.MagicToken, error) {
	return nil, nil
}
func (r *fakeVerificationUserRepo) Upsert(context.Context, string) error { return nil }

func newTestVerificationScheduler(t *testing.T, urls *fakeVerificationURLRepo, checkerResult probes.Result) *VerificationScheduler {
	t.Helper()
	project := &domain.Project{ID: "project-1", OwnerID: "user-1", MainDomain: "https://example.com"}
	owner := &domain.User{ID: "user-1", Email: "owner@example.com"}

	s := &VerificationScheduler{
		urls:     urls,
		projects: &fakeVerificationProjectRepo{project: project},
		users:    &fakeVerificationUserRepo{owner: owner},
		buildChecker: func(context.Context, *domain.Project) *probes.Checker {
			return probes.NewChecker(fixedVerdictProbe{result: checkerResult})
		},
		notifier: notify.NewFanout(slog.New(slog.NewTextHandler(os.Stderr, nil))),
		logger:   slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
	return s
}

func TestSweepTierMarksIndexedURLsAndIncrementsMetric(t *testing.T) {
	candidate := &domain.URL{ID: "url-1", ProjectRef: "project-1", Status: domain.URLStatusSubmitted}
	urls := &fakeVerificationURLRepo{
		claimForVerification: func(context.Context, time.Duration, time.Duration, int) ([]*domain.URL, error) {
			return []*domain.URL{candidate}, nil
		},
	}
	s := newTestVerificationScheduler(t, urls, probes.Result{Indexed: probes.VerdictYes, Method: "google_api"})

	before := testutil.ToFloat64(metrics.VerificationResultsTotal.WithLabelValues("fresh", "indexed"))
	s.sweepTier(context.Background(), DefaultTiers[0])
	after := testutil.ToFloat64(metrics.VerificationResultsTotal.WithLabelValues("fresh", "indexed"))

	if after != before+1 {
		t.Errorf("indexed counter = %v, want %v", after, before+1)
	}
	if urls.markIndexedCalls != 1 {
		t.Errorf("MarkIndexed calls = %d, want 1", urls.markIndexedCalls)
	}
}

func TestSweepTierMarksNotIndexedURLsAndIncrementsMetric(t *testing.T) {
	candidate := &domain.URL{ID: "url-2", ProjectRef: "project-1", Status: domain.URLStatusIndexing}
	urls := &fakeVerificationURLRepo{
		claimForVerification: func(context.Context, time.Duration, time.Duration, int) ([]*domain.URL, error) {
			return []*domain.URL{candidate}, nil
		},
	}
	s := newTestVerificationScheduler(t, urls, probes.Result{Indexed: probes.VerdictNo, Method: "custom_search"})

	before := testutil.ToFloat64(metrics.VerificationResultsTotal.WithLabelValues("fresh", "not_indexed"))
	s.sweepTier(context.Background(), DefaultTiers[0])
	after := testutil.ToFloat64(metrics.VerificationResultsTotal.WithLabelValues("fresh", "not_indexed"))

	if after != before+1 {
		t.Errorf("not_indexed counter = %v, want %v", after, before+1)
	}
	if urls.markCheckedCalls != 1 || urls.setVerifiedNotIndexed != 1 {
		t.Errorf("MarkCheckedNotIndexed/SetVerifiedNotIndexed calls = %d/%d, want 1/1", urls.markCheckedCalls, urls.setVerifiedNotIndexed)
	}
}

func TestSweepTierUnknownVerdictAdvancesStatusOnly(t *testing.T) {
	candidate := &domain.URL{ID: "url-3", ProjectRef: "project-1", Status: domain.URLStatusSubmitted}
	urls := &fakeVerificationURLRepo{
		claimForVerification: func(context.Context, time.Duration, time.Duration, int) ([]*domain.URL, error) {
			return []*domain.URL{candidate}, nil
		},
	}
	s := newTestVerificationScheduler(t, urls, probes.Result{Indexed: probes.VerdictUnknown, Method: "fallback"})

	before := testutil.ToFloat64(metrics.VerificationResultsTotal.WithLabelValues("fresh", "unknown"))
	s.sweepTier(context.Background(), DefaultTiers[0])
	after := testutil.ToFloat64(metrics.VerificationResultsTotal.WithLabelValues("fresh", "unknown"))

	if after != before+1 {
		t.Errorf("unknown counter = %v, want %v", after, before+1)
	}
	if urls.updateStatusCalls != 1 {
		t.Errorf("UpdateStatus calls = %d, want 1 (status promoted submitted->indexing)", urls.updateStatusCalls)
	}
	if urls.recordCheckAttemptCalls != 1 {
		t.Errorf("RecordCheckAttempt calls = %d, want 1 (last_checked_at/check_count must advance even on unknown)", urls.recordCheckAttemptCalls)
	}
	if urls.markIndexedCalls != 0 || urls.markCheckedCalls != 0 {
		t.Error("unknown verdict must not touch is_indexed/verified_not_indexed")
	}
}

func TestSweepTierObservesDurationHistogram(t *testing.T) {
	urls := &fakeVerificationURLRepo{
		claimForVerification: func(context.Context, time.Duration, time.Duration, int) ([]*domain.URL, error) {
			return nil, nil
		},
	}
	s := newTestVerificationScheduler(t, urls, probes.Result{})

	before := testutil.CollectAndCount(metrics.VerificationSweepDuration)
	s.sweepTier(context.Background(), DefaultTiers[0])
	after := testutil.CollectAndCount(metrics.VerificationSweepDuration)

	if after < before {
		t.Errorf("expected sweep duration to be observed, before=%d after=%d", before, after)
	}
}
