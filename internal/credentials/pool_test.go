package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeCredentialRepo struct {
	nextAvailable   func(ctx context.Context) (*domain.Credential, error)
	getByID         func(ctx context.Context, id string) (*domain.Credential, error)
	incrementUsage  func(ctx context.Context, id string) error
	setRateLimited  func(ctx context.Context, id string, limited bool) error
	disable         func(ctx context.Context, id string) error
	enable          func(ctx context.Context, id string) error
	list            func(ctx context.Context) ([]*domain.Credential, error)
	resetAllQuotas  func(ctx context.Context) error
}

func (r *fakeCredentialRepo) Create(context.Context, *domain.Credential) error { return nil }
func (r *fakeCredentialRepo) GetByID(ctx context.Context, id string) (*domain.Credential, error) {
	return r.getByID(ctx, id)
}
func (r *fakeCredentialRepo) List(ctx context.Context) ([]*domain.Credential, error) {
	return r.list(ctx)
}
func (r *fakeCredentialRepo) NextAvailable(ctx context.Context) (*domain.Credential, error) {
	return r.nextAvailable(ctx)
}
func (r *fakeCredentialRepo) IncrementUsage(ctx context.Context, id string) error {
	return r.incrementUsage(ctx, id)
}
func (r *fakeCredentialRepo) SetRateLimited(ctx context.Context, id string, limited bool) error {
	return r.setRateLimited(ctx, id, limited)
}
func (r *fakeCredentialRepo) Disable(ctx context.Context, id string) error {
	return r.disable(ctx, id)
}
func (r *fakeCredentialRepo) Enable(ctx context.Context, id string) error {
	return r.enable(ctx, id)
}
func (r *fakeCredentialRepo) ResetAllQuotas(ctx context.Context) error {
	return r.resetAllQuotas(ctx)
}

func TestAcquireUpdatesQuotaGauge(t *testing.T) {
	cred := &domain.Credential{ID: "cred-gauge-1", DailyQuota: 100, UsedToday: 10, IsActive: true}
	repo := &fakeCredentialRepo{
		nextAvailable:  func(context.Context) (*domain.Credential, error) { return cred, nil },
		incrementUsage: func(context.Context, string) error { return nil },
	}

	got, err := NewPool(repo).Acquire(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UsedToday != 11 {
		t.Errorf("UsedToday = %d, want 11", got.UsedToday)
	}

	gauge := testutil.ToFloat64(metrics.CredentialQuotaRemaining.WithLabelValues("cred-gauge-1"))
	if gauge != 89 {
		t.Errorf("gauge = %v, want 89", gauge)
	}
}

func TestAcquireIncrementUsageErrorPropagates(t *testing.T) {
	wantErr := errors.New("db down")
	cred := &domain.Credential{ID: "cred-2", DailyQuota: 10}
	repo := &fakeCredentialRepo{
		nextAvailable:  func(context.Context) (*domain.Credential, error) { return cred, nil },
		incrementUsage: func(context.Context, string) error { return wantErr },
	}

	_, err := NewPool(repo).Acquire(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("want wrapped %v, got %v", wantErr, err)
	}
}

func TestAcquireSpecificRejectsUnavailableCredential(t *testing.T) {
	cred := &domain.Credential{ID: "cred-3", DailyQuota: 10, UsedToday: 10, IsActive: true}
	repo := &fakeCredentialRepo{
		getByID: func(context.Context, string) (*domain.Credential, error) { return cred, nil },
	}

	_, err := NewPool(repo).AcquireSpecific(context.Background(), "cred-3")
	if !errors.Is(err, domain.ErrNoCredentialAvailable) {
		t.Errorf("want ErrNoCredentialAvailable, got %v", err)
	}
}

func TestAcquireSpecificUpdatesQuotaGauge(t *testing.T) {
	cred := &domain.Credential{ID: "cred-gauge-2", DailyQuota: 50, UsedToday: 0, IsActive: true}
	repo := &fakeCredentialRepo{
		getByID:        func(context.Context, string) (*domain.Credential, error) { return cred, nil },
		incrementUsage: func(context.Context, string) error { return nil },
	}

	if _, err := NewPool(repo).AcquireSpecific(context.Background(), "cred-gauge-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gauge := testutil.ToFloat64(metrics.CredentialQuotaRemaining.WithLabelValues("cred-gauge-2"))
	if gauge != 49 {
		t.Errorf("gauge = %v, want 49", gauge)
	}
}

func TestAcquireForProjectPrefersPinnedCredential(t *testing.T) {
	pinned := "cred-pinned"
	cred := &domain.Credential{ID: pinned, DailyQuota: 10, IsActive: true}
	repo := &fakeCredentialRepo{
		getByID:        func(_ context.Context, id string) (*domain.Credential, error) { return cred, nil },
		incrementUsage: func(context.Context, string) error { return nil },
		nextAvailable: func(context.Context) (*domain.Credential, error) {
			t.Fatal("should not fall back to the shared pool when a credential is pinned")
			return nil, nil
		},
	}

	got, err := NewPool(repo).AcquireForProject(context.Background(), &domain.Project{CredentialsRef: &pinned})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != pinned {
		t.Errorf("ID = %q, want %q", got.ID, pinned)
	}
}

func TestResetDailyQuotasUpdatesGaugeForEveryCredential(t *testing.T) {
	creds := []*domain.Credential{
		{ID: "cred-reset-1", DailyQuota: 100, UsedToday: 0},
		{ID: "cred-reset-2", DailyQuota: 200, UsedToday: 0},
	}
	repo := &fakeCredentialRepo{
		resetAllQuotas: func(context.Context) error { return nil },
		list:           func(context.Context) ([]*domain.Credential, error) { return creds, nil },
	}

	if err := NewPool(repo).ResetDailyQuotas(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g := testutil.ToFloat64(metrics.CredentialQuotaRemaining.WithLabelValues("cred-reset-1")); g != 100 {
		t.Errorf("cred-reset-1 gauge = %v, want 100", g)
	}
	if g := testutil.ToFloat64(metrics.CredentialQuotaRemaining.WithLabelValues("cred-reset-2")); g != 200 {
		t.Errorf("cred-reset-2 gauge = %v, want 200", g)
	}
}

func TestResetDailyQuotasPropagatesRepoError(t *testing.T) {
	wantErr := errors.New("db down")
	repo := &fakeCredentialRepo{
		resetAllQuotas: func(context.Context) error { return wantErr },
	}

	if err := NewPool(repo).ResetDailyQuotas(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("want %v, got %v", wantErr, err)
	}
}
