package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/lock"
	"github.com/indexpulse/core/internal/methodadapter"
	"github.com/indexpulse/core/internal/metrics"
	"github.com/indexpulse/core/internal/queue"
	"github.com/indexpulse/core/internal/ratelimit"
	"github.com/indexpulse/core/internal/repository"
)

const (
	urlLockTTL       = 120 * time.Second
	rateLimitRequeue = 30 * time.Second
	lockRequeueDelay = 15 * time.Second
	maxLoggedBody    = 2048
)

// Worker runs the method queue's tick: pop a batch of eligible jobs,
// respect each method's rate limit and the per-URL advisory lock, run
// the adapter, and persist the outcome. Grounded on the teacher's poll-
// claim-execute worker loop, with the claim/heartbeat/retry machinery
// replaced by the queue's pop/requeue and the method's own backoff rule.
type Worker struct {
	id           string
	queue        queue.JobQueue
	limiter      ratelimit.Limiter
	locker       lock.Locker
	urls         repository.URLRepository
	logs         repository.IndexingLogRepository
	adapters     *methodadapter.Registry
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int
}

func NewWorker(
	jobQueue queue.JobQueue,
	limiter ratelimit.Limiter,
	locker lock.Locker,
	urls repository.URLRepository,
	logs repository.IndexingLogRepository,
	adapters *methodadapter.Registry,
	logger *slog.Logger,
	pollInterval time.Duration,
	batchSize int,
) *Worker {
	hostname, _ := os.Hostname()
	return &Worker{
		id:           fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		queue:        jobQueue,
		limiter:      limiter,
		locker:       locker,
		urls:         urls,
		logs:         logs,
		adapters:     adapters,
		logger:       logger.With("component", "method_worker"),
		pollInterval: pollInterval,
		batchSize:    batchSize,
	}
}

func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("method worker started", "worker_id", w.id, "poll_interval", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("method worker shut down", "worker_id", w.id)
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	jobs, err := w.queue.PopEligible(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("pop eligible failed", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(j domain.QueueJob) {
			defer wg.Done()
			w.runJob(ctx, j)
		}(job)
	}
	wg.Wait()
}

func (w *Worker) runJob(ctx context.Context, job domain.QueueJob) {
	maxCalls, window, rated := job.Method.RateLimit()
	if rated {
		allowed, err := w.limiter.Allow(ctx, string(job.Method), maxCalls, window)
		if err != nil {
			w.logger.Error("rate check failed", "method", job.Method, "error", err)
		} else if !allowed {
			w.requeue(ctx, job, rateLimitRequeue)
			return
		}
	}

	lockKey := "url:" + job.URLID
	acquired, err := w.locker.Acquire(ctx, lockKey, urlLockTTL)
	if err != nil {
		w.logger.Error("lock acquire failed", "url_id", job.URLID, "error", err)
	}
	if !acquired {
		w.requeue(ctx, job, lockRequeueDelay)
		return
	}
	defer func() {
		if err := w.locker.Release(ctx, lockKey); err != nil {
			w.logger.Error("lock release failed", "url_id", job.URLID, "error", err)
		}
	}()

	u, err := w.urls.GetByID(ctx, job.URLID)
	if err != nil {
		// The URL was deleted (or a stale job outlived it); dropping is
		// correct since there is nothing left to act on.
		if err != domain.ErrURLNotFound {
			w.logger.Error("load url failed", "url_id", job.URLID, "error", err)
		}
		return
	}
	if u.IsIndexed {
		return
	}

	adapter, ok := w.adapters.For(job.Method)
	if !ok {
		w.logger.Error("no adapter registered", "method", job.Method)
		return
	}

	metrics.MethodJobsInFlight.Inc()
	start := time.Now()
	outcome, submitErr := adapter.Submit(ctx, u.Text, job)
	duration := time.Since(start).Seconds()
	metrics.MethodJobsInFlight.Dec()

	status := "success"
	if submitErr != nil || !outcome.Success {
		status = "error"
	}
	metrics.MethodJobDuration.WithLabelValues(string(job.Method), status).Observe(duration)
	metrics.MethodJobsCompletedTotal.WithLabelValues(string(job.Method), status).Inc()

	w.recordAttempt(ctx, u, job, outcome, submitErr)

	if submitErr != nil || !outcome.Success {
		if job.Attempt < domain.MaxMethodAttempts-1 {
			delay := methodRetryDelay(job.Attempt)
			next := job
			next.Attempt++
			w.requeue(ctx, next, delay)
		}
		return
	}

	w.promote(ctx, u, job.Method)
}

func (w *Worker) recordAttempt(ctx context.Context, u *domain.URL, job domain.QueueJob, outcome methodadapter.Outcome, submitErr error) {
	status := domain.LogStatusSuccess
	lastStatus := "success"
	if submitErr != nil || !outcome.Success {
		status = domain.LogStatusError
		lastStatus = "error"
	}

	body := outcome.Body
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody]
	}

	logEntry := &domain.IndexingLog{
		URLRef:       u.ID,
		Method:       job.Method,
		Status:       status,
		ResponseCode: outcome.StatusCode,
		ResponseBody: body,
	}
	if err := w.logs.Create(ctx, logEntry); err != nil {
		w.logger.Error("write indexing log failed", "url_id", u.ID, "method", job.Method, "error", err)
	}

	if err := w.urls.RecordMethodAttempt(ctx, u.ID, job.Method, lastStatus); err != nil {
		w.logger.Error("record method attempt failed", "url_id", u.ID, "method", job.Method, "error", err)
	}
}

// promote advances a URL's status once a method succeeds: submitted ->
// indexing on any success, indexing -> verifying specifically once
// google_api (the one authoritative submission channel) succeeds.
func (w *Worker) promote(ctx context.Context, u *domain.URL, method domain.Method) {
	switch {
	case u.Status == domain.URLStatusSubmitted:
		if err := w.urls.UpdateStatus(ctx, u.ID, domain.URLStatusIndexing); err != nil {
			w.logger.Error("promote to indexing failed", "url_id", u.ID, "error", err)
		}
	case u.Status == domain.URLStatusIndexing && method == domain.MethodGoogleAPI:
		if err := w.urls.UpdateStatus(ctx, u.ID, domain.URLStatusVerifying); err != nil {
			w.logger.Error("promote to verifying failed", "url_id", u.ID, "error", err)
		}
	}
}

func (w *Worker) requeue(ctx context.Context, job domain.QueueJob, delay time.Duration) {
	if err := w.queue.Requeue(ctx, job, delay); err != nil {
		w.logger.Error("requeue failed", "url_id", job.URLID, "method", job.Method, "error", err)
	}
}

// methodRetryDelay is min(300s * 2^attempt, 1h) with +-25% jitter to
// avoid every failed URL of a burst retrying in lockstep.
func methodRetryDelay(attempt int) time.Duration {
	delay := time.Duration(float64(queue.BackoffBase) * math.Pow(2, float64(attempt)))
	delay = min(delay, time.Hour)
	jitter := time.Duration(rand.Int63n(int64(delay/2))) - delay/4
	return delay + jitter
}
