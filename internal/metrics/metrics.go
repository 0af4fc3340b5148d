package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/indexpulse/core/internal/health"
)

var (
	// Method queue worker metrics

	MethodJobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "indexpulse",
		Name:      "method_job_duration_seconds",
		Help:      "Duration of one method adapter call.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"method", "status"})

	MethodJobsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "indexpulse",
		Name:      "method_jobs_in_flight",
		Help:      "Number of method jobs currently being executed by the worker.",
	})

	MethodJobsCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexpulse",
		Name:      "method_jobs_completed_total",
		Help:      "Total method jobs finished, by method and outcome.",
	}, []string{"method", "outcome"})

	// Verification scheduler metrics

	VerificationSweepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "indexpulse",
		Name:      "verification_sweep_duration_seconds",
		Help:      "Time taken for one verification tier sweep.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tier"})

	VerificationResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexpulse",
		Name:      "verification_results_total",
		Help:      "Total URLs checked by the verification scheduler, by tier and verdict.",
	}, []string{"tier", "verdict"})

	// Refund sweeper metrics

	RefundsIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "indexpulse",
		Name:      "refunds_issued_total",
		Help:      "Total automatic refunds issued for URLs not indexed within the grace period.",
	})

	// Credential pool metrics

	CredentialQuotaRemaining = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexpulse",
		Name:      "credential_quota_remaining",
		Help:      "Remaining daily quota for a credential as of its last use.",
	}, []string{"credential_id"})

	// Worker process lifecycle

	WorkerStartTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "indexpulse",
		Name:      "worker_start_time_seconds",
		Help:      "Unix timestamp when the worker process started.",
	})

	WorkerShutdownsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "indexpulse",
		Name:      "worker_shutdowns_total",
		Help:      "Number of times the worker process has shut down.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "indexpulse",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexpulse",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		MethodJobDuration,
		MethodJobsInFlight,
		MethodJobsCompletedTotal,
		VerificationSweepDuration,
		VerificationResultsTotal,
		RefundsIssuedTotal,
		CredentialQuotaRemaining,
		WorkerStartTime,
		WorkerShutdownsTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer builds the metrics server. checker is optional: the worker
// process has no other HTTP surface, so it serves /healthz and /readyz
// here too; the API process exposes those on its main router instead
// and passes nil.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if checker != nil {
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			writeHealthJSON(w, checker.Liveness(r.Context()))
		})
		mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
			writeHealthJSON(w, checker.Readiness(r.Context()))
		})
	}
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealthJSON(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	status := http.StatusOK
	if result.Status != "up" {
		status = http.StatusServiceUnavailable
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
