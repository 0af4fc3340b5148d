package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/indexpulse/core/config"
	"github.com/indexpulse/core/internal/credentials"
	"github.com/indexpulse/core/internal/domain"
	"github.com/indexpulse/core/internal/email"
	"github.com/indexpulse/core/internal/health"
	"github.com/indexpulse/core/internal/httpexec"
	"github.com/indexpulse/core/internal/infrastructure/postgres"
	redisinfra "github.com/indexpulse/core/internal/infrastructure/redis"
	ctxlog "github.com/indexpulse/core/internal/log"
	"github.com/indexpulse/core/internal/methodadapter"
	"github.com/indexpulse/core/internal/metrics"
	"github.com/indexpulse/core/internal/notify"
	"github.com/indexpulse/core/internal/probes"
	"github.com/indexpulse/core/internal/scheduler"
	"github.com/indexpulse/core/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisinfra.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		stop()
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()

	logger.Info("db and redis connected")

	httpClient := httpexec.NewClient()

	users := postgres.NewUserRepository(pool)
	projects := postgres.NewProjectRepository(pool)
	urls := postgres.NewURLRepository(pool)
	creds := postgres.NewCredentialRepository(pool)
	creditsRepo := postgres.NewCreditRepository(pool)
	logsRepo := postgres.NewIndexingLogRepository(pool)

	credPool := credentials.NewPool(creds)
	propertyCache := credentials.NewPropertyCache(10*time.Minute, 1000)
	builder := probes.NewBuilder(credPool, httpClient, propertyCache, cfg.CustomSearchAPIKey, cfg.CustomSearchCX)

	emailSender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	fanout := notify.NewFanout(logger,
		notify.NewWebhook(httpClient, []byte(cfg.WebhookHMACSecret)),
		notify.NewEmail(emailSender),
	)

	creditLedger := usecase.NewCreditLedger(creditsRepo, urls)
	jobQueue := redisinfra.NewQueue(redisClient)
	submissionDispatcher := usecase.NewSubmissionDispatcher(urls, projects, users, creditLedger, jobQueue, builder.Build, fanout, logger)

	registry := methodadapter.NewRegistry()
	registry.Register(domain.MethodIndexNow, methodadapter.NewBreakerAdapter("indexnow",
		methodadapter.NewIndexNow(httpClient, nil, cfg.IndexNowAPIKey, "")))
	registry.Register(domain.MethodPingomatic, methodadapter.NewBreakerAdapter("pingomatic",
		methodadapter.NewPingomatic(httpClient)))
	registry.Register(domain.MethodWebSub, methodadapter.NewBreakerAdapter("websub",
		methodadapter.NewWebSub(httpClient)))
	registry.Register(domain.MethodArchiveOrg, methodadapter.NewBreakerAdapter("archive_org",
		methodadapter.NewArchiveOrg(httpClient)))
	registry.Register(domain.MethodBacklink, methodadapter.NewBreakerAdapter("backlink",
		methodadapter.NewBacklink(httpClient, nil, cfg.IndexNowAPIKey)))
	registry.Register(domain.MethodGoogleAPI, methodadapter.NewBreakerAdapter("google_api",
		methodadapter.NewGoogleAPI(httpClient, credPool, projects)))

	limiter := redisinfra.NewLimiter(redisClient)
	locker := redisinfra.NewLocker(redisClient)

	methodWorker := scheduler.NewWorker(
		jobQueue, limiter, locker, urls, logsRepo, registry, logger,
		time.Duration(cfg.WorkerPollIntervalSec)*time.Second, cfg.WorkerBatchSize,
	)
	go methodWorker.Start(ctx)

	pendingDispatcher := scheduler.NewPendingDispatcher(
		submissionDispatcher, logger,
		time.Duration(cfg.DispatchIntervalSec)*time.Second, cfg.DispatchBatchSize,
	)
	go pendingDispatcher.Start(ctx)

	verificationTiers := scheduler.DefaultTiers
	for i := range verificationTiers {
		if verificationTiers[i].Limit > cfg.VerificationBatchSize {
			verificationTiers[i].Limit = cfg.VerificationBatchSize
		}
	}
	verificationScheduler := scheduler.NewVerificationScheduler(urls, projects, users, builder, fanout, logger)
	if err := verificationScheduler.Start(ctx, verificationTiers); err != nil {
		stop()
		log.Fatalf("verification scheduler: %v", err)
	}

	refundSweeper := scheduler.NewRefundSweeper(urls, creditLedger, projects, logger, cfg.RefundBatchSize)
	if err := refundSweeper.Start(ctx); err != nil {
		stop()
		log.Fatalf("refund sweeper: %v", err)
	}

	credentialReset := scheduler.NewCredentialResetScheduler(credPool, logger)
	if err := credentialReset.Start(ctx); err != nil {
		stop()
		log.Fatalf("credential reset scheduler: %v", err)
	}

	metrics.Register()
	metrics.WorkerStartTime.Set(float64(time.Now().Unix()))

	checker := health.NewChecker(map[string]health.Pinger{
		"postgres": pool,
		"redis":    health.PingerFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
	}, logger, prometheus.DefaultRegisterer)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	metrics.WorkerShutdownsTotal.Inc()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("worker shut down")
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
