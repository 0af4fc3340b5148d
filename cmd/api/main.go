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
	"github.com/indexpulse/core/internal/email"
	"github.com/indexpulse/core/internal/health"
	"github.com/indexpulse/core/internal/httpexec"
	"github.com/indexpulse/core/internal/infrastructure/postgres"
	redisinfra "github.com/indexpulse/core/internal/infrastructure/redis"
	ctxlog "github.com/indexpulse/core/internal/log"
	"github.com/indexpulse/core/internal/metrics"
	"github.com/indexpulse/core/internal/notify"
	"github.com/indexpulse/core/internal/probes"
	"github.com/indexpulse/core/internal/sitemap"
	httptransport "github.com/indexpulse/core/internal/transport/http"
	"github.com/indexpulse/core/internal/transport/http/handler"
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
	authUsecase := usecase.NewAuthUsecase(users, emailSender, []byte(cfg.JWTSecret), cfg.MagicLinkBase)
	projectUsecase := usecase.NewProjectUsecase(projects)
	urlUsecase := usecase.NewURLUsecase(urls, projects, logsRepo)
	credentialUsecase := usecase.NewCredentialUsecase(creds, credPool)

	jobQueue := redisinfra.NewQueue(redisClient)
	dispatcher := usecase.NewSubmissionDispatcher(urls, projects, users, creditLedger, jobQueue, builder.Build, fanout, logger)

	sitemapFetcher := sitemap.NewFetcher(httpClient, cfg.SitemapMaxURLsPerImport)
	sitemapImporter := usecase.NewSitemapImporter(sitemapFetcher, dispatcher, projects)

	metrics.Register()
	checker := health.NewChecker(map[string]health.Pinger{
		"postgres": pool,
		"redis":    health.PingerFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
	}, logger, prometheus.DefaultRegisterer)

	handlers := httptransport.Handlers{
		Auth:       handler.NewAuthHandler(authUsecase, logger),
		Project:    handler.NewProjectHandler(projectUsecase, logger),
		URL:        handler.NewURLHandler(urlUsecase, dispatcher, logger),
		Credit:     handler.NewCreditHandler(creditLedger, logger),
		Credential: handler.NewCredentialHandler(credentialUsecase, logger),
		Stripe:     handler.NewStripeHandler(creditLedger, cfg.StripeWebhookSecret, logger),
		Sitemap:    handler.NewSitemapHandler(sitemapImporter, logger),
	}

	router := httptransport.NewRouter(handlers, users, checker, []byte(cfg.JWTSecret), cfg.CORSOrigins, logger)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, nil)

	go func() {
		logger.Info("api server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
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
