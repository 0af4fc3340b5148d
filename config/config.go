package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"required,oneof=debug info warn error"`

	JWTSecret     string `env:"JWT_SECRET,required" validate:"required"`
	ResendAPIKey  string `env:"RESEND_API_KEY"      validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom    string `env:"RESEND_FROM"         validate:"required_if=Env production,required_if=Env staging"`
	MagicLinkBase string `env:"MAGIC_LINK_BASE_URL" envDefault:"http://localhost:8080"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Worker process tuning (cmd/worker).
	WorkerPollIntervalSec int `env:"WORKER_POLL_INTERVAL_SEC" envDefault:"1" validate:"min=1,max=60"`
	WorkerBatchSize       int `env:"WORKER_BATCH_SIZE" envDefault:"50" validate:"min=1,max=1000"`
	DispatchIntervalSec   int `env:"DISPATCH_INTERVAL_SEC" envDefault:"5" validate:"min=1,max=300"`
	DispatchBatchSize     int `env:"DISPATCH_BATCH_SIZE" envDefault:"100" validate:"min=1,max=1000"`
	VerificationBatchSize int `env:"VERIFICATION_BATCH_SIZE" envDefault:"200" validate:"min=1,max=2000"`
	RefundBatchSize       int `env:"REFUND_BATCH_SIZE" envDefault:"200" validate:"min=1,max=2000"`

	// IndexNowAPIKey is the global fallback key used when a project hasn't
	// registered its own in domain.IndexNowConfig.
	IndexNowAPIKey string `env:"INDEXNOW_API_KEY"`

	// CustomSearch feeds the best-effort probe tier when no authoritative
	// Search Console credential applies to a project.
	CustomSearchAPIKey string `env:"CUSTOM_SEARCH_API_KEY"`
	CustomSearchCX     string `env:"CUSTOM_SEARCH_CX"`

	WebhookHMACSecret string `env:"WEBHOOK_HMAC_SECRET"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	SitemapMaxURLsPerImport int `env:"SITEMAP_MAX_URLS_PER_IMPORT" envDefault:"5000" validate:"min=1,max=50000"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SlogLevel converts the LOG_LEVEL string to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
