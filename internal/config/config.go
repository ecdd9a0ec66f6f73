package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultJWTAccessTTL   = "24h"
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultMetaAPIBase    = "https://graph.facebook.com/v22.0"
	defaultMetaAPITimeout = "30s"
	defaultQueueWorkers   = "4"
	defaultQueueRetries   = "3"
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
)

// Config carries every runtime knob the binaries need. Values come from
// the environment with development-safe defaults; prod-like environments
// must override the secrets.
type Config struct {
	AppEnv      string
	DatabaseURL string

	JWTSecret    string
	JWTAccessTTL time.Duration

	MetaAPIBaseURL string
	MetaAPITimeout time.Duration

	StripeSecretKey string

	QueueWorkers    int
	QueueMaxRetries int

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", "adpilot.db"))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.MetaAPIBaseURL = strings.TrimSpace(getEnv("META_API_BASE_URL", defaultMetaAPIBase))
	cfg.StripeSecretKey = strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.LogFormat = strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat))

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}
	cfg.MetaAPITimeout, err = parseDurationEnv("META_API_TIMEOUT", defaultMetaAPITimeout)
	if err != nil {
		return nil, err
	}
	cfg.QueueWorkers, err = parseIntEnv("QUEUE_WORKERS", defaultQueueWorkers)
	if err != nil {
		return nil, err
	}
	cfg.QueueMaxRetries, err = parseIntEnv("QUEUE_MAX_RETRIES", defaultQueueRetries)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.MetaAPITimeout <= 0 {
		return fmt.Errorf("META_API_TIMEOUT must be > 0")
	}
	if cfg.QueueWorkers <= 0 {
		return fmt.Errorf("QUEUE_WORKERS must be > 0")
	}
	if cfg.QueueMaxRetries < 0 {
		return fmt.Errorf("QUEUE_MAX_RETRIES must be >= 0")
	}

	if IsProdLike(cfg.AppEnv) {
		if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if strings.HasPrefix(cfg.DatabaseURL, "postgres") == false {
			return fmt.Errorf("in prod/release DATABASE_URL must point at postgres")
		}
	}

	return nil
}

// IsProdLike reports whether the environment should run with release
// settings.
func IsProdLike(env string) bool {
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
