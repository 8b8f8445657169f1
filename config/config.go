package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	// Timezone reminders are evaluated in. Weekly slots are wall-clock times,
	// so this must be a fixed IANA zone, not an offset.
	Timezone string `env:"TIMEZONE" envDefault:"UTC" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret string `env:"JWT_SECRET,required" validate:"required,min=32"`

	PushGatewayURL     string  `env:"PUSH_GATEWAY_URL"     validate:"required_if=Env production,required_if=Env staging,omitempty,url"`
	PushAPIKey         string  `env:"PUSH_API_KEY"         validate:"required_if=Env production,required_if=Env staging"`
	PushTimeoutSec     int     `env:"PUSH_TIMEOUT_SEC"     envDefault:"10" validate:"min=1,max=120"`
	PushRatePerSec     float64 `env:"PUSH_RATE_PER_SEC"    envDefault:"20" validate:"gt=0"`
	PushBurst          int     `env:"PUSH_BURST"           envDefault:"40" validate:"min=1"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`

	ResyncCron         string `env:"RESYNC_CRON"           envDefault:"@hourly" validate:"required"`
	DeviceTokenTTLDays int    `env:"DEVICE_TOKEN_TTL_DAYS" envDefault:"90" validate:"min=1"`
}

func Load() (*Config, error) {
	// Missing .env is fine — staging/production inject real env vars.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

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
