// Package config loads the bridge configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/KirkDiggler/dice-bridge/internal/errors"
)

// EnvironmentProduction switches logging to JSON
const EnvironmentProduction = "production"

// Config is the process configuration
type Config struct {
	Environment string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	RollingAPIURL     string        `env:"ROLLING_API_URL" envDefault:"https://dddice.com/api/1.0"`
	RollingAPITimeout time.Duration `env:"ROLLING_API_TIMEOUT" envDefault:"30s"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	GRPCPort int    `env:"GRPC_PORT" envDefault:"50051"`

	PollInterval        time.Duration `env:"POLL_INTERVAL" envDefault:"1s"`
	EngineReadyInterval time.Duration `env:"ENGINE_READY_INTERVAL" envDefault:"250ms"`
	EngineReadyAttempts int           `env:"ENGINE_READY_ATTEMPTS" envDefault:"40"`
	EngineInitAttempts  int           `env:"ENGINE_INIT_ATTEMPTS" envDefault:"5"`

	// OTelEndpoint is an OTLP/HTTP traces URL; empty disables tracing
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load reads an optional .env file, then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}
	return Parse()
}

// Parse reads the configuration from the environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// Validate checks ranges the env tags cannot express
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.RedisAddr == "" {
		vb.RequiredField("REDIS_ADDR")
	}
	if c.RollingAPIURL == "" {
		vb.RequiredField("ROLLING_API_URL")
	}
	if c.HTTPAddr == "" {
		vb.RequiredField("HTTP_ADDR")
	}
	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		vb.InvalidField("GRPC_PORT", "must be between 1 and 65535")
	}
	errors.ValidatePositive("ENGINE_READY_ATTEMPTS", int64(c.EngineReadyAttempts), vb)
	errors.ValidatePositive("ENGINE_INIT_ATTEMPTS", int64(c.EngineInitAttempts), vb)
	errors.ValidatePositive("POLL_INTERVAL", int64(c.PollInterval), vb)
	errors.ValidatePositive("ENGINE_READY_INTERVAL", int64(c.EngineReadyInterval), vb)
	errors.ValidatePositive("ROLLING_API_TIMEOUT", int64(c.RollingAPITimeout), vb)
	return vb.Build()
}

// IsProduction reports whether the production environment is selected
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}
