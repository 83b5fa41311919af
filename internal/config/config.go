// Package config provides configuration loading using koanf.
// Precedence: environment variables over compiled defaults. The shared
// secret itself may live in AWS; see internal/secrets.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/aelexs/tokenkit/internal/domain"
)

// Config holds all service configuration.
type Config struct {
	// Environment identifier: "local", "dev", "prod"
	Environment string `koanf:"environment"`

	// Logging configuration
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	Tokend TokendConfig `koanf:"tokend"`
	Token  TokenConfig  `koanf:"token"`

	AWS  AWSConfig  `koanf:"aws"`
	OTEL OTELConfig `koanf:"otel"`
}

// TokendConfig holds the token service listener configuration.
type TokendConfig struct {
	HTTPPort int `koanf:"http_port"`
	GRPCPort int `koanf:"grpc_port"`
}

// TokenConfig controls how bearer tokens are verified.
type TokenConfig struct {
	// Secret is the shared HMAC secret when SecretSource is "env".
	Secret domain.SecretString `koanf:"secret"`

	// SecretSource selects where the secret is loaded from.
	SecretSource domain.SecretSource `koanf:"secret_source"`

	// SecretID names the Secrets Manager secret or SSM parameter.
	SecretID string `koanf:"secret_id"`

	// ExpiryWindow is the default window for expiry checks.
	ExpiryWindow time.Duration `koanf:"expiry_window"`

	// Leeway is the clock skew tolerated on exp/nbf.
	Leeway time.Duration `koanf:"leeway"`
}

// AWSConfig holds AWS SDK configuration.
type AWSConfig struct {
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"` // LocalStack endpoint for development
}

// OTELConfig holds OpenTelemetry configuration.
type OTELConfig struct {
	Endpoint    string `koanf:"endpoint"` // Empty disables OTLP export
	ServiceName string `koanf:"service_name"`
}

// defaults returns a Config with compiled default values.
func defaults() *Config {
	return &Config{
		Environment: "local",
		LogLevel:    "info",
		LogFormat:   "json",

		Tokend: TokendConfig{
			HTTPPort: 8080,
			GRPCPort: 9090,
		},
		Token: TokenConfig{
			SecretSource: domain.SecretSourceEnv,
			ExpiryWindow: domain.DefaultExpiryWindow,
			Leeway:       domain.DefaultLeeway,
		},
		AWS: AWSConfig{
			Region: "us-east-1",
		},
	}
}

// Load loads configuration following the precedence:
// 1. Environment variables (highest)
// 2. Compiled defaults (lowest)
//
// Required keys missing → startup failure.
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	cfg := defaults()

	// Delimiter: the first _ maps to . for nested config, so TOKEN_SECRET_ID
	// becomes token.secret_id and LOG_LEVEL stays log_level.
	err := k.Load(env.Provider("", ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// nestedPrefixes are the top-level sections whose env vars nest one level.
var nestedPrefixes = []string{"tokend_", "token_", "aws_", "otel_"}

func envKey(s string) string {
	key := strings.ToLower(s)
	for _, p := range nestedPrefixes {
		if strings.HasPrefix(key, p) {
			return strings.TrimSuffix(p, "_") + "." + strings.TrimPrefix(key, p)
		}
	}
	return key
}

// validate checks that required configuration is present and coherent.
func validate(cfg *Config) error {
	if !domain.IsValidSecretSource(cfg.Token.SecretSource) {
		return fmt.Errorf("%w: token.secret_source %q", domain.ErrInvalidInput, cfg.Token.SecretSource)
	}
	if cfg.Token.ExpiryWindow < 0 || cfg.Token.ExpiryWindow > domain.MaxExpiryWindow {
		return fmt.Errorf("%w: token.expiry_window %s", domain.ErrInvalidInput, cfg.Token.ExpiryWindow)
	}
	if cfg.Token.Leeway < 0 {
		return fmt.Errorf("%w: token.leeway %s", domain.ErrInvalidInput, cfg.Token.Leeway)
	}

	// In local environment the secret may be supplied later (or generated).
	if cfg.IsLocal() {
		return nil
	}

	switch cfg.Token.SecretSource {
	case domain.SecretSourceEnv:
		if cfg.Token.Secret.IsEmpty() {
			return fmt.Errorf("%w: token.secret", domain.ErrConfigRequired)
		}
	default:
		if cfg.Token.SecretID == "" {
			return fmt.Errorf("%w: token.secret_id", domain.ErrConfigRequired)
		}
	}

	return nil
}

// IsLocal returns true if running in local development environment.
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}
