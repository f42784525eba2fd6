// Package config loads the bridge's runtime configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// Config holds all bridge configuration options
type Config struct {
	Environment    string        `env:"ICONSWITCH_ENV" envDefault:"production"`
	LogLevel       string        `env:"ICONSWITCH_LOG_LEVEL" envDefault:"info"`
	ManifestPath   string        `env:"ICONSWITCH_MANIFEST" envDefault:"icons.yaml"`
	ListenAddr     string        `env:"ICONSWITCH_LISTEN_ADDR" envDefault:"127.0.0.1:7355"`
	HostURL        string        `env:"ICONSWITCH_HOST_URL" envDefault:"ws://127.0.0.1:7355/bridge"`
	RequestTimeout time.Duration `env:"ICONSWITCH_REQUEST_TIMEOUT" envDefault:"0s"`
	AppID          string        `env:"ICONSWITCH_APP_ID" envDefault:"iconswitch"`
	DesktopFile    string        `env:"ICONSWITCH_DESKTOP_FILE"`
	Simulate       bool          `env:"ICONSWITCH_SIMULATE" envDefault:"false"`
}

// Load parses the environment and applies per-environment adjustments
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.applyEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvironment lets development and test runs log more and use the
// simulated host unless told otherwise
func (c *Config) applyEnvironment() {
	switch c.Environment {
	case EnvDevelopment:
		if c.LogLevel == "info" {
			c.LogLevel = "debug"
		}
	case EnvTest:
		c.Simulate = true
	}
}

// Validate checks the configuration for obviously broken values
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvProduction, EnvDevelopment, EnvTest:
	default:
		return fmt.Errorf("invalid environment %q", c.Environment)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if !strings.HasPrefix(c.HostURL, "ws://") && !strings.HasPrefix(c.HostURL, "wss://") {
		return fmt.Errorf("host URL %q must use ws:// or wss://", c.HostURL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %v", c.RequestTimeout)
	}
	if strings.TrimSpace(c.AppID) == "" {
		return fmt.Errorf("app id must not be empty")
	}
	return nil
}
