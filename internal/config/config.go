// Package config provides centralized configuration for the newsroom
// client: defaults, an optional YAML file, and NEWSROOM_* environment
// overrides, merged in that order.
package config

import "time"

// Mode selects development or production behavior.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// Config is the complete application configuration.
type Config struct {
	// API is the CMS endpoint the client talks to.
	API APIConfig `mapstructure:"api"`

	// Mode: development or production. Development loads .env and enables
	// fallback data by default.
	Mode string `mapstructure:"mode"`

	Features FeatureConfig `mapstructure:"features"`
	Logging  LoggingConfig `mapstructure:"logging"`

	// SessionFile is where the file-backed session store lives. Empty means
	// in-memory only.
	SessionFile string `mapstructure:"session_file"`
}

// APIConfig tunes the HTTP facade.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay  time.Duration `mapstructure:"retry_max_delay"`

	RateLimitWindow  time.Duration `mapstructure:"rate_limit_window"`
	RateLimitCeiling int           `mapstructure:"rate_limit_ceiling"`

	RefreshThreshold time.Duration `mapstructure:"refresh_threshold"`
}

// FeatureConfig holds the feature flags.
type FeatureConfig struct {
	FallbackEnabled       bool `mapstructure:"fallback_enabled"`
	ErrorReportingEnabled bool `mapstructure:"error_reporting_enabled"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	// Level: trace, debug, info, warn, error.
	Level string `mapstructure:"level"`
}

// IsDevelopment reports whether the client runs in a development-like mode.
func (c *Config) IsDevelopment() bool {
	return c.Mode != ModeProduction
}
