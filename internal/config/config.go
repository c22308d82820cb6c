// Package config assembles the portal client's runtime settings from
// defaults, environment variables, an optional JSON file, and command-line
// flags, in that order, with later sources taking precedence.
package config

import "time"

// Config holds runtime settings for the portal CLI.
//
// Fields:
//   - APIBaseURL: base URL of the identity backend's REST API.
//   - RequestTimeout: per-request HTTP timeout.
//   - LogLevel: minimum log level (debug, info, warn, error).
//   - VerifyUsername / VerifyToken: one-shot email verification parameters
//     passed on launch, consumed once at startup and never persisted.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	LogLevel       string
	VerifyUsername string
	VerifyToken    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000/api"
	c.RequestTimeout = 15 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, JSON (if present), and command-line flags (if
// present). Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
