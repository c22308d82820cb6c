package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envConfig is a DTO for environment overlays. Only set variables override
// the current values.
//
// Recognized variables:
//
//	PORTAL_API_BASE_URL
//	PORTAL_REQUEST_TIMEOUT  (e.g. "15s")
//	PORTAL_LOG_LEVEL
type envConfig struct {
	APIBaseURL     string        `envconfig:"API_BASE_URL"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT"`
	LogLevel       string        `envconfig:"LOG_LEVEL"`
}

func parseEnv(cfg *Config) {
	var ec envConfig
	if err := envconfig.Process("PORTAL", &ec); err != nil {
		panic(err)
	}

	if ec.APIBaseURL != "" {
		cfg.APIBaseURL = ec.APIBaseURL
	}
	if ec.RequestTimeout != 0 {
		cfg.RequestTimeout = ec.RequestTimeout
	}
	if ec.LogLevel != "" {
		cfg.LogLevel = ec.LogLevel
	}
}
