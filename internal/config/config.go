// Package config holds the environment-driven tool configuration. The
// per-plugin settings live in the YAML manifest; this covers everything
// that varies per machine or CI run.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is populated from PLUGPACK_* environment variables
type Config struct {
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"5m"`
	GitHubToken  string        `envconfig:"GITHUB_TOKEN"`
	CustomizeBin string        `envconfig:"CALIBRE_CUSTOMIZE"`
	DebugBin     string        `envconfig:"CALIBRE_DEBUG"`
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	// A missing .env is fine; explicit environment always wins
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("plugpack", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Fall back to the conventional token variables used by CI
	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GH_TOKEN")
	}

	return &cfg, nil
}
