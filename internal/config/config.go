// Package config provides configuration loading and validation for the portal.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all runtime configuration. Values come from the environment;
// main loads a .env file first when one exists.
type Config struct {
	// Server
	Port        int
	DatabaseURL string

	// Trigger protection
	CronSecret string

	// Research provider
	ResearchAPIKey  string
	ResearchModel   string
	ResearchBaseURL string
	// ResearchTimeout bounds a single provider call. ResearchMaxWait is the
	// overall age after which the poll sweep abandons a run.
	ResearchTimeout  time.Duration
	ResearchMaxWait  time.Duration
	SweepConcurrency int

	// Synthesis
	GeminiAPIKey string
	GeminiModel  string

	// Optional Google Docs export
	GoogleCredentialsJSON string
	DriveParentFolderID   string
}

// FromEnv builds a Config from environment variables, applying defaults for
// everything optional.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:                  8080,
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		CronSecret:            os.Getenv("CRON_SECRET"),
		ResearchAPIKey:        os.Getenv("OPENAI_API_KEY"),
		ResearchModel:         os.Getenv("RESEARCH_MODEL"),
		ResearchBaseURL:       os.Getenv("RESEARCH_BASE_URL"),
		ResearchTimeout:       30 * time.Second,
		ResearchMaxWait:       45 * time.Minute,
		SweepConcurrency:      4,
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		GeminiModel:           os.Getenv("GEMINI_MODEL"),
		GoogleCredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		DriveParentFolderID:   os.Getenv("GOOGLE_DRIVE_PARENT_FOLDER_ID"),
	}

	if v := os.Getenv("PORT"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &cfg.Port); err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
	}
	if v := os.Getenv("RESEARCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RESEARCH_TIMEOUT %q: %w", v, err)
		}
		cfg.ResearchTimeout = d
	}
	if v := os.Getenv("RESEARCH_MAX_WAIT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RESEARCH_MAX_WAIT %q: %w", v, err)
		}
		cfg.ResearchMaxWait = d
	}
	if v := os.Getenv("SWEEP_CONCURRENCY"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &cfg.SweepConcurrency); err != nil {
			return nil, fmt.Errorf("invalid SWEEP_CONCURRENCY %q: %w", v, err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks that required configuration is present and values are sane.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.ResearchAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.CronSecret == "" {
		return fmt.Errorf("CRON_SECRET is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.SweepConcurrency <= 0 {
		return fmt.Errorf("sweep concurrency must be positive")
	}
	return nil
}

// ExportEnabled reports whether the optional Google Docs export is configured.
func (c *Config) ExportEnabled() bool {
	return c.GoogleCredentialsJSON != "" && c.DriveParentFolderID != ""
}
