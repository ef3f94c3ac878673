// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package config provides centralized configuration for all Librarium
// components, loaded via Koanf v2 with layered sources (highest wins):
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml)
//  3. Environment variables
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Circulation CirculationConfig `koanf:"circulation"`
	Oracle      OracleConfig      `koanf:"oracle"`
	API         APIConfig         `koanf:"api"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment variables:
//   - HTTP_HOST: bind address (default: 0.0.0.0)
//   - HTTP_PORT: listen port (default: 8085)
//   - HTTP_TIMEOUT: read/write timeout (default: 30s)
//   - CORS_ORIGINS: comma-separated allowed origins (default: *)
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DatabaseConfig holds DuckDB settings.
//
// Environment variables:
//   - DUCKDB_PATH: database file path; empty string opens an in-memory
//     database (default: /data/librarium.duckdb)
//   - DUCKDB_MAX_MEMORY: memory limit (default: 1GB)
//   - DUCKDB_THREADS: worker threads, 0 = runtime.NumCPU() (default: 0)
//   - SEED_SAMPLE_DATA: load the sample catalog on an empty database
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`

	// PreserveInsertionOrder keeps list results in insertion order, which
	// the catalog and loan listings rely on.
	PreserveInsertionOrder bool `koanf:"preserve_insertion_order"`

	SeedSampleData bool `koanf:"seed_sample_data"`
}

// CirculationConfig holds loan policy settings.
//
// Environment variables:
//   - LOAN_PERIOD_DAYS: days until a loan is due (default: 14)
//   - ALLOW_HISTORY_PURGE: permit administrative cascade deletion of
//     returned loan history when deleting a book or user (default: false)
type CirculationConfig struct {
	// LoanPeriodDays is the single source of truth for due-date
	// computation; every overdue report derives from it.
	LoanPeriodDays int `koanf:"loan_period_days"`

	AllowHistoryPurge bool `koanf:"allow_history_purge"`
}

// LoanPeriod returns the loan period as a duration.
func (c CirculationConfig) LoanPeriod() time.Duration {
	return time.Duration(c.LoanPeriodDays) * 24 * time.Hour
}

// OracleConfig holds settings for the external AI scoring/generation
// collaborator (a Gemini-style generative language API).
//
// Environment variables:
//   - ORACLE_ENABLED: enable the oracle integration (default: false)
//   - ORACLE_API_KEY: API key for the hosted model
//   - ORACLE_BASE_URL: API base URL
//   - ORACLE_MODEL: model identifier (default: gemini-2.5-flash)
//   - ORACLE_TIMEOUT: per-request timeout (default: 20s)
//   - ORACLE_REQUESTS_PER_MINUTE: client-side pacing (default: 30)
//   - ORACLE_MAX_CANDIDATES: catalog snapshot cap sent with a
//     recommendation request (default: 20)
type OracleConfig struct {
	Enabled           bool          `koanf:"enabled"`
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url"`
	Model             string        `koanf:"model"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerMinute int           `koanf:"requests_per_minute"`
	MaxCandidates     int           `koanf:"max_candidates"`
}

// APIConfig holds API behavior settings.
//
// Environment variables:
//   - RATE_LIMIT_REQS: requests per window per client IP (default: 100)
//   - RATE_LIMIT_WINDOW: rate limit window (default: 1m)
//   - SUMMARY_CACHE_SIZE: max cached generated summaries (default: 512)
//   - SUMMARY_CACHE_TTL: generated summary cache TTL (default: 1h)
type APIConfig struct {
	RateLimitReqs    int           `koanf:"rate_limit_reqs"`
	RateLimitWindow  time.Duration `koanf:"rate_limit_window"`
	SummaryCacheSize int           `koanf:"summary_cache_size"`
	SummaryCacheTTL  time.Duration `koanf:"summary_cache_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid values. It is called by
// Load(); call it directly only when constructing a Config by hand.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Circulation.LoanPeriodDays <= 0 {
		return fmt.Errorf("circulation.loan_period_days must be positive, got %d", c.Circulation.LoanPeriodDays)
	}
	if c.Oracle.Enabled {
		if c.Oracle.APIKey == "" {
			return fmt.Errorf("oracle.api_key is required when oracle.enabled is true")
		}
		if c.Oracle.Timeout <= 0 {
			return fmt.Errorf("oracle.timeout must be positive, got %s", c.Oracle.Timeout)
		}
		if c.Oracle.MaxCandidates <= 0 {
			return fmt.Errorf("oracle.max_candidates must be positive, got %d", c.Oracle.MaxCandidates)
		}
	}
	if c.API.RateLimitReqs <= 0 {
		return fmt.Errorf("api.rate_limit_reqs must be positive, got %d", c.API.RateLimitReqs)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
