// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/librarium/config.yaml",
	"/etc/librarium/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8085,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Path:                   "/data/librarium.duckdb",
			MaxMemory:              "1GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
			SeedSampleData:         false,
		},
		Circulation: CirculationConfig{
			LoanPeriodDays:    14,
			AllowHistoryPurge: false,
		},
		Oracle: OracleConfig{
			Enabled:           false, // Opt-in: requires an API key
			APIKey:            "",
			BaseURL:           "https://generativelanguage.googleapis.com/v1beta",
			Model:             "gemini-2.5-flash",
			Timeout:           20 * time.Second,
			RequestsPerMinute: 30,
			MaxCandidates:     20,
		},
		API: APIConfig{
			RateLimitReqs:    100,
			RateLimitWindow:  time.Minute,
			SummaryCacheSize: 512,
			SummaryCacheTTL:  time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
// defaults, then an optional YAML file, then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when they arrive from environment variables.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings, but the config expects
// slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		// Already a slice (from YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envMappings maps flat environment variable names to koanf config paths.
var envMappings = map[string]string{
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":     "server.cors_origins",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_sample_data":  "database.seed_sample_data",

	"loan_period_days":    "circulation.loan_period_days",
	"allow_history_purge": "circulation.allow_history_purge",

	"oracle_enabled":             "oracle.enabled",
	"oracle_api_key":             "oracle.api_key",
	"oracle_base_url":            "oracle.base_url",
	"oracle_model":               "oracle.model",
	"oracle_timeout":             "oracle.timeout",
	"oracle_requests_per_minute": "oracle.requests_per_minute",
	"oracle_max_candidates":      "oracle.max_candidates",

	"rate_limit_reqs":    "api.rate_limit_reqs",
	"rate_limit_window":  "api.rate_limit_window",
	"summary_cache_size": "api.summary_cache_size",
	"summary_cache_ttl":  "api.summary_cache_ttl",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config
// paths, e.g. LOAN_PERIOD_DAYS -> circulation.loan_period_days. Variables
// without a mapping are dropped so unrelated environment noise cannot
// leak into the configuration.
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
