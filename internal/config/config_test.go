// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 8085 {
		t.Errorf("expected default port 8085, got %d", cfg.Server.Port)
	}
	if cfg.Circulation.LoanPeriodDays != 14 {
		t.Errorf("expected default loan period 14 days, got %d", cfg.Circulation.LoanPeriodDays)
	}
	if cfg.Oracle.Enabled {
		t.Error("oracle must be disabled by default")
	}
	if cfg.Oracle.MaxCandidates != 20 {
		t.Errorf("expected default max candidates 20, got %d", cfg.Oracle.MaxCandidates)
	}
	if !cfg.Database.PreserveInsertionOrder {
		t.Error("insertion order preservation must default to true")
	}
	if cfg.Circulation.AllowHistoryPurge {
		t.Error("history purge must be opt-in")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestCirculationConfig_LoanPeriod(t *testing.T) {
	t.Parallel()

	c := CirculationConfig{LoanPeriodDays: 14}
	if got := c.LoanPeriod(); got != 14*24*time.Hour {
		t.Errorf("expected 336h loan period, got %s", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"zero timeout", func(c *Config) { c.Server.Timeout = 0 }, true},
		{"zero loan period", func(c *Config) { c.Circulation.LoanPeriodDays = 0 }, true},
		{"negative loan period", func(c *Config) { c.Circulation.LoanPeriodDays = -3 }, true},
		{"oracle enabled without key", func(c *Config) { c.Oracle.Enabled = true }, true},
		{
			"oracle enabled with key",
			func(c *Config) {
				c.Oracle.Enabled = true
				c.Oracle.APIKey = "test-key"
			},
			false,
		},
		{
			"oracle zero candidates",
			func(c *Config) {
				c.Oracle.Enabled = true
				c.Oracle.APIKey = "test-key"
				c.Oracle.MaxCandidates = 0
			},
			true,
		},
		{"zero rate limit", func(c *Config) { c.API.RateLimitReqs = 0 }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOAN_PERIOD_DAYS", "21")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090 from env, got %d", cfg.Server.Port)
	}
	if cfg.Circulation.LoanPeriodDays != 21 {
		t.Errorf("expected loan period 21 from env, got %d", cfg.Circulation.LoanPeriodDays)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != "https://a.example" {
		t.Errorf("expected split CORS origins, got %v", cfg.Server.CORSOrigins)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Logging.Level)
	}
}

func TestEnvTransformFunc_DropsUnknown(t *testing.T) {
	t.Parallel()

	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("unmapped env var must be dropped, got %q", got)
	}
	if got := envTransformFunc("ORACLE_API_KEY"); got != "oracle.api_key" {
		t.Errorf("expected oracle.api_key, got %q", got)
	}
}
