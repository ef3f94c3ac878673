// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package main is the entry point for the Librarium server.
//
// Librarium is a self-hosted library circulation backend: a book
// catalog, borrower registry, loan lifecycle with due-date tracking,
// lexical search, and AI-oracle-backed recommendations and summaries.
//
// Startup order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, config.yaml,
//     environment variables)
//  2. Logging: zerolog, configured from LOG_LEVEL / LOG_FORMAT
//  3. Database: DuckDB catalog, borrower, and loan storage
//  4. Oracle: optional Gemini-style generation client behind a rate
//     limiter and circuit breaker (ORACLE_ENABLED=true)
//  5. Circulation engine, summary cache, HTTP router
//  6. Supervisor tree: maintenance services and the HTTP server under
//     suture supervision
//
// The server shuts down gracefully on SIGINT and SIGTERM: new
// connections stop, in-flight requests get the shutdown timeout to
// finish, then the database closes.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/librarium-app/librarium/internal/api"
	"github.com/librarium-app/librarium/internal/cache"
	"github.com/librarium-app/librarium/internal/circulation"
	"github.com/librarium-app/librarium/internal/config"
	"github.com/librarium-app/librarium/internal/database"
	"github.com/librarium-app/librarium/internal/logging"
	"github.com/librarium-app/librarium/internal/oracle"
	"github.com/librarium-app/librarium/internal/overdue"
	"github.com/librarium-app/librarium/internal/supervisor"
	"github.com/librarium-app/librarium/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Int("loan_period_days", cfg.Circulation.LoanPeriodDays).
		Bool("oracle_enabled", cfg.Oracle.Enabled).
		Msg("Starting Librarium")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedSampleData {
		if err := db.SeedSampleData(context.Background()); err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed sample data")
		}
	}

	ora := oracle.NewFromConfig(&cfg.Oracle)
	if ora.Enabled() {
		logging.Info().Str("model", cfg.Oracle.Model).Msg("Oracle integration enabled")
	} else {
		logging.Info().Msg("Oracle integration disabled, recommendation and summary endpoints will return 503")
	}

	engine := circulation.New(db, overdue.NewPolicy(cfg.Circulation.LoanPeriod()))
	summaries := cache.NewLRUCache("summary", cfg.API.SummaryCacheSize, cfg.API.SummaryCacheTTL)

	handler := api.NewHandler(db, engine, ora, summaries, cfg)
	router := api.NewRouter(handler, &api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.API.RateLimitReqs,
		RateLimitWindow:    cfg.API.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// sutureslog speaks slog; the adapter bridges it onto zerolog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	tree.AddMaintenanceService(services.NewCacheJanitorService(summaries, 10*time.Minute))
	tree.AddMaintenanceService(services.NewOverdueMonitorService(engine, 5*time.Minute))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added to supervisor tree")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor closes the channel.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Librarium stopped gracefully")
}
