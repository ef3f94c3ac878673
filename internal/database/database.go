// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package database provides the DuckDB-backed store for Librarium: the
// book catalog, the borrower registry, the append-only loan history, and
// the derived dashboard counters.
//
// The store deliberately exposes composite borrow/return operations as
// single transactions; the circulation engine adds per-book mutual
// exclusion on top so that the pair (book availability, loan record)
// always changes atomically from every observer's point of view.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/librarium-app/librarium/internal/config"
	"github.com/librarium-app/librarium/internal/logging"
	"github.com/librarium-app/librarium/internal/metrics"
)

// defaultQueryTimeout bounds store operations that receive a context
// without a deadline.
const defaultQueryTimeout = 30 * time.Second

// DB wraps the DuckDB connection and provides data access methods.
// All methods are safe for concurrent use.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New creates a new database connection and initializes the schema.
// An empty cfg.Path opens an in-memory database (used by tests).
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for a file-backed database.
	// 0750 per gosec G301.
	if cfg.Path != "" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	// preserve_insertion_order keeps unordered SELECTs in insertion order,
	// which the catalog and loan listings depend on.
	preserveOrder := "true"
	if !cfg.PreserveInsertionOrder {
		preserveOrder = "false"
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=%s",
		cfg.Path, numThreads, maxMemory, preserveOrder)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}

	if err := db.configureConnectionPool(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	if err := db.initSchema(context.Background()); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Msg("Database initialized")

	return db, nil
}

// configureConnectionPool applies pool limits tuned for an embedded
// database: DuckDB handles its own parallelism, so a small pool of Go
// connections suffices.
func (db *DB) configureConnectionPool() error {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
	return nil
}

// Conn exposes the underlying connection for health checks.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// ensureContext attaches the default query timeout when the caller's
// context has no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// observe records query metrics for the given operation and table.
func observe(operation, table string, start time.Time, err error) {
	metrics.DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}
