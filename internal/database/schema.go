// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package database

import (
	"context"
	"fmt"
)

// schemaStatements creates the catalog, borrower, and loan tables.
// Entity ids come from sequences, matching the integer ids the rest of
// the system (and its clients) expect. Loan rows are append-only: the
// only UPDATE ever issued against loans is the single close-out on
// return.
var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS books_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS users_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS loans_id_seq START 1`,

	`CREATE TABLE IF NOT EXISTS books (
		id               BIGINT PRIMARY KEY DEFAULT nextval('books_id_seq'),
		title            VARCHAR NOT NULL,
		author           VARCHAR NOT NULL,
		isbn             VARCHAR NOT NULL UNIQUE,
		genre            VARCHAR,
		publication_year INTEGER,
		description      VARCHAR,
		available        BOOLEAN NOT NULL DEFAULT true,
		created_at       TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id         BIGINT PRIMARY KEY DEFAULT nextval('users_id_seq'),
		name       VARCHAR NOT NULL,
		email      VARCHAR NOT NULL UNIQUE,
		phone      VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,

	`CREATE TABLE IF NOT EXISTS loans (
		id          BIGINT PRIMARY KEY DEFAULT nextval('loans_id_seq'),
		book_id     BIGINT NOT NULL,
		user_id     BIGINT NOT NULL,
		borrow_date TIMESTAMP NOT NULL,
		return_date TIMESTAMP,
		returned    BOOLEAN NOT NULL DEFAULT false
	)`,
}

// initSchema creates all tables and sequences if they do not exist.
func (db *DB) initSchema(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
