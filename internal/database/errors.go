// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package database

import (
	"database/sql"
	"errors"
	"io"

	"github.com/librarium-app/librarium/internal/logging"
)

// Sentinel errors for the store. Callers match with errors.Is; the API
// boundary maps them onto HTTP status codes.
var (
	// ErrNotFound indicates the referenced book, user, or loan does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates an isbn or email uniqueness violation.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrConflict indicates a deletion blocked by referencing loan records.
	ErrConflict = errors.New("conflicting loan records exist")

	// ErrAlreadyBorrowed indicates a borrow attempt on an unavailable book.
	ErrAlreadyBorrowed = errors.New("book is already borrowed")

	// ErrAlreadyReturned indicates a return attempt on a closed loan record.
	ErrAlreadyReturned = errors.New("loan record is already returned")
)

// closeQuietly closes a resource and explicitly ignores any error.
// For cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// rollbackWithLog rolls back a transaction and logs unexpected failures.
// sql.ErrTxDone is expected when the transaction already committed.
func rollbackWithLog(rollback func() error) {
	if err := rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logging.Warn().Err(err).Msg("Transaction rollback failed")
	}
}
