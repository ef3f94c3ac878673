// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/librarium-app/librarium/internal/models"
)

// GetStats recomputes the dashboard counters from current store state.
// Nothing is cached or incrementally maintained; the counters therefore
// always satisfy total = available + borrowed and
// active_borrows = borrowed_books (one copy per title).
func (db *DB) GetStats(ctx context.Context) (*models.Stats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	var s models.Stats
	row := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM books),
			(SELECT count(*) FROM books WHERE available),
			(SELECT count(*) FROM books WHERE NOT available),
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM loans WHERE NOT returned)`)
	if err := row.Scan(&s.TotalBooks, &s.AvailableBooks, &s.BorrowedBooks, &s.TotalUsers, &s.ActiveBorrows); err != nil {
		observe("select", "stats", start, err)
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	observe("select", "stats", start, nil)
	return &s, nil
}
