// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/librarium-app/librarium/internal/models"
)

const bookColumns = `id, title, author, isbn, genre, publication_year, description, available, created_at`

// bookScanner matches *sql.Row and *sql.Rows.
type bookScanner interface {
	Scan(dest ...interface{}) error
}

// scanBook reads one book row, translating nullable columns.
func scanBook(s bookScanner) (*models.Book, error) {
	var (
		b       models.Book
		genre   sql.NullString
		year    sql.NullInt32
		descr   sql.NullString
		created time.Time
	)
	if err := s.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &genre, &year, &descr, &b.Available, &created); err != nil {
		return nil, err
	}
	b.Genre = genre.String
	b.Description = descr.String
	b.CreatedAt = created
	if year.Valid {
		y := int(year.Int32)
		b.PublicationYear = &y
	}
	return &b, nil
}

// nullStr converts an optional string to its SQL representation.
func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullYear converts an optional publication year to its SQL representation.
func nullYear(y *int) sql.NullInt32 {
	if y == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*y), Valid: true}
}

// CreateBook inserts a new catalog entry. The id, availability flag, and
// creation timestamp are assigned by the store; the caller's Book is
// updated in place. Returns ErrDuplicateKey when the isbn is taken.
func (db *DB) CreateBook(ctx context.Context, b *models.Book) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackWithLog(tx.Rollback)

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM books WHERE isbn = ?`, b.ISBN).Scan(&count); err != nil {
		return fmt.Errorf("failed to check isbn uniqueness: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("isbn %q: %w", b.ISBN, ErrDuplicateKey)
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO books (title, author, isbn, genre, publication_year, description, available)
		VALUES (?, ?, ?, ?, ?, ?, true)
		RETURNING id, created_at`,
		b.Title, b.Author, b.ISBN, nullStr(b.Genre), nullYear(b.PublicationYear), nullStr(b.Description))
	if err := row.Scan(&b.ID, &b.CreatedAt); err != nil {
		observe("insert", "books", start, err)
		return fmt.Errorf("failed to insert book: %w", err)
	}
	b.Available = true

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit book insert: %w", err)
	}
	observe("insert", "books", start, nil)
	return nil
}

// GetBook fetches one book by id.
func (db *DB) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	row := db.conn.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		observe("select", "books", start, nil)
		return nil, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	if err != nil {
		observe("select", "books", start, err)
		return nil, fmt.Errorf("failed to fetch book %d: %w", id, err)
	}
	observe("select", "books", start, nil)
	return b, nil
}

// ListBooks returns the full catalog in insertion order.
func (db *DB) ListBooks(ctx context.Context) ([]models.Book, error) {
	return db.listBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
}

// ListAvailableBooks returns only books currently on the shelf, in
// insertion order. This is the snapshot handed to the recommendation
// oracle.
func (db *DB) ListAvailableBooks(ctx context.Context) ([]models.Book, error) {
	return db.listBooks(ctx, `SELECT `+bookColumns+` FROM books WHERE available ORDER BY id`)
}

func (db *DB) listBooks(ctx context.Context, query string) ([]models.Book, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		observe("select", "books", start, err)
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer closeQuietly(rows)

	books := make([]models.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			observe("select", "books", start, err)
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		observe("select", "books", start, err)
		return nil, fmt.Errorf("book row iteration failed: %w", err)
	}
	observe("select", "books", start, nil)
	return books, nil
}

// UpdateBook applies a partial update to a book's catalog fields. The id
// and the availability flag are never touched here; availability belongs
// to the circulation engine. Returns the updated book, ErrNotFound, or
// ErrDuplicateKey when a changed isbn collides.
func (db *DB) UpdateBook(ctx context.Context, id int64, req *models.UpdateBookRequest) (*models.Book, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackWithLog(tx.Rollback)

	row := tx.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch book %d: %w", id, err)
	}

	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Author != nil {
		b.Author = *req.Author
	}
	if req.ISBN != nil && *req.ISBN != b.ISBN {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM books WHERE isbn = ? AND id <> ?`, *req.ISBN, id).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to check isbn uniqueness: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("isbn %q: %w", *req.ISBN, ErrDuplicateKey)
		}
		b.ISBN = *req.ISBN
	}
	if req.Genre != nil {
		b.Genre = *req.Genre
	}
	if req.PublicationYear != nil {
		y := *req.PublicationYear
		b.PublicationYear = &y
	}
	if req.Description != nil {
		b.Description = *req.Description
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE books
		SET title = ?, author = ?, isbn = ?, genre = ?, publication_year = ?, description = ?
		WHERE id = ?`,
		b.Title, b.Author, b.ISBN, nullStr(b.Genre), nullYear(b.PublicationYear), nullStr(b.Description), id)
	if err != nil {
		observe("update", "books", start, err)
		return nil, fmt.Errorf("failed to update book %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit book update: %w", err)
	}
	observe("update", "books", start, nil)
	return b, nil
}

// DeleteBook removes a book from the catalog. An open loan always blocks
// deletion with ErrConflict. Returned (historical) loans also block it
// unless purgeHistory is set, in which case the history is deleted in
// the same transaction — an explicit administrative cascade, never a
// silent one.
func (db *DB) DeleteBook(ctx context.Context, id int64, purgeHistory bool) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackWithLog(tx.Rollback)

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM books WHERE id = ?`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check book %d: %w", id, err)
	}
	if exists == 0 {
		return fmt.Errorf("book %d: %w", id, ErrNotFound)
	}

	var open, closed int
	row := tx.QueryRowContext(ctx, `
		SELECT
			count(*) FILTER (WHERE NOT returned),
			count(*) FILTER (WHERE returned)
		FROM loans WHERE book_id = ?`, id)
	if err := row.Scan(&open, &closed); err != nil {
		return fmt.Errorf("failed to count loans for book %d: %w", id, err)
	}
	if open > 0 {
		return fmt.Errorf("book %d has an open loan: %w", id, ErrConflict)
	}
	if closed > 0 {
		if !purgeHistory {
			return fmt.Errorf("book %d has %d historical loans: %w", id, closed, ErrConflict)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM loans WHERE book_id = ? AND returned`, id); err != nil {
			return fmt.Errorf("failed to purge loan history for book %d: %w", id, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id); err != nil {
		observe("delete", "books", start, err)
		return fmt.Errorf("failed to delete book %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit book delete: %w", err)
	}
	observe("delete", "books", start, nil)
	return nil
}
