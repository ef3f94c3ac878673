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

// LoanFilter selects which loan records a listing returns.
type LoanFilter int

const (
	// LoansAll returns every loan record, open and closed.
	LoansAll LoanFilter = iota
	// LoansOpen returns only records that have not been returned.
	LoansOpen
	// LoansReturned returns only closed records.
	LoansReturned
)

// BorrowBook atomically opens a loan: it verifies the book exists and is
// available and the user exists, inserts the loan record, and flips the
// book to unavailable, all in one transaction. Returns ErrNotFound for a
// missing book or user and ErrAlreadyBorrowed when the book is out.
//
// The transaction makes the state change atomic against readers; the
// circulation engine serializes concurrent borrows of the same book so
// that exactly one wins.
func (db *DB) BorrowBook(ctx context.Context, bookID, userID int64, borrowDate time.Time) (*models.LoanRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackWithLog(tx.Rollback)

	var available bool
	err = tx.QueryRowContext(ctx, `SELECT available FROM books WHERE id = ?`, bookID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("book %d: %w", bookID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check book %d: %w", bookID, err)
	}
	if !available {
		return nil, fmt.Errorf("book %d: %w", bookID, ErrAlreadyBorrowed)
	}

	var userExists int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM users WHERE id = ?`, userID).Scan(&userExists); err != nil {
		return nil, fmt.Errorf("failed to check user %d: %w", userID, err)
	}
	if userExists == 0 {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	rec := &models.LoanRecord{
		BookID:     bookID,
		UserID:     userID,
		BorrowDate: borrowDate.UTC(),
	}
	row := tx.QueryRowContext(ctx, `
		INSERT INTO loans (book_id, user_id, borrow_date, returned)
		VALUES (?, ?, ?, false)
		RETURNING id`,
		bookID, userID, rec.BorrowDate)
	if err := row.Scan(&rec.ID); err != nil {
		observe("insert", "loans", start, err)
		return nil, fmt.Errorf("failed to insert loan record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE books SET available = false WHERE id = ?`, bookID); err != nil {
		observe("update", "books", start, err)
		return nil, fmt.Errorf("failed to mark book %d unavailable: %w", bookID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit borrow: %w", err)
	}
	observe("insert", "loans", start, nil)
	return rec, nil
}

// ReturnLoan atomically closes a loan: it stamps the return date, marks
// the record returned, and flips the book back to available. Returns
// ErrNotFound for a missing record and ErrAlreadyReturned when the record
// is already closed, leaving the original return date untouched.
func (db *DB) ReturnLoan(ctx context.Context, recordID int64, returnDate time.Time) (*models.LoanRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackWithLog(tx.Rollback)

	rec := &models.LoanRecord{ID: recordID}
	var returned bool
	err = tx.QueryRowContext(ctx, `SELECT book_id, user_id, borrow_date, returned FROM loans WHERE id = ?`, recordID).
		Scan(&rec.BookID, &rec.UserID, &rec.BorrowDate, &returned)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("loan record %d: %w", recordID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch loan record %d: %w", recordID, err)
	}
	if returned {
		return nil, fmt.Errorf("loan record %d: %w", recordID, ErrAlreadyReturned)
	}

	ret := returnDate.UTC()
	if _, err := tx.ExecContext(ctx, `UPDATE loans SET return_date = ?, returned = true WHERE id = ?`, ret, recordID); err != nil {
		observe("update", "loans", start, err)
		return nil, fmt.Errorf("failed to close loan record %d: %w", recordID, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE books SET available = true WHERE id = ?`, rec.BookID); err != nil {
		observe("update", "books", start, err)
		return nil, fmt.Errorf("failed to mark book %d available: %w", rec.BookID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit return: %w", err)
	}
	rec.ReturnDate = &ret
	rec.Returned = true
	observe("update", "loans", start, nil)
	return rec, nil
}

// GetLoan fetches one loan record by id.
func (db *DB) GetLoan(ctx context.Context, id int64) (*models.LoanRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	rec := &models.LoanRecord{}
	var ret sql.NullTime
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, book_id, user_id, borrow_date, return_date, returned
		FROM loans WHERE id = ?`, id)
	err := row.Scan(&rec.ID, &rec.BookID, &rec.UserID, &rec.BorrowDate, &ret, &rec.Returned)
	if errors.Is(err, sql.ErrNoRows) {
		observe("select", "loans", start, nil)
		return nil, fmt.Errorf("loan record %d: %w", id, ErrNotFound)
	}
	if err != nil {
		observe("select", "loans", start, err)
		return nil, fmt.Errorf("failed to fetch loan record %d: %w", id, err)
	}
	if ret.Valid {
		t := ret.Time
		rec.ReturnDate = &t
	}
	observe("select", "loans", start, nil)
	return rec, nil
}

// ListLoans returns loan records joined with their book and user, in
// insertion order. Due dates and overdue status are derived by the
// caller, not stored.
func (db *DB) ListLoans(ctx context.Context, filter LoanFilter) ([]models.LoanView, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	query := `
		SELECT
			l.id, l.book_id, l.user_id, l.borrow_date, l.return_date, l.returned,
			` + bookColumns2("b") + `,
			` + userColumns2("u") + `
		FROM loans l
		JOIN books b ON b.id = l.book_id
		JOIN users u ON u.id = l.user_id`
	switch filter {
	case LoansOpen:
		query += ` WHERE NOT l.returned`
	case LoansReturned:
		query += ` WHERE l.returned`
	}
	query += ` ORDER BY l.id`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		observe("select", "loans", start, err)
		return nil, fmt.Errorf("failed to list loan records: %w", err)
	}
	defer closeQuietly(rows)

	views := make([]models.LoanView, 0)
	for rows.Next() {
		var (
			v       models.LoanView
			ret     sql.NullTime
			b       models.Book
			u       models.User
			bGenre  sql.NullString
			bYear   sql.NullInt32
			bDescr  sql.NullString
			uPhone  sql.NullString
		)
		err := rows.Scan(
			&v.ID, &v.BookID, &v.UserID, &v.BorrowDate, &ret, &v.Returned,
			&b.ID, &b.Title, &b.Author, &b.ISBN, &bGenre, &bYear, &bDescr, &b.Available, &b.CreatedAt,
			&u.ID, &u.Name, &u.Email, &uPhone, &u.CreatedAt,
		)
		if err != nil {
			observe("select", "loans", start, err)
			return nil, fmt.Errorf("failed to scan loan record: %w", err)
		}
		if ret.Valid {
			t := ret.Time
			v.ReturnDate = &t
		}
		b.Genre = bGenre.String
		b.Description = bDescr.String
		if bYear.Valid {
			y := int(bYear.Int32)
			b.PublicationYear = &y
		}
		u.Phone = uPhone.String
		v.Book = &b
		v.User = &u
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		observe("select", "loans", start, err)
		return nil, fmt.Errorf("loan row iteration failed: %w", err)
	}
	observe("select", "loans", start, nil)
	return views, nil
}

// bookColumns2 qualifies the book column list with a table alias.
func bookColumns2(alias string) string {
	return alias + `.id, ` + alias + `.title, ` + alias + `.author, ` + alias + `.isbn, ` +
		alias + `.genre, ` + alias + `.publication_year, ` + alias + `.description, ` +
		alias + `.available, ` + alias + `.created_at`
}

// userColumns2 qualifies the user column list with a table alias.
func userColumns2(alias string) string {
	return alias + `.id, ` + alias + `.name, ` + alias + `.email, ` + alias + `.phone, ` + alias + `.created_at`
}
