// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package circulation implements the loan lifecycle: borrow, return, and
// the enriched borrow-records listing. It is the sole owner of loan
// record mutation and of the book availability flag.
//
// Concurrency model: the store makes each borrow/return atomic in a
// single transaction; on top of that the engine serializes operations on
// the same book with a per-book mutex, so of N concurrent borrows for
// one book exactly one succeeds and the rest observe the book as
// unavailable. Operations on different books never contend.
package circulation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/librarium-app/librarium/internal/database"
	"github.com/librarium-app/librarium/internal/logging"
	"github.com/librarium-app/librarium/internal/metrics"
	"github.com/librarium-app/librarium/internal/models"
	"github.com/librarium-app/librarium/internal/overdue"
)

// Store is the slice of the database the engine needs.
type Store interface {
	BorrowBook(ctx context.Context, bookID, userID int64, borrowDate time.Time) (*models.LoanRecord, error)
	ReturnLoan(ctx context.Context, recordID int64, returnDate time.Time) (*models.LoanRecord, error)
	GetLoan(ctx context.Context, id int64) (*models.LoanRecord, error)
	ListLoans(ctx context.Context, filter database.LoanFilter) ([]models.LoanView, error)
}

// Engine coordinates loan state changes.
type Engine struct {
	store  Store
	policy *overdue.Policy

	// Per-book write locks for concurrent borrow/return.
	bookLocks sync.Map

	// now is swappable for tests.
	now func() time.Time
}

// New builds a circulation engine over the given store and due-date
// policy.
func New(store Store, policy *overdue.Policy) *Engine {
	return &Engine{
		store:  store,
		policy: policy,
		now:    time.Now,
	}
}

// acquireBookLock acquires the per-book mutex.
func (e *Engine) acquireBookLock(bookID int64) *sync.Mutex {
	muInterface, _ := e.bookLocks.LoadOrStore(bookID, &sync.Mutex{})
	mu, ok := muInterface.(*sync.Mutex)
	if !ok {
		mu = &sync.Mutex{}
		e.bookLocks.Store(bookID, mu)
	}
	mu.Lock()
	return mu
}

// Borrow opens a loan for (bookID, userID). Exactly one of N concurrent
// borrows for the same book succeeds; the others get
// database.ErrAlreadyBorrowed.
func (e *Engine) Borrow(ctx context.Context, bookID, userID int64) (*models.LoanRecord, error) {
	mu := e.acquireBookLock(bookID)
	defer mu.Unlock()

	rec, err := e.store.BorrowBook(ctx, bookID, userID, e.now())
	if err != nil {
		metrics.RecordBorrow(borrowResult(err))
		return nil, err
	}
	metrics.RecordBorrow("success")
	logging.Info().
		Int64("record_id", rec.ID).
		Int64("book_id", bookID).
		Int64("user_id", userID).
		Msg("Loan opened")
	return rec, nil
}

// Return closes the loan identified by recordID and puts the book back
// on the shelf. Returning an already-closed record fails with
// database.ErrAlreadyReturned and leaves the record untouched.
func (e *Engine) Return(ctx context.Context, recordID int64) (*models.LoanRecord, error) {
	// The record is looked up first so the close-out runs under the
	// same per-book lock as borrows of that book.
	rec, err := e.store.GetLoan(ctx, recordID)
	if err != nil {
		metrics.RecordReturn(returnResult(err))
		return nil, err
	}

	mu := e.acquireBookLock(rec.BookID)
	defer mu.Unlock()

	closed, err := e.store.ReturnLoan(ctx, recordID, e.now())
	if err != nil {
		metrics.RecordReturn(returnResult(err))
		return nil, err
	}
	metrics.RecordReturn("success")
	logging.Info().
		Int64("record_id", closed.ID).
		Int64("book_id", closed.BookID).
		Msg("Loan closed")
	return closed, nil
}

// ListRecords returns loan records joined with book and borrower and
// annotated with due-date status. All records in one listing share a
// single reference time.
func (e *Engine) ListRecords(ctx context.Context, filter database.LoanFilter) ([]models.LoanView, error) {
	views, err := e.store.ListLoans(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := e.now()
	overdueCount := 0
	for i := range views {
		e.policy.Annotate(&views[i], now)
		if views[i].Overdue {
			overdueCount++
		}
	}
	metrics.OverdueLoans.Set(float64(overdueCount))
	return views, nil
}

func borrowResult(err error) string {
	switch {
	case errors.Is(err, database.ErrAlreadyBorrowed):
		return "unavailable"
	case errors.Is(err, database.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func returnResult(err error) string {
	switch {
	case errors.Is(err, database.ErrAlreadyReturned):
		return "already_returned"
	case errors.Is(err, database.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
