// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package circulation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/librarium-app/librarium/internal/config"
	"github.com/librarium-app/librarium/internal/database"
	"github.com/librarium-app/librarium/internal/models"
	"github.com/librarium-app/librarium/internal/overdue"
)

func newTestEngine(t *testing.T) (*Engine, *database.DB) {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{
		Path:                   "",
		MaxMemory:              "256MB",
		Threads:                2,
		PreserveInsertionOrder: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return New(db, overdue.NewPolicy(14*24*time.Hour)), db
}

func seedBookAndUser(t *testing.T, db *database.DB, isbn, email string) (*models.Book, *models.User) {
	t.Helper()
	b := &models.Book{Title: "Title " + isbn, Author: "Author", ISBN: isbn}
	if err := db.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	u := &models.User{Name: "Reader", Email: email}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return b, u
}

func TestBorrowReturn_RoundTrip(t *testing.T) {
	t.Parallel()
	eng, db := newTestEngine(t)
	b, u := seedBookAndUser(t, db, "isbn-rt", "rt@example.com")

	rec, err := eng.Borrow(context.Background(), b.ID, u.ID)
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	got, err := db.GetBook(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Available {
		t.Error("book should be unavailable while on loan")
	}

	closed, err := eng.Return(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if !closed.Returned || closed.ReturnDate == nil {
		t.Errorf("record not closed: %+v", closed)
	}
	got, err = db.GetBook(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if !got.Available {
		t.Error("book should be available after return")
	}
}

func TestBorrow_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()
	eng, db := newTestEngine(t)
	b, u := seedBookAndUser(t, db, "isbn-race", "race@example.com")

	const attempts = 25
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.Borrow(context.Background(), b.ID, u.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, database.ErrAlreadyBorrowed):
				rejected++
			default:
				t.Errorf("unexpected borrow error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly 1 winning borrow, got %d", wins)
	}
	if rejected != attempts-1 {
		t.Errorf("expected %d rejections, got %d", attempts-1, rejected)
	}

	views, err := eng.ListRecords(context.Background(), database.LoansAll)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(views) != 1 {
		t.Errorf("expected exactly 1 loan record, got %d", len(views))
	}
}

func TestReturn_Twice(t *testing.T) {
	t.Parallel()
	eng, db := newTestEngine(t)
	b, u := seedBookAndUser(t, db, "isbn-twice", "twice@example.com")

	rec, err := eng.Borrow(context.Background(), b.ID, u.ID)
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	if _, err := eng.Return(context.Background(), rec.ID); err != nil {
		t.Fatalf("first Return: %v", err)
	}
	if _, err := eng.Return(context.Background(), rec.ID); !errors.Is(err, database.ErrAlreadyReturned) {
		t.Fatalf("expected ErrAlreadyReturned, got %v", err)
	}
}

func TestReturn_UnknownRecord(t *testing.T) {
	t.Parallel()
	eng, _ := newTestEngine(t)

	if _, err := eng.Return(context.Background(), 404); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRecords_OverdueAnnotation(t *testing.T) {
	t.Parallel()
	eng, db := newTestEngine(t)
	b, u := seedBookAndUser(t, db, "isbn-od", "od@example.com")

	borrowTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	eng.now = func() time.Time { return borrowTime }
	rec, err := eng.Borrow(context.Background(), b.ID, u.ID)
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}

	// Twenty days later the loan is six days past its 14-day due date.
	eng.now = func() time.Time { return borrowTime.Add(20 * 24 * time.Hour) }
	views, err := eng.ListRecords(context.Background(), database.LoansAll)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 record, got %d", len(views))
	}
	v := views[0]
	if v.ID != rec.ID {
		t.Errorf("record id mismatch: %d", v.ID)
	}
	if !v.Overdue || v.OverdueDays != 6 {
		t.Errorf("expected 6 days overdue, got overdue=%v days=%d", v.Overdue, v.OverdueDays)
	}
	if !v.DueDate.Equal(borrowTime.Add(14 * 24 * time.Hour)) {
		t.Errorf("due date = %v", v.DueDate)
	}

	// After return the record stops being overdue.
	if _, err := eng.Return(context.Background(), rec.ID); err != nil {
		t.Fatalf("Return: %v", err)
	}
	views, err = eng.ListRecords(context.Background(), database.LoansAll)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if views[0].Overdue || views[0].OverdueDays != 0 {
		t.Errorf("closed record must not be overdue: %+v", views[0])
	}
}
