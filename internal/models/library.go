// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package models defines the shared data model for Librarium: catalog
// books, borrowers, loan records, and the API request/response shapes.
//
// Ownership rules (enforced by the owning components, documented here):
//   - The circulation engine exclusively owns Loan Record creation and
//     mutation, and the Book.Available flag.
//   - The catalog store owns all other Book fields.
//   - The borrower store owns User fields.
package models

import "time"

// Book is a catalog entry. Available is derived state: it is true iff no
// open loan record references the book, and is only ever changed by the
// circulation engine.
type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Genre           string    `json:"genre,omitempty"`
	PublicationYear *int      `json:"publication_year,omitempty"`
	Description     string    `json:"description,omitempty"`
	Available       bool      `json:"available"`
	CreatedAt       time.Time `json:"created_at"`
}

// User is a registered borrower. Email is unique across users.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LoanRecord captures one borrow-to-return cycle for a (book, user) pair.
// Records are append-only: a record is created by a successful borrow,
// mutated exactly once on return, and never changed again.
type LoanRecord struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"book_id"`
	UserID     int64      `json:"user_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Returned   bool       `json:"returned"`
}

// LoanView is a loan record joined with its book and user plus the
// due/overdue status derived by the overdue policy. This is the shape
// served by the borrow-records listing.
type LoanView struct {
	LoanRecord

	Book *Book `json:"book,omitempty"`
	User *User `json:"user,omitempty"`

	DueDate     time.Time `json:"due_date"`
	Overdue     bool      `json:"overdue"`
	OverdueDays int       `json:"overdue_days"`
}

// Stats holds the dashboard counters, recomputed on demand from current
// store state.
type Stats struct {
	TotalBooks     int `json:"total_books"`
	AvailableBooks int `json:"available_books"`
	BorrowedBooks  int `json:"borrowed_books"`
	TotalUsers     int `json:"total_users"`
	ActiveBorrows  int `json:"active_borrows"`
}

// Recommendation pairs a book with the oracle's relevance rating and its
// natural-language justification. Rating is always within [0, 10].
type Recommendation struct {
	Book   Book    `json:"book"`
	Rating float64 `json:"rating"`
	Reason string  `json:"reason"`
}
