// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/librarium-app/librarium/internal/database"
	"github.com/librarium-app/librarium/internal/models"
)

// Borrow handles POST /api/v1/borrow. Of N concurrent borrows for the
// same book exactly one succeeds; the rest get ALREADY_BORROWED.
func (h *Handler) Borrow(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.BorrowRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rec, err := h.engine.Borrow(r.Context(), req.BookID, req.UserID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, okResponse(rec, start))
}

// Return handles POST /api/v1/return. Closing an already-closed record
// fails with ALREADY_RETURNED and leaves the record untouched.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ReturnRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rec, err := h.engine.Return(r.Context(), req.RecordID)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, okResponse(rec, start))
}

// loanFilter maps the ?filter query parameter onto the store filter.
// Unknown values fall back to listing everything.
func loanFilter(r *http.Request) database.LoanFilter {
	switch r.URL.Query().Get("filter") {
	case "open":
		return database.LoansOpen
	case "returned":
		return database.LoansReturned
	default:
		return database.LoansAll
	}
}

// matchesLoanQuery reports whether the joined record matches the
// free-text query against book title, author, genre and borrower name,
// email. The query must already be lowercased.
func matchesLoanQuery(view models.LoanView, query string) bool {
	fields := make([]string, 0, 5)
	if view.Book != nil {
		fields = append(fields, view.Book.Title, view.Book.Author, view.Book.Genre)
	}
	if view.User != nil {
		fields = append(fields, view.User.Name, view.User.Email)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// ListBorrowRecords handles GET /api/v1/borrow-records. Records are
// joined with book and borrower and annotated with due-date status
// against a single reference time. An optional ?q= parameter narrows
// the listing by case-insensitive substring match; insertion order is
// preserved either way.
func (h *Handler) ListBorrowRecords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	views, err := h.engine.ListRecords(r.Context(), loanFilter(r))
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q"))); q != "" {
		filtered := make([]models.LoanView, 0, len(views))
		for _, v := range views {
			if matchesLoanQuery(v, q) {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}

	respondJSON(w, r, http.StatusOK, okResponse(views, start))
}
