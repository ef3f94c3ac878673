// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/librarium-app/librarium/internal/logging"
	"github.com/librarium-app/librarium/internal/models"
)

// summaryCacheKey is the cache key for a book's generated summary.
func summaryCacheKey(bookID int64) string {
	return fmt.Sprintf("book:%d", bookID)
}

// CreateBook handles POST /api/v1/books. When the request omits a
// description and the oracle is enabled, one is generated; creation
// still succeeds if the oracle is down.
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateBookRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	book := &models.Book{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Genre:           req.Genre,
		PublicationYear: req.PublicationYear,
		Description:     req.Description,
	}

	if book.Description == "" && h.oracle.Enabled() {
		desc, err := h.oracle.Describe(r.Context(), book.Title, book.Author, book.Genre)
		if err != nil {
			logging.Warn().Err(err).Str("title", sanitizeLogValue(book.Title)).
				Msg("Description generation failed, creating book without one")
		} else {
			book.Description = desc
		}
	}

	if err := h.db.CreateBook(r.Context(), book); err != nil {
		respondStoreError(w, r, err)
		return
	}

	logging.Info().Int64("book_id", book.ID).Str("isbn", sanitizeLogValue(book.ISBN)).Msg("Book created")
	respondJSON(w, r, http.StatusCreated, okResponse(book, start))
}

// ListBooks handles GET /api/v1/books. With ?available=true only books
// currently on the shelf are returned.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var (
		books []models.Book
		err   error
	)
	if r.URL.Query().Get("available") == "true" {
		books, err = h.db.ListAvailableBooks(r.Context())
	} else {
		books, err = h.db.ListBooks(r.Context())
	}
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, okResponse(books, start))
}

// GetBook handles GET /api/v1/books/{id}.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	book, err := h.db.GetBook(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, okResponse(book, start))
}

// UpdateBook handles PUT /api/v1/books/{id}. Absent fields keep their
// stored values. A successful update drops the book's cached summary.
func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateBookRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	book, err := h.db.UpdateBook(r.Context(), id, &req)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.summaries.Remove(summaryCacheKey(id))
	logging.Info().Int64("book_id", id).Msg("Book updated")
	respondJSON(w, r, http.StatusOK, okResponse(book, start))
}

// DeleteBook handles DELETE /api/v1/books/{id}. Books with open loans
// are never deletable. Returned loan history blocks deletion unless
// ?purge=true is given and history purging is enabled in config.
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	purge := r.URL.Query().Get("purge") == "true" && h.cfg.Circulation.AllowHistoryPurge

	if err := h.db.DeleteBook(r.Context(), id, purge); err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.summaries.Remove(summaryCacheKey(id))
	logging.Info().Int64("book_id", id).Bool("purged_history", purge).Msg("Book deleted")
	respondJSON(w, r, http.StatusOK, okResponse(map[string]interface{}{"deleted": true, "id": id}, start))
}
