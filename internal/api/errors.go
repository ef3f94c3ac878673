// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package api

import (
	"errors"
	"net/http"

	"github.com/librarium-app/librarium/internal/database"
	"github.com/librarium-app/librarium/internal/logging"
	"github.com/librarium-app/librarium/internal/oracle"
)

// respondStoreError maps store and oracle sentinels onto HTTP status
// codes and API error codes. Anything unmatched is a 500 with the
// detail kept out of the response body.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, database.ErrDuplicateKey):
		respondError(w, r, http.StatusConflict, "DUPLICATE_KEY", err.Error(), nil)
	case errors.Is(err, database.ErrAlreadyBorrowed):
		respondError(w, r, http.StatusConflict, "ALREADY_BORROWED", "Book is not available", nil)
	case errors.Is(err, database.ErrAlreadyReturned):
		respondError(w, r, http.StatusConflict, "ALREADY_RETURNED", "Loan record is already returned", nil)
	case errors.Is(err, database.ErrConflict):
		respondError(w, r, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, oracle.ErrUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, "ORACLE_UNAVAILABLE",
			"Recommendation oracle is unavailable, try again later", nil)
	default:
		logging.Error().Err(err).
			Str("request_id", logging.RequestIDFromContext(r.Context())).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Msg("Unhandled store error")
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "Internal storage error", nil)
	}
}
