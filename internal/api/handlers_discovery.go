// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/librarium-app/librarium/internal/logging"
	"github.com/librarium-app/librarium/internal/models"
	"github.com/librarium-app/librarium/internal/rank"
)

// Search handles POST /api/v1/search: deterministic lexical search over
// title, author, genre, and description.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.SearchRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	// required lets whitespace-only strings through; a blank query is
	// rejected the same way an absent one is.
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "query must not be blank", nil)
		return
	}

	books, err := h.db.ListBooks(r.Context())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	results := rank.Search(books, req.Query)
	respondJSON(w, r, http.StatusOK, okResponse(results, start))
}

// Recommendations handles POST /api/v1/recommendations. The available
// catalog snapshot is scored by the oracle against the stated
// preferences; scores are re-validated against the snapshot before they
// are served. An empty shelf short-circuits without an oracle call.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RecommendationsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Preferences) == "" {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "preferences must not be blank", nil)
		return
	}

	candidates, err := h.db.ListAvailableBooks(r.Context())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	if len(candidates) == 0 {
		respondJSON(w, r, http.StatusOK, okResponse(models.RecommendationsResponse{
			Recommendations: []models.Recommendation{},
		}, start))
		return
	}

	scores, err := h.oracle.ScoreCandidates(r.Context(), req.Preferences, candidates)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	recs := rank.BuildRecommendations(candidates, scores)
	respondJSON(w, r, http.StatusOK, okResponse(models.RecommendationsResponse{
		Recommendations: recs,
	}, start))
}

// BookSummary handles GET /api/v1/books/{id}/summary. Generated
// summaries are cached per book; updates and deletes invalidate the
// entry.
func (h *Handler) BookSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	// The book must exist even on a cache hit, so a deleted id never
	// serves a stale summary.
	book, err := h.db.GetBook(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	if summary, hit := h.summaries.Get(summaryCacheKey(id)); hit {
		resp := okResponse(models.SummaryResponse{Summary: summary}, start)
		resp.Metadata.Cached = true
		respondJSON(w, r, http.StatusOK, resp)
		return
	}

	summary, err := h.oracle.Summarize(r.Context(), book)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	h.summaries.Add(summaryCacheKey(id), summary)
	logging.Debug().Int64("book_id", id).Msg("Summary generated and cached")
	respondJSON(w, r, http.StatusOK, okResponse(models.SummaryResponse{Summary: summary}, start))
}
