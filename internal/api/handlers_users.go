// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package api

import (
	"net/http"
	"time"

	"github.com/librarium-app/librarium/internal/logging"
	"github.com/librarium-app/librarium/internal/models"
)

// CreateUser handles POST /api/v1/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateUserRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := h.db.CreateUser(r.Context(), user); err != nil {
		respondStoreError(w, r, err)
		return
	}

	logging.Info().Int64("user_id", user.ID).Msg("Borrower registered")
	respondJSON(w, r, http.StatusCreated, okResponse(user, start))
}

// ListUsers handles GET /api/v1/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	users, err := h.db.ListUsers(r.Context())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, okResponse(users, start))
}

// GetUser handles GET /api/v1/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.db.GetUser(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, okResponse(user, start))
}

// UpdateUser handles PUT /api/v1/users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.db.UpdateUser(r.Context(), id, &req)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	logging.Info().Int64("user_id", id).Msg("Borrower updated")
	respondJSON(w, r, http.StatusOK, okResponse(user, start))
}

// DeleteUser handles DELETE /api/v1/users/{id}. Same loan-history
// rules as book deletion: open loans always block, returned history
// blocks unless purging is requested and allowed.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	purge := r.URL.Query().Get("purge") == "true" && h.cfg.Circulation.AllowHistoryPurge

	if err := h.db.DeleteUser(r.Context(), id, purge); err != nil {
		respondStoreError(w, r, err)
		return
	}

	logging.Info().Int64("user_id", id).Bool("purged_history", purge).Msg("Borrower deleted")
	respondJSON(w, r, http.StatusOK, okResponse(map[string]interface{}{"deleted": true, "id": id}, start))
}
