// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package api

import (
	"net/http"
	"time"

	"github.com/librarium-app/librarium/internal/models"
)

// Stats handles GET /api/v1/stats. Counters are recomputed from current
// store state on every call.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	stats, err := h.db.GetStats(r.Context())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, okResponse(stats, start))
}

// Health handles GET /api/v1/health. The service is degraded when the
// database is unreachable; a disabled oracle is reported but does not
// degrade health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "up"
	status := "healthy"
	if err := h.db.Ping(r.Context()); err != nil {
		dbStatus = "down"
		status = "degraded"
	}

	oracleStatus := "disabled"
	if h.oracle.Enabled() {
		oracleStatus = "enabled"
	}

	resp := &models.APIResponse{
		Status: "success",
		Data: models.HealthResponse{
			Status:    status,
			Database:  dbStatus,
			Oracle:    oracleStatus,
			Timestamp: time.Now().UTC(),
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, r, code, resp)
}
