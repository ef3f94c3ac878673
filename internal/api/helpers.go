// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package api

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/librarium-app/librarium/internal/logging"
	"github.com/librarium-app/librarium/internal/models"
	"github.com/librarium-app/librarium/internal/validation"
)

// maxRequestBody bounds request body reads. Catalog payloads are small;
// anything near this limit is malformed or hostile.
const maxRequestBody = 1 << 20

// sanitizeLogValue strips control characters from values that end up in
// log lines, preventing log injection via crafted request input.
func sanitizeLogValue(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// generateETag produces a weak ETag from the response body using
// FNV-1a. Collisions only cost a full response, never a wrong 304.
func generateETag(body []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(body)
	return fmt.Sprintf(`W/"%x"`, h.Sum64())
}

// respondJSON writes the response envelope with an ETag. Conditional
// requests matching the ETag get 304 with an empty body.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, resp *models.APIResponse) {
	body, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","error":{"code":"INTERNAL_ERROR","message":"Failed to encode response"}}`))
		return
	}

	etag := generateETag(body)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")

	if status == http.StatusOK && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Debug().Err(err).Msg("Failed to write response body")
	}
}

// respondError writes an error envelope and logs it at warn level with
// the request id for correlation.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	logging.Warn().
		Str("request_id", logging.RequestIDFromContext(r.Context())).
		Str("method", r.Method).
		Str("path", sanitizeLogValue(r.URL.Path)).
		Int("status", status).
		Str("code", code).
		Msg(sanitizeLogValue(message))

	resp := &models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}

	body, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal error response")
		body = []byte(`{"status":"error","error":{"code":"INTERNAL_ERROR","message":"Failed to encode response"}}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// decodeRequest parses and validates a JSON request body. On failure it
// writes the 400 response itself and returns false.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON request body", nil)
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// idParam extracts a positive integer URL parameter. On failure it
// writes the 400 response itself and returns ok=false.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("Invalid %s: must be a positive integer", name), nil)
		return 0, false
	}
	return id, true
}

// queryMS converts an operation duration into response metadata.
func queryMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

// okResponse builds a success envelope around data.
func okResponse(data interface{}, start time.Time) *models.APIResponse {
	return &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: queryMS(start),
		},
	}
}
