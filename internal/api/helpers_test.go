// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/librarium-app/librarium/internal/models"
)

func TestGenerateETag_Deterministic(t *testing.T) {
	t.Parallel()

	body := []byte(`{"status":"success"}`)
	first := generateETag(body)
	second := generateETag(body)
	if first != second {
		t.Errorf("etags differ: %q vs %q", first, second)
	}
	if !strings.HasPrefix(first, `W/"`) {
		t.Errorf("etag %q not weak-form", first)
	}
	if generateETag([]byte(`{"status":"error"}`)) == first {
		t.Error("different bodies produced the same etag")
	}
}

func TestRespondJSON_ConditionalGet(t *testing.T) {
	t.Parallel()

	// A fixed envelope makes the body, and hence the ETag, stable.
	resp := &models.APIResponse{
		Status:   "success",
		Data:     map[string]interface{}{"ok": true},
		Metadata: models.Metadata{Timestamp: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)},
	}

	rec := httptest.NewRecorder()
	respondJSON(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil), http.StatusOK, resp)
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("ETag missing")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	respondJSON(rec, req, http.StatusOK, resp)

	if rec.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("304 carried a body of %d bytes", rec.Body.Len())
	}
}

func TestRespondError_Envelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondError(rec, httptest.NewRequest(http.MethodGet, "/api/v1/books/1", nil),
		http.StatusNotFound, "NOT_FOUND", "record not found", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"status":"error"`) {
		t.Errorf("missing error status: %s", body)
	}
	if !strings.Contains(body, `"NOT_FOUND"`) {
		t.Errorf("missing error code: %s", body)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	if got := sanitizeLogValue("line1\nline2\rline3"); strings.ContainsAny(got, "\n\r") {
		t.Errorf("control characters survived: %q", got)
	}
	long := strings.Repeat("a", 300)
	if got := sanitizeLogValue(long); len(got) != 203 {
		t.Errorf("len = %d, want 203", len(got))
	}
}
