// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestID_GeneratesID(t *testing.T) {
	t.Parallel()

	var captured string
	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/books", nil))

	if captured == "" {
		t.Error("request id missing from context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != captured {
		t.Errorf("header %q does not match context %q", got, captured)
	}
}

func TestRequestID_KeepsUpstreamUUID(t *testing.T) {
	t.Parallel()

	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	const upstream = "a2b8f6d4-1c3e-4f5a-9b7d-8e6c4a2f0d1b"
	req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	req.Header.Set("X-Request-ID", upstream)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != upstream {
		t.Errorf("upstream id replaced: %q", got)
	}
}

func TestRequestID_RejectsMalformedUpstreamID(t *testing.T) {
	t.Parallel()

	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid\nInjected: header")
	rec := httptest.NewRecorder()
	handler(rec, req)

	got := rec.Header().Get("X-Request-ID")
	if got == "" || got == "not-a-uuid\nInjected: header" {
		t.Errorf("malformed upstream id not replaced: %q", got)
	}
}

func TestPrometheusMetrics_PassesThrough(t *testing.T) {
	t.Parallel()

	handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("body"))
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Body.String() != "body" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCompression_GzipsWhenAccepted(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("compress me ", 100)
	handler := Compression(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatal("response not gzip encoded")
	}
	gz, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	defer func() { _ = gz.Close() }()
	body, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != payload {
		t.Error("decompressed body mismatch")
	}
}

func TestCompression_SkippedWithoutHeader(t *testing.T) {
	t.Parallel()

	handler := Compression(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain"))
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/books", nil))

	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("response should not be compressed")
	}
	if rec.Body.String() != "plain" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
