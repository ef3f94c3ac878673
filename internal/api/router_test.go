// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/librarium-app/librarium/internal/models"
)

func TestHealth_Healthy(t *testing.T) {
	t.Parallel()
	srv, _ := newTestAPI(t, nil)

	resp, env := doRequest(t, http.MethodGet, srv.URL+"/api/v1/health", nil)
	wantStatus(t, resp, http.StatusOK)

	var health models.HealthResponse
	decodeData(t, env, &health)
	if health.Status != "healthy" {
		t.Errorf("status = %q", health.Status)
	}
	if health.Database != "up" {
		t.Errorf("database = %q", health.Database)
	}
	if health.Oracle != "disabled" {
		t.Errorf("oracle = %q", health.Oracle)
	}
}

func TestHealth_ReportsOracleEnabled(t *testing.T) {
	t.Parallel()
	srv, _ := newTestAPI(t, &stubGenerator{answer: "ok"})

	_, env := doRequest(t, http.MethodGet, srv.URL+"/api/v1/health", nil)

	var health models.HealthResponse
	decodeData(t, env, &health)
	if health.Oracle != "enabled" {
		t.Errorf("oracle = %q", health.Oracle)
	}
}

func TestStats_CountsCirculationState(t *testing.T) {
	t.Parallel()
	srv, db := newTestAPI(t, nil)
	b1 := seedBook(t, db, "1984", "George Orwell", "978-0451524935", "", "")
	seedBook(t, db, "Emma", "Jane Austen", "978-0141439587", "", "")
	user := seedUser(t, db, "Jane Reader", "jane@example.com")
	if _, err := db.BorrowBook(context.Background(), b1.ID, user.ID, timeNow()); err != nil {
		t.Fatalf("borrow: %v", err)
	}

	resp, env := doRequest(t, http.MethodGet, srv.URL+"/api/v1/stats", nil)
	wantStatus(t, resp, http.StatusOK)

	var stats models.Stats
	decodeData(t, env, &stats)
	want := models.Stats{TotalBooks: 2, AvailableBooks: 1, BorrowedBooks: 1, TotalUsers: 1, ActiveBorrows: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestRouter_SetsRequestIDHeader(t *testing.T) {
	t.Parallel()
	srv, _ := newTestAPI(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestRouter_SetsETag(t *testing.T) {
	t.Parallel()
	srv, db := newTestAPI(t, nil)
	seedBook(t, db, "1984", "George Orwell", "978-0451524935", "", "")

	first, err := http.Get(srv.URL + "/api/v1/books/1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = first.Body.Close()
	etag := first.Header.Get("ETag")
	if etag == "" {
		t.Fatal("ETag header missing")
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	t.Parallel()
	srv, _ := newTestAPI(t, nil)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d", resp.StatusCode)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()
	srv, _ := newTestAPI(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/nonexistent")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
