// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/librarium-app/librarium/internal/cache"
	"github.com/librarium-app/librarium/internal/circulation"
	"github.com/librarium-app/librarium/internal/config"
	"github.com/librarium-app/librarium/internal/database"
	"github.com/librarium-app/librarium/internal/models"
	"github.com/librarium-app/librarium/internal/oracle"
	"github.com/librarium-app/librarium/internal/overdue"
)

// stubGenerator returns a canned oracle answer or error, counting calls.
type stubGenerator struct {
	mu     sync.Mutex
	answer string
	err    error
	calls  int
}

func (s *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func (s *stubGenerator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// newTestAPI spins up the full router over an in-memory database. A nil
// generator leaves the oracle disabled.
func newTestAPI(t *testing.T, gen oracle.Generator) (*httptest.Server, *database.DB) {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{
		Path:                   "", // in-memory
		MaxMemory:              "256MB",
		Threads:                2,
		PreserveInsertionOrder: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	cfg := &config.Config{
		Circulation: config.CirculationConfig{LoanPeriodDays: 14, AllowHistoryPurge: true},
		Oracle:      config.OracleConfig{Enabled: gen != nil, MaxCandidates: 20},
	}

	ora := oracle.New(gen, &cfg.Oracle)
	engine := circulation.New(db, overdue.NewPolicy(cfg.Circulation.LoanPeriod()))
	summaries := cache.NewLRUCache("summary", 16, time.Hour)

	handler := NewHandler(db, engine, ora, summaries, cfg)
	router := NewRouter(handler, &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		RateLimitDisabled:  true,
	})

	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)
	return srv, db
}

// envelope mirrors models.APIResponse with raw data for per-test
// decoding.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

// doRequest performs a JSON request and decodes the envelope.
func doRequest(t *testing.T, method, url string, body interface{}) (*http.Response, *envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response envelope: %v", err)
	}
	return resp, &env
}

// decodeData unmarshals the envelope data into dst.
func decodeData(t *testing.T, env *envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

// seedBook inserts a book directly through the store.
func seedBook(t *testing.T, db *database.DB, title, author, isbn, genre, description string) *models.Book {
	t.Helper()
	b := &models.Book{Title: title, Author: author, ISBN: isbn, Genre: genre, Description: description}
	if err := db.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("seed book %q: %v", title, err)
	}
	return b
}

// seedUser inserts a borrower directly through the store.
func seedUser(t *testing.T, db *database.DB, name, email string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user %q: %v", email, err)
	}
	return u
}

// itoa formats a record id for URL building.
func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// timeNow is the borrow/return timestamp used when seeding loans.
func timeNow() time.Time {
	return time.Now().UTC()
}

func wantStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d", resp.StatusCode, want)
	}
}

func wantErrorCode(t *testing.T, env *envelope, code string) {
	t.Helper()
	if env.Error == nil {
		t.Fatalf("expected error %q, got none", code)
	}
	if env.Error.Code != code {
		t.Fatalf("error code = %q, want %q", env.Error.Code, code)
	}
}
