// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/librarium-app/librarium/internal/config"
	"github.com/librarium-app/librarium/internal/models"
)

// stubGenerator returns a canned answer or error.
type stubGenerator struct {
	answer string
	err    error

	lastPrompt string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func enabledConfig() *config.OracleConfig {
	return &config.OracleConfig{Enabled: true, MaxCandidates: 20}
}

func TestStripFences(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[{"a":1}]`, `[{"a":1}]`},
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"bare fence", "```\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"whitespace", "  \n```json\n[1]\n```  ", `[1]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScoreCandidates_ParsesFencedJSON(t *testing.T) {
	t.Parallel()
	gen := &stubGenerator{answer: "```json\n[{\"book_id\": 2, \"rating\": 9.5, \"reason\": \"strong match\"}]\n```"}
	o := New(gen, enabledConfig())

	scores, err := o.ScoreCandidates(context.Background(), "mystery novels", []models.Book{
		{ID: 1, Title: "Alpha", Author: "A"},
		{ID: 2, Title: "Beta", Author: "B", Genre: "Mystery"},
	})
	if err != nil {
		t.Fatalf("ScoreCandidates: %v", err)
	}
	if len(scores) != 1 || scores[0].BookID != 2 || scores[0].Rating != 9.5 {
		t.Errorf("unexpected scores: %+v", scores)
	}
	if !strings.Contains(gen.lastPrompt, "mystery novels") {
		t.Error("prompt missing preferences")
	}
	if !strings.Contains(gen.lastPrompt, `genre="Mystery"`) {
		t.Errorf("prompt missing candidate genre: %s", gen.lastPrompt)
	}
}

func TestScoreCandidates_TruncatesCandidates(t *testing.T) {
	t.Parallel()
	gen := &stubGenerator{answer: "[]"}
	cfg := enabledConfig()
	cfg.MaxCandidates = 3
	o := New(gen, cfg)

	books := make([]models.Book, 10)
	for i := range books {
		books[i] = models.Book{ID: int64(i + 1), Title: "Book", Author: "A"}
	}
	if _, err := o.ScoreCandidates(context.Background(), "anything", books); err != nil {
		t.Fatalf("ScoreCandidates: %v", err)
	}
	if strings.Contains(gen.lastPrompt, "id=4") {
		t.Error("candidates beyond the cap leaked into the prompt")
	}
	if !strings.Contains(gen.lastPrompt, "id=3") {
		t.Error("capped candidate missing from the prompt")
	}
}

func TestScoreCandidates_UnparseableAnswer(t *testing.T) {
	t.Parallel()
	gen := &stubGenerator{answer: "I would recommend the first book."}
	o := New(gen, enabledConfig())

	_, err := o.ScoreCandidates(context.Background(), "x", []models.Book{{ID: 1}})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestOracle_Disabled(t *testing.T) {
	t.Parallel()
	o := New(&stubGenerator{answer: "[]"}, &config.OracleConfig{Enabled: false})

	if o.Enabled() {
		t.Error("Enabled() should be false")
	}
	if _, err := o.ScoreCandidates(context.Background(), "x", nil); !errors.Is(err, ErrUnavailable) {
		t.Errorf("ScoreCandidates: expected ErrUnavailable, got %v", err)
	}
	if _, err := o.Describe(context.Background(), "T", "A", ""); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Describe: expected ErrUnavailable, got %v", err)
	}
	if _, err := o.Summarize(context.Background(), &models.Book{Title: "T"}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Summarize: expected ErrUnavailable, got %v", err)
	}
}

func TestOracle_GeneratorFailure(t *testing.T) {
	t.Parallel()
	gen := &stubGenerator{err: errors.New("connection refused")}
	o := New(gen, enabledConfig())

	_, err := o.Summarize(context.Background(), &models.Book{Title: "T", Author: "A"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestClient_Generate(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/models/test-model:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"the answer"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(&config.OracleConfig{
		BaseURL:           srv.URL,
		APIKey:            "test-key",
		Model:             "test-model",
		Timeout:           5 * time.Second,
		RequestsPerMinute: 600,
	})
	got, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "the answer" {
		t.Errorf("Generate = %q", got)
	}
}

func TestClient_Generate_HTTPError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(&config.OracleConfig{
		BaseURL:           srv.URL,
		APIKey:            "k",
		Model:             "m",
		Timeout:           5 * time.Second,
		RequestsPerMinute: 600,
	})
	if _, err := c.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error on HTTP 429")
	}
}
