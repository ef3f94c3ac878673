// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/librarium-app/librarium/internal/config"
	"github.com/librarium-app/librarium/internal/logging"
	"github.com/librarium-app/librarium/internal/metrics"
	"github.com/librarium-app/librarium/internal/models"
)

// defaultMaxCandidates caps how many books a single scoring prompt
// carries. Larger catalogs get truncated in insertion order.
const defaultMaxCandidates = 20

// CandidateScore is one scored entry from a recommendation prompt. The
// rating is the model's raw answer; clamping and re-validation against
// the candidate snapshot happen in the ranking engine.
type CandidateScore struct {
	BookID int64   `json:"book_id"`
	Rating float64 `json:"rating"`
	Reason string  `json:"reason"`
}

// Oracle exposes the typed model operations used by the API layer.
type Oracle struct {
	gen           Generator
	enabled       bool
	maxCandidates int
}

// New wires an Oracle over an arbitrary Generator. Tests pass a stub.
func New(gen Generator, cfg *config.OracleConfig) *Oracle {
	maxCandidates := cfg.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}
	return &Oracle{
		gen:           gen,
		enabled:       cfg.Enabled,
		maxCandidates: maxCandidates,
	}
}

// NewFromConfig builds the production Oracle: HTTP client, breaker, and
// the configured candidate cap.
func NewFromConfig(cfg *config.OracleConfig) *Oracle {
	return New(NewBreakerClient(NewClient(cfg)), cfg)
}

// Enabled reports whether oracle-backed features are configured.
func (o *Oracle) Enabled() bool {
	return o.enabled
}

// generate runs one prompt through the model and records the outcome.
func (o *Oracle) generate(ctx context.Context, operation, prompt string) (string, error) {
	if !o.enabled {
		return "", fmt.Errorf("%w: oracle is disabled", ErrUnavailable)
	}

	start := time.Now()
	answer, err := o.gen.Generate(ctx, prompt)
	if err != nil {
		metrics.RecordOracleRequest(operation, "failure", time.Since(start))
		logging.Warn().Err(err).Str("operation", operation).Msg("Oracle call failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.RecordOracleRequest(operation, "success", time.Since(start))
	return answer, nil
}

// ScoreCandidates asks the model to rate the candidate books against the
// borrower's stated preferences. At most maxCandidates books are sent,
// in the order given. The returned scores are raw model output; callers
// must re-validate ids and clamp ratings.
func (o *Oracle) ScoreCandidates(ctx context.Context, preferences string, candidates []models.Book) ([]CandidateScore, error) {
	if len(candidates) > o.maxCandidates {
		candidates = candidates[:o.maxCandidates]
	}

	var sb strings.Builder
	sb.WriteString("You are a librarian recommending books. A reader describes their preferences as:\n")
	sb.WriteString(preferences)
	sb.WriteString("\n\nThe following books are available:\n")
	for _, b := range candidates {
		sb.WriteString(fmt.Sprintf("- id=%d title=%q author=%q", b.ID, b.Title, b.Author))
		if b.Genre != "" {
			sb.WriteString(fmt.Sprintf(" genre=%q", b.Genre))
		}
		if b.Description != "" {
			sb.WriteString(fmt.Sprintf(" description=%q", b.Description))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nRate how well each book matches the preferences on a scale of 0 to 10.\n")
	sb.WriteString("Respond with only a JSON array, no markdown, of objects shaped like:\n")
	sb.WriteString(`[{"book_id": 1, "rating": 8.5, "reason": "one short sentence"}]`)

	answer, err := o.generate(ctx, "score", sb.String())
	if err != nil {
		return nil, err
	}

	var scores []CandidateScore
	if err := json.Unmarshal([]byte(stripFences(answer)), &scores); err != nil {
		logging.Warn().Err(err).Msg("Oracle returned unparseable scores")
		return nil, fmt.Errorf("%w: failed to parse scores: %v", ErrUnavailable, err)
	}
	return scores, nil
}

// Describe asks the model for a short catalog description of a book.
func (o *Oracle) Describe(ctx context.Context, title, author, genre string) (string, error) {
	prompt := fmt.Sprintf("Write a concise 2-3 sentence description for the book %q by %s.", title, author)
	if genre != "" {
		prompt += fmt.Sprintf(" The genre is %s.", genre)
	}
	prompt += " Respond with only the description text, no markdown."

	answer, err := o.generate(ctx, "describe", prompt)
	if err != nil {
		return "", err
	}
	return stripFences(answer), nil
}

// Summarize asks the model for a reader-facing summary of a book.
func (o *Oracle) Summarize(ctx context.Context, b *models.Book) (string, error) {
	prompt := fmt.Sprintf("Provide a 2-3 sentence summary of the book %q by %s.", b.Title, b.Author)
	if b.Description != "" {
		prompt += fmt.Sprintf(" Catalog description: %s", b.Description)
	}
	prompt += " Respond with only the summary text, no markdown."

	answer, err := o.generate(ctx, "summarize", prompt)
	if err != nil {
		return "", err
	}
	return stripFences(answer), nil
}
