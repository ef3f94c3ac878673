// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package oracle talks to an external generative language model API and
// turns its free-text answers into typed results: candidate ratings for
// recommendations, book descriptions, and book summaries.
//
// The oracle is strictly advisory. It never mutates library state, every
// call is bounded by the caller's context, and every failure surfaces as
// ErrUnavailable so API handlers can degrade gracefully.
package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/librarium-app/librarium/internal/config"
)

// ErrUnavailable indicates the oracle could not produce an answer: the
// feature is disabled, the circuit is open, the upstream call failed, or
// the response could not be parsed.
var ErrUnavailable = errors.New("oracle unavailable")

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics.
const maxErrorBodySize = 64 * 1024

// Client is the low-level HTTP client for the generative language API.
// It handles authentication, rate limiting, and response unwrapping; the
// typed prompt builders live in the Oracle service on top.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client from configuration. Requests are spaced by a
// local token-bucket limiter so a burst of API traffic cannot exhaust the
// upstream quota.
func NewClient(cfg *config.OracleConfig) *Client {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 15
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
	}
}

// generateContent request/response shapes, trimmed to the fields used.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}

// Generate sends one prompt to the model and returns its text answer.
// The call waits on the rate limiter first, so a cancelled context never
// burns quota.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return "", fmt.Errorf("generateContent failed with status %d: %s", resp.StatusCode, string(body))
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty model response")
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}

// stripFences removes a surrounding markdown code fence from a model
// answer. Models often wrap JSON in ```json ... ``` despite instructions
// not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "json" || first == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
