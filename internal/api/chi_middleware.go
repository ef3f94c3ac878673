// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/librarium-app/librarium/internal/metrics"
)

// ChiMiddlewareConfig holds the CORS and rate limiting knobs for the
// router. Defaults are conservative; CORS origins must be configured
// explicitly.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins []string
	CORSMaxAge         int

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// DefaultChiMiddlewareConfig returns secure defaults.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{},
		CORSMaxAge:         86400,
		RateLimitRequests:  100,
		RateLimitWindow:    time.Minute,
	}
}

// ChiMiddleware provides Chi-compatible middleware factories backed by
// the go-chi ecosystem (cors, httprate).
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware builds the middleware factory.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: config.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         config.CORSMaxAge,
	})

	return &ChiMiddleware{config: config, cors: corsHandler}
}

// CORS returns the go-chi/cors handler. It must be global so OPTIONS
// preflight requests are answered before routing.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// rateLimit builds an IP-keyed limiter that records rejections in the
// rate limit counter under the given endpoint label.
func (m *ChiMiddleware) rateLimit(endpoint string, requests int, window time.Duration) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues(endpoint).Inc()
			respondError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests", nil)
		}),
	)
}

// RateLimit is the default per-IP limit for API endpoints.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.rateLimit("api", m.config.RateLimitRequests, m.config.RateLimitWindow)
}

// RateLimitOracle is a stricter limit for endpoints that call the
// external model, which is paced and metered upstream anyway.
func (m *ChiMiddleware) RateLimitOracle() func(http.Handler) http.Handler {
	requests := m.config.RateLimitRequests / 4
	if requests < 1 {
		requests = 1
	}
	return m.rateLimit("oracle", requests, m.config.RateLimitWindow)
}

// RateLimitHealth is permissive so monitoring probes never starve.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.rateLimit("health", 1000, time.Minute)
}
