// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/librarium-app/librarium/internal/logging"
	"github.com/librarium-app/librarium/internal/metrics"
)

// Generator is the single operation the breaker protects.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BreakerClient wraps a Generator with a circuit breaker so a dead or
// slow model API fails fast instead of queueing requests.
//
// The breaker uses real time for its interval and timeout calculations.
// That timing only determines when to retry after failures; tests should
// exercise the wrapped client directly.
type BreakerClient struct {
	inner Generator
	cb    *gobreaker.CircuitBreaker[string]
	name  string
}

// NewBreakerClient builds the breaker around a Generator.
// Configuration:
//   - max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - opens after 60% failure rate with minimum 5 requests
func NewBreakerClient(inner Generator) *BreakerClient {
	cbName := "oracle-api"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening oracle circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerClient{inner: inner, cb: cb, name: cbName}
}

// Generate forwards to the wrapped client under breaker protection.
// Rejections while the circuit is open surface as ErrUnavailable.
func (b *BreakerClient) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := b.cb.Execute(func() (string, error) {
		return b.inner.Generate(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Oracle request rejected")
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}
	return result, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
