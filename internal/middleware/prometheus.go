// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/librarium-app/librarium/internal/metrics"
)

// PrometheusMetrics records request count, latency, and in-flight gauge
// for every API request.
func PrometheusMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()

		wrapper := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next(wrapper, r)

		metrics.RecordAPIRequest(
			r.Method,
			r.URL.Path,
			strconv.Itoa(wrapper.statusCode),
			time.Since(start),
		)
	}
}

// metricsResponseWriter wraps http.ResponseWriter to capture the status
// code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
