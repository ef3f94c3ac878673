// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package middleware holds the HTTP middleware applied to every API
// route: request identification, Prometheus instrumentation, and
// response compression.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/librarium-app/librarium/internal/logging"
)

type contextKey string

// RequestIDKey is the context key under which the request id is stored.
const RequestIDKey contextKey = "request_id"

// RequestID assigns every request an id, echoed in the X-Request-ID
// response header and carried through the context into log lines. An id
// arriving from an upstream proxy is kept only when it parses as a
// UUID; anything else is replaced, since the id ends up in logs
// verbatim.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = logging.ContextWithRequestID(ctx, requestID)

		next(w, r.WithContext(ctx))
	}
}

// GetRequestID extracts the request id from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
