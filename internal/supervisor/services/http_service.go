// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package services contains the suture.Service wrappers run under the
// supervisor tree: the HTTP server, the summary cache janitor, and the
// overdue gauge monitor.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPServer matches *http.Server's lifecycle methods, so tests can
// substitute a fake.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService bridges http.Server's blocking ListenAndServe to
// suture's context-aware Serve: the server runs in a goroutine, and
// context cancellation triggers a bounded graceful Shutdown.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

// NewHTTPServerService wraps an HTTP server as a supervised service.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// Serve implements suture.Service. http.ErrServerClosed is the expected
// outcome of Shutdown and is not treated as a failure.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// The original context is canceled, so shutdown gets its own.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer; suture uses it in event logs.
func (h *HTTPServerService) String() string {
	return h.name
}
