// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package supervisor provides Suture-based process supervision for
// Librarium. The tree has two layers: maintenance (cache janitor,
// overdue monitor) and api (HTTP server), so a crashing background
// loop never takes the API down with it.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay, in seconds.
	FailureDecay float64

	// FailureBackoff is the wait when the threshold is exceeded.
	FailureBackoff time.Duration

	// ShutdownTimeout bounds graceful shutdown per service.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's documented defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree is the supervisor hierarchy for Librarium.
type Tree struct {
	root        *suture.Supervisor
	maintenance *suture.Supervisor
	api         *suture.Supervisor
	config      TreeConfig
}

// NewTree builds the supervisor tree. Zero config values fall back to
// the defaults.
func NewTree(logger *slog.Logger, config TreeConfig) *Tree {
	defaults := DefaultTreeConfig()
	if config.FailureThreshold == 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = defaults.FailureDecay
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = defaults.FailureBackoff
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}

	// sutureslog's hook has a pointer receiver; the handler must be
	// addressed, not copied.
	handler := &sutureslog.Handler{Logger: logger}

	rootSpec := suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}
	childSpec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	root := suture.New("librarium", rootSpec)
	maintenance := suture.New("maintenance-layer", childSpec)
	api := suture.New("api-layer", childSpec)

	root.Add(maintenance)
	root.Add(api)

	return &Tree{
		root:        root,
		maintenance: maintenance,
		api:         api,
		config:      config,
	}
}

// AddMaintenanceService adds a background loop to the maintenance layer.
func (t *Tree) AddMaintenanceService(svc suture.Service) suture.ServiceToken {
	return t.maintenance.Add(svc)
}

// AddAPIService adds a service to the API layer. Use this for the HTTP
// server.
func (t *Tree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

// Serve starts the tree and blocks until the context is canceled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground starts the tree in a background goroutine. The
// returned channel receives the terminal error (or nil) when the
// supervisor stops.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that failed to stop within the
// shutdown timeout.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
