// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTree_AppliesDefaults(t *testing.T) {
	t.Parallel()

	tree := NewTree(discardLogger(), TreeConfig{})
	want := DefaultTreeConfig()
	if tree.config != want {
		t.Errorf("config = %+v, want defaults %+v", tree.config, want)
	}
}

// signalService reports when it starts serving.
type signalService struct {
	started chan struct{}
	once    bool
}

func (s *signalService) Serve(ctx context.Context) error {
	if !s.once {
		s.once = true
		close(s.started)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *signalService) String() string { return "signal" }

func TestTree_RunsAndStopsServices(t *testing.T) {
	t.Parallel()

	tree := NewTree(discardLogger(), TreeConfig{ShutdownTimeout: time.Second})

	maintenanceSvc := &signalService{started: make(chan struct{})}
	apiSvc := &signalService{started: make(chan struct{})}
	tree.AddMaintenanceService(maintenanceSvc)
	tree.AddAPIService(apiSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, ch := range []chan struct{}{maintenanceSvc.started, apiSvc.started} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("service did not start under the tree")
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("supervisor returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop after cancellation")
	}
}
