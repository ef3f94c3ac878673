// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package services

import (
	"context"
	"time"

	"github.com/librarium-app/librarium/internal/database"
	"github.com/librarium-app/librarium/internal/logging"
	"github.com/librarium-app/librarium/internal/models"
)

// RecordLister is the slice of the circulation engine the monitor
// needs. Listing open records refreshes the overdue gauge as a side
// effect.
type RecordLister interface {
	ListRecords(ctx context.Context, filter database.LoanFilter) ([]models.LoanView, error)
}

// OverdueMonitorService keeps the overdue-loans gauge current even when
// nobody is reading the borrow-records endpoint. Loans cross their due
// date by time passing alone, so the gauge needs a clock, not just
// request traffic.
type OverdueMonitorService struct {
	engine   RecordLister
	interval time.Duration
	name     string
}

// NewOverdueMonitorService builds a monitor refreshing at the given
// interval.
func NewOverdueMonitorService(engine RecordLister, interval time.Duration) *OverdueMonitorService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &OverdueMonitorService{
		engine:   engine,
		interval: interval,
		name:     "overdue-monitor",
	}
}

// Serve implements suture.Service. Listing failures are logged and
// retried on the next tick rather than crashing the service.
func (m *OverdueMonitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := m.engine.ListRecords(ctx, database.LoansOpen); err != nil {
				logging.Warn().Err(err).Msg("Overdue gauge refresh failed")
			}
		}
	}
}

// String implements fmt.Stringer.
func (m *OverdueMonitorService) String() string {
	return m.name
}
