// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package overdue implements the due-date policy for loans. The policy
// is pure time arithmetic over a configured loan period: no store access,
// no clock of its own. Callers pass the reference time so listings are
// consistent within a single request.
package overdue

import (
	"time"

	"github.com/librarium-app/librarium/internal/models"
)

// Policy derives due dates and overdue status from borrow dates.
type Policy struct {
	loanPeriod time.Duration
}

// NewPolicy builds a policy with the given loan period. A non-positive
// period falls back to the 14-day default.
func NewPolicy(loanPeriod time.Duration) *Policy {
	if loanPeriod <= 0 {
		loanPeriod = 14 * 24 * time.Hour
	}
	return &Policy{loanPeriod: loanPeriod}
}

// LoanPeriod returns the configured loan period.
func (p *Policy) LoanPeriod() time.Duration {
	return p.loanPeriod
}

// DueDate returns the instant the loan period ends for a loan opened at
// borrowDate.
func (p *Policy) DueDate(borrowDate time.Time) time.Time {
	return borrowDate.Add(p.loanPeriod)
}

// IsOverdue reports whether an open loan borrowed at borrowDate is past
// due at the reference time now. A loan exactly at its due instant is
// not overdue.
func (p *Policy) IsOverdue(borrowDate, now time.Time) bool {
	return now.After(p.DueDate(borrowDate))
}

// OverdueDays returns the number of days the loan is past due at now,
// rounding any partial day up. A loan that is not overdue reports 0.
func (p *Policy) OverdueDays(borrowDate, now time.Time) int {
	due := p.DueDate(borrowDate)
	if !now.After(due) {
		return 0
	}
	late := now.Sub(due)
	days := int(late / (24 * time.Hour))
	if late%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// Annotate fills the derived due/overdue fields of a loan view. Closed
// records keep their due date but are never overdue.
func (p *Policy) Annotate(v *models.LoanView, now time.Time) {
	v.DueDate = p.DueDate(v.BorrowDate)
	if v.Returned {
		v.Overdue = false
		v.OverdueDays = 0
		return
	}
	v.Overdue = p.IsOverdue(v.BorrowDate, now)
	v.OverdueDays = p.OverdueDays(v.BorrowDate, now)
}
