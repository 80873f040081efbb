// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for rolling a bill's due date
// forward. Each frequency (weekly, monthly, quarterly, yearly) has its own
// strategy that knows how far the next occurrence is.

package services

import (
	"fmt"
	"time"

	"financeflow/internal/core"
)

// DueDateAdvancer is the strategy interface for computing a bill's next due
// date from the current one.
type DueDateAdvancer interface {
	Next(due core.Date) core.Date
}

// WeeklyAdvancer moves the due date by seven days.
type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Next(due core.Date) core.Date {
	return core.Date{Time: due.AddDate(0, 0, 7)}
}

// MonthlyAdvancer moves the due date by Months calendar months, clamping to
// the last day of the target month (Jan 31 becomes Feb 28 or 29).
type MonthlyAdvancer struct {
	Months int
}

func (a MonthlyAdvancer) Next(due core.Date) core.Date {
	return due.AddMonths(a.Months)
}

// advancers maps bill frequencies to their strategies.
var advancers = map[core.Frequency]DueDateAdvancer{
	core.Weekly:    WeeklyAdvancer{},
	core.Monthly:   MonthlyAdvancer{Months: 1},
	core.Quarterly: MonthlyAdvancer{Months: 3},
	core.Yearly:    MonthlyAdvancer{Months: 12},
}

// GetDueDateAdvancer returns the strategy for a frequency.
func GetDueDateAdvancer(f core.Frequency) (DueDateAdvancer, error) {
	a, ok := advancers[f]
	if !ok {
		return nil, fmt.Errorf("unknown bill frequency: %s", f)
	}
	return a, nil
}

// RegisterDueDateAdvancer adds or replaces the strategy for a frequency.
func RegisterDueDateAdvancer(f core.Frequency, a DueDateAdvancer) {
	advancers[f] = a
}

// NextDueDate returns the occurrence after due for a bill of frequency f.
func NextDueDate(due core.Date, f core.Frequency) (core.Date, error) {
	a, err := GetDueDateAdvancer(f)
	if err != nil {
		return core.Date{}, err
	}
	return a.Next(due), nil
}

// DaysUntilDue counts whole days from now's calendar day to the bill's due
// date. Negative values mean the bill is overdue.
func DaysUntilDue(b core.Bill, now time.Time) int {
	return b.DueDate.DaysUntil(core.DateOf(now))
}

// IsDueSoon reports whether an active bill falls due within its reminder
// window, today included.
func IsDueSoon(b core.Bill, now time.Time) bool {
	if !b.IsActive {
		return false
	}
	days := DaysUntilDue(b, now)
	return days >= 0 && days <= b.ReminderDays
}

// IsOverdue reports whether an active bill's due date has passed.
func IsOverdue(b core.Bill, now time.Time) bool {
	return b.IsActive && DaysUntilDue(b, now) < 0
}
