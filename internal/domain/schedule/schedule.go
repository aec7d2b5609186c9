// Package schedule derives due dates and overdue status from the funding
// date and term. Overdue and grace-exceeded are advisory signals for the
// notification fan-out; neither is a persisted agreement state.
package schedule

import "time"

const hoursPerDay = 24

// DueDates returns the n monthly due dates following fundedAt. Month
// stepping follows time.AddDate, so a funding date near month end may
// normalize forward (Jan 31 + 1 month = Mar 3 on non-leap years).
func DueDates(fundedAt time.Time, durationMonths int) []time.Time {
	if durationMonths < 1 {
		return nil
	}
	out := make([]time.Time, 0, durationMonths)
	for k := 1; k <= durationMonths; k++ {
		out = append(out, fundedAt.AddDate(0, k, 0))
	}
	return out
}

// DueStatus reports where the borrower stands against the schedule.
type DueStatus struct {
	// NextDueDate is the first due date without a matching completed
	// repayment. Zero when every installment is met.
	NextDueDate time.Time
	// DaysUntilDue is negative when the due date has passed.
	DaysUntilDue int
	Overdue      bool
	// GraceExceeded escalates an overdue installment past the configured
	// grace window.
	GraceExceeded bool
	// AllMet is true once completed repayments cover every period.
	AllMet bool
}

// Status evaluates the schedule at now, treating each completed repayment as
// meeting one installment in order.
func Status(fundedAt time.Time, durationMonths, completedRepayments int, now time.Time, graceDays int) DueStatus {
	dues := DueDates(fundedAt, durationMonths)
	if completedRepayments >= len(dues) {
		return DueStatus{AllMet: true}
	}

	next := dues[completedRepayments]
	until := int(next.Sub(now).Hours() / hoursPerDay)
	overdue := now.After(next)
	return DueStatus{
		NextDueDate:   next,
		DaysUntilDue:  until,
		Overdue:       overdue,
		GraceExceeded: overdue && now.After(next.AddDate(0, 0, graceDays)),
	}
}
