package utils

import "time"

// Day truncates t to midnight UTC. Loan dates are compared at day
// granularity throughout the workflow.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysLate computes how many whole days the return is past the
// requested end date. Never negative; an on-time or early return is 0.
func DaysLate(requestedEnd, returned time.Time) int {
	days := int(Day(returned).Sub(Day(requestedEnd)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// DaysBetween returns the inclusive day count of a loan period.
// A loan starting and ending on the same day counts as one day.
func DaysBetween(start, end time.Time) int {
	days := int(Day(end).Sub(Day(start)).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// BeforeDay reports whether a falls on an earlier day than b.
func BeforeDay(a, b time.Time) bool {
	return Day(a).Before(Day(b))
}
