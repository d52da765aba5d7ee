package engine

import (
	"time"

	"taskpilot/internal/model"
)

// NextDueDate computes the due date of the next occurrence from the
// current scheduled due date. It never consults the wall clock, so late
// or early completions do not drift the schedule.
//
// Daily advances one calendar day and weekly seven, keeping the time of
// day. Monthly keeps the day-of-month in the following month; when the
// target month is shorter, the day clamps to the month's last day rather
// than skipping the occurrence (Jan 31 -> Feb 28, or Feb 29 in a leap
// year).
func NextDueDate(due time.Time, pattern model.Recurrence) time.Time {
	switch pattern {
	case model.RecurDaily:
		return due.AddDate(0, 0, 1)
	case model.RecurWeekly:
		return due.AddDate(0, 0, 7)
	case model.RecurMonthly:
		return nextMonthClamped(due)
	}
	return due
}

func nextMonthClamped(due time.Time) time.Time {
	year, month, day := due.Date()
	// Day 0 of the month after next is the last day of the next month.
	last := time.Date(year, month+2, 0, 0, 0, 0, 0, due.Location()).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month+1, day,
		due.Hour(), due.Minute(), due.Second(), due.Nanosecond(), due.Location())
}
