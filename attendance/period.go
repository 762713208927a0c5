/*
period.go - Closing-day calculation periods

PURPOSE:
  A report period is NOT a calendar month. Each user has a closing day
  (1..31); the period labeled 2025-04 for a user closing on the 20th runs
  from March 21 through April 20 inclusive.

CLAMPING:
  Closing days 29..31 are clamped to the last day of short months, so a
  user closing on the 31st effectively closes at the end of every month.
*/
package attendance

import "time"

// =============================================================================
// PERIOD - Inclusive civil date range
// =============================================================================

type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the instant falls within [Start, End] treating
// End as the whole closing day.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End.AddDate(0, 0, 1))
}

func (p Period) String() string {
	return "[" + p.Start.Format("2006-01-02") + ", " + p.End.Format("2006-01-02") + "]"
}

// =============================================================================
// PERIOD CALCULATION
// =============================================================================

// PeriodFor computes the date boundaries of a labeled period: the day after
// the previous month's closing day through this month's closing day.
func PeriodFor(ym YearMonth, closingDay int) Period {
	prev := ym.Previous()
	start := closingDate(prev, closingDay).AddDate(0, 0, 1)
	end := closingDate(ym, closingDay)
	return Period{Start: start, End: end}
}

func closingDate(ym YearMonth, closingDay int) time.Time {
	last := daysInMonth(ym)
	day := closingDay
	if day < 1 {
		day = last
	}
	if day > last {
		day = last
	}
	return time.Date(ym.Year, ym.Month, day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(ym YearMonth) int {
	return time.Date(ym.Year, ym.Month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1).Day()
}

// DateOf truncates an instant to its civil date at midnight UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsHolidayDate classifies a date as a holiday. This system has no holiday
// calendar: Saturday and Sunday are the holidays, everything else is a
// workday.
func IsHolidayDate(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
