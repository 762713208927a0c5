/*
Package attendance provides the core attendance reconstruction engine.

PURPOSE:
  This package contains the domain types and algorithms that turn a stream
  of raw location pings into monthly attendance reports: session
  segmentation, boundary rounding, regular/overtime/holiday-work breakdown,
  and period-level summaries.

KEY CONCEPTS IN THIS FILE (types.go):
  - YearMonth: the label of a calculation period (not a calendar month;
    boundaries come from the user's closing day, see period.go)
  - Detail:   one day's attendance record, immutable once in a report
  - Report:   all details for a (user, period) plus a derived Summary
  - Summary:  aggregate totals, recomputed whenever details change

DESIGN PRINCIPLES:
  1. Derived data is recomputed, never independently mutated (Summary)
  2. Reports are status-gated: details never change once submitted
  3. Decimal hour views use decimal.Decimal to avoid float drift in totals

SEE ALSO:
  - session.go:   raw timestamps to sessions
  - rounding.go:  boundary rounding policies
  - breakdown.go: worked/overtime/holiday-work split
  - assembler.go: orchestration and report lifecycle
*/
package attendance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// YEAR MONTH - Label of a calculation period
// =============================================================================

// YearMonth identifies a calculation period. The actual date boundaries
// depend on the owning user's closing day (see PeriodFor).
type YearMonth struct {
	Year  int
	Month time.Month
}

func NewYearMonth(year int, month time.Month) YearMonth {
	return YearMonth{Year: year, Month: month}
}

// ParseYearMonth parses the "2006-01" wire format.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year-month %q (use YYYY-MM): %w", s, err)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Previous returns the preceding calendar month label.
func (ym YearMonth) Previous() YearMonth {
	t := time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// =============================================================================
// REPORT STATUS
// =============================================================================

type Status string

const (
	StatusNotSubmitted Status = "not_submitted"
	StatusSubmitted    Status = "submitted"
	StatusApproved     Status = "approved"
)

// Mutable reports whether details of a report in this status may change.
// Submitted and approved reports are locked.
func (s Status) Mutable() bool { return s == StatusNotSubmitted }

// =============================================================================
// LEAVE CATEGORY
// =============================================================================

type LeaveCategory string

const (
	LeaveNone    LeaveCategory = ""
	LeavePaid    LeaveCategory = "paid"
	LeaveSick    LeaveCategory = "sick"
	LeaveSpecial LeaveCategory = "special"
)

// =============================================================================
// DETAIL - One day's attendance record
// =============================================================================

// Detail records the attendance of a single session day. A day with more
// than one session yields more than one detail; summaries deduplicate by
// date when counting days.
type Detail struct {
	Date          time.Time // civil date, midnight UTC
	IsHoliday     bool
	LeaveCategory LeaveCategory
	StartTime     time.Time
	EndTime       time.Time
	Worked        time.Duration
	Overtime      time.Duration
	HolidayWork   time.Duration
	Note          string
}

// =============================================================================
// REPORT - All details for one (user, period)
// =============================================================================

type Report struct {
	ID        string
	UserID    string
	Period    YearMonth
	Status    Status
	Details   []Detail
	Summary   Summary
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// SUMMARY - Derived aggregate totals
// =============================================================================

// Summary holds the aggregate totals of a report. It is derived from the
// details and must be recomputed via Summarize whenever they change.
type Summary struct {
	WorkedDays       int
	LeaveDays        int
	TotalWorked      time.Duration
	TotalOvertime    time.Duration
	TotalHolidayWork time.Duration
}

// Summarize recomputes a Summary from details. Day counts are over distinct
// dates, so two sessions on the same day count as one worked day.
func Summarize(details []Detail) Summary {
	var s Summary
	workedDates := make(map[string]bool)
	leaveDates := make(map[string]bool)
	for _, d := range details {
		key := d.Date.Format("2006-01-02")
		if d.LeaveCategory != LeaveNone {
			leaveDates[key] = true
		} else {
			workedDates[key] = true
		}
		s.TotalWorked += d.Worked
		s.TotalOvertime += d.Overtime
		s.TotalHolidayWork += d.HolidayWork
	}
	s.WorkedDays = len(workedDates)
	s.LeaveDays = len(leaveDates)
	return s
}

// Decimal hour views for API responses. Durations stay exact internally;
// only the presentation is rounded.

func (s Summary) WorkedHours() decimal.Decimal      { return hours(s.TotalWorked) }
func (s Summary) OvertimeHours() decimal.Decimal    { return hours(s.TotalOvertime) }
func (s Summary) HolidayWorkHours() decimal.Decimal { return hours(s.TotalHolidayWork) }

func hours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d / time.Minute)).Div(decimal.NewFromInt(60)).Round(2)
}
