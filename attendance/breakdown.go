/*
breakdown.go - Worked / overtime / holiday-work split

PURPOSE:
  Splits a session's total worked duration into the three reporting
  buckets, given the work rule resolved for that day. When no rule applies
  (Info.Valid == false) the system defaults substitute: 7h30m standard
  work, 1h break. The fallback is an explicit branch on the Valid tag, not
  null handling.

POLICY:
  Holiday (Saturday/Sunday by the rounded start date):
    overtime    = 0
    holidayWork = total           (break time is NOT subtracted)
  Weekday:
    effective   = max(0, total - break)
    overtime    = max(0, effective - standard)
    holidayWork = 0
*/
package attendance

import (
	"time"

	"github.com/warp/attendance-engine/workrule"
)

// System defaults applied when no work rule covers the session's date.
const (
	DefaultStandardWork = 7*time.Hour + 30*time.Minute
	DefaultBreak        = time.Hour
)

// Breakdown is the result of splitting a session's worked time.
type Breakdown struct {
	Overtime    time.Duration
	HolidayWork time.Duration
}

// ComputeBreakdown applies the split policy to a session's total worked
// duration. info may be the invalid zero value; defaults substitute then.
func ComputeBreakdown(total time.Duration, isHoliday bool, info workrule.Info) Breakdown {
	standard := DefaultStandardWork
	brk := DefaultBreak
	if info.Valid {
		standard = info.Standard
		brk = info.Break
	}

	if isHoliday {
		return Breakdown{HolidayWork: total}
	}

	effective := total - brk
	if effective < 0 {
		effective = 0
	}
	overtime := effective - standard
	if overtime < 0 {
		overtime = 0
	}
	return Breakdown{Overtime: overtime}
}
