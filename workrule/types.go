/*
Package workrule manages work-time rules and their membership periods.

PURPOSE:
  A WorkRule defines the contracted workday for a user at a workplace:
  standard start/end clock times, an optional break window, and the
  membership period during which the rule is in effect. A user may own
  several rules, but their membership periods must never overlap - that
  invariant is enforced at registration and update time (overlap.go).

KEY CONCEPTS IN THIS FILE (types.go):
  - ClockTime:        minutes since midnight, the rule's time-of-day unit
  - MembershipPeriod: inclusive civil date range a rule is effective for
  - WorkRule:         the persisted rule entity
  - Info:             tagged resolve result ("rule or nothing"), the Valid
                      flag makes default substitution an explicit branch
  - Settings:         per-user closing day and rounding granularity

SEE ALSO:
  - overlap.go:  membership period overlap validation
  - resolver.go: effective-rule lookup for a (user, date)
  - service.go:  registration/update/delete with ownership checks
*/
package workrule

import (
	"fmt"
	"time"
)

// =============================================================================
// CLOCK TIME - Minutes since midnight
// =============================================================================

// ClockTime is a time of day with minute precision, independent of any date.
type ClockTime int

// ParseClockTime parses the "15:04" wire format.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q (use HH:MM): %w", s, err)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Sub returns the duration from other to c.
func (c ClockTime) Sub(other ClockTime) time.Duration {
	return time.Duration(int(c)-int(other)) * time.Minute
}

// =============================================================================
// MEMBERSHIP PERIOD - Inclusive effective date range
// =============================================================================

type MembershipPeriod struct {
	Start time.Time // civil date, midnight UTC
	End   time.Time // civil date, midnight UTC, inclusive
}

func (p MembershipPeriod) Validate() error {
	if p.Start.After(p.End) {
		return ErrInvalidMembership
	}
	return nil
}

// Contains reports whether the date falls within [Start, End].
func (p MembershipPeriod) Contains(date time.Time) bool {
	d := truncateDate(date)
	return !d.Before(truncateDate(p.Start)) && !d.After(truncateDate(p.End))
}

// Overlaps reports whether two closed ranges share any day. A period ending
// the same day another begins counts as overlapping.
func (p MembershipPeriod) Overlaps(other MembershipPeriod) bool {
	return !truncateDate(p.Start).After(truncateDate(other.End)) &&
		!truncateDate(other.Start).After(truncateDate(p.End))
}

func (p MembershipPeriod) String() string {
	return "[" + p.Start.Format("2006-01-02") + ", " + p.End.Format("2006-01-02") + "]"
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// WORK RULE - Persisted rule entity
// =============================================================================

type WorkRule struct {
	ID          string
	WorkplaceID string
	UserID      string
	Latitude    float64
	Longitude   float64

	StandardStart ClockTime
	StandardEnd   ClockTime

	// Break window; both nil means no configured break.
	BreakStart *ClockTime
	BreakEnd   *ClockTime

	Membership MembershipPeriod
}

// StandardDuration is the contracted workday length, end minus start,
// independent of the break window.
func (r WorkRule) StandardDuration() time.Duration {
	return r.StandardEnd.Sub(r.StandardStart)
}

// BreakDuration is the break window length, or zero when none is configured.
func (r WorkRule) BreakDuration() time.Duration {
	if r.BreakStart == nil || r.BreakEnd == nil {
		return 0
	}
	return r.BreakEnd.Sub(*r.BreakStart)
}

func (r WorkRule) Validate() error {
	if r.StandardEnd <= r.StandardStart {
		return ErrInvalidStandardTime
	}
	if (r.BreakStart == nil) != (r.BreakEnd == nil) {
		return ErrInvalidBreakTime
	}
	if r.BreakStart != nil && *r.BreakEnd <= *r.BreakStart {
		return ErrInvalidBreakTime
	}
	return r.Membership.Validate()
}

// =============================================================================
// INFO - Tagged resolve result
// =============================================================================

// Info is the outcome of resolving the effective rule for a (user, date).
// Valid == false means no rule covered the date; callers substitute the
// system defaults explicitly.
type Info struct {
	Standard time.Duration
	Break    time.Duration
	Valid    bool
}

// =============================================================================
// SETTINGS - Per-user report configuration
// =============================================================================

const (
	// DefaultClosingDay of 31 clamps to the last day of every month.
	DefaultClosingDay = 31

	DefaultRoundingGranularityMinutes = 1
)

type Settings struct {
	UserID                     string
	ClosingDay                 int
	RoundingGranularityMinutes int
}

func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:                     userID,
		ClosingDay:                 DefaultClosingDay,
		RoundingGranularityMinutes: DefaultRoundingGranularityMinutes,
	}
}

func (s Settings) Validate() error {
	if s.ClosingDay < 1 || s.ClosingDay > 31 {
		return ErrInvalidClosingDay
	}
	if s.RoundingGranularityMinutes < 1 || s.RoundingGranularityMinutes > 60 {
		return ErrInvalidRounding
	}
	return nil
}
