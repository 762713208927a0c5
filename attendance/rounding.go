/*
rounding.go - Boundary rounding policies

PURPOSE:
  Rounds session boundary timestamps to a configured granularity. The
  current production policy is minute-granularity ceiling rounding: an
  instant is pushed forward to the next multiple of the granularity, and
  left unchanged when it already sits on a boundary.

CONTRACT:
  - Stateless and consistent: start and end boundaries round independently
    through the same function
  - Idempotent: Round(Round(t)) == Round(t)
  - Sub-minute precision is truncated before rounding, so granularity 1 is
    the identity on whole minutes

PLUGGABILITY:
  Policy is an interface; CeilingPolicy is the minute-based production
  variant, FixedUnitPolicy rounds to an arbitrary fixed time unit.
*/
package attendance

import "time"

// =============================================================================
// POLICY - Capability: given an instant, return a rounded instant
// =============================================================================

type Policy interface {
	Round(t time.Time) time.Time
}

// =============================================================================
// CEILING POLICY - Minute-granularity ceiling rounding
// =============================================================================

// CeilingPolicy rounds up to the next multiple of GranularityMinutes,
// measured from the epoch minute. Construct via NewCeilingPolicy to get
// the 1..60 range check.
type CeilingPolicy struct {
	GranularityMinutes int
}

func NewCeilingPolicy(granularityMinutes int) (CeilingPolicy, error) {
	if granularityMinutes < 1 || granularityMinutes > 60 {
		return CeilingPolicy{}, ErrInvalidGranularity
	}
	return CeilingPolicy{GranularityMinutes: granularityMinutes}, nil
}

func (p CeilingPolicy) Round(t time.Time) time.Time {
	return ceilTo(t, time.Duration(p.GranularityMinutes)*time.Minute)
}

// =============================================================================
// FIXED UNIT POLICY - Ceiling to an arbitrary duration unit
// =============================================================================

// FixedUnitPolicy satisfies the same contract shape for a fixed time unit
// (e.g. 90s billing units). A zero or negative unit degrades to one minute.
type FixedUnitPolicy struct {
	Unit time.Duration
}

func (p FixedUnitPolicy) Round(t time.Time) time.Time {
	unit := p.Unit
	if unit <= 0 {
		unit = time.Minute
	}
	return ceilTo(t, unit)
}

// ceilTo truncates sub-minute precision, then pushes forward to the next
// multiple of unit since the epoch. Exact boundaries are unchanged, which
// makes the operation idempotent.
func ceilTo(t time.Time, unit time.Duration) time.Time {
	t = t.Truncate(time.Minute)
	floored := t.Truncate(unit)
	if floored.Equal(t) {
		return t
	}
	return floored.Add(unit)
}
