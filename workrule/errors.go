/*
errors.go - Error types for work rule management

PURPOSE:
  Named failure conditions for rule registration, update and resolution.
  The overlap conflict carries the conflicting rule's identity so callers
  can point at the offending assignment.
*/
package workrule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrRuleNotFound is returned when a referenced rule does not exist.
	ErrRuleNotFound = errors.New("work rule not found")

	// ErrNotOwner is returned when a rule mutation is attempted by a user
	// other than the rule's owner.
	ErrNotOwner = errors.New("work rule belongs to a different user")

	// ErrOverlappingMembership is returned when a candidate membership
	// period overlaps an existing rule of the same user.
	ErrOverlappingMembership = errors.New("membership period overlaps an existing rule")

	// ErrInvalidMembership is returned when a membership period ends before
	// it starts.
	ErrInvalidMembership = errors.New("invalid membership period: end before start")

	// ErrInvalidStandardTime is returned when the standard end time is not
	// after the start time.
	ErrInvalidStandardTime = errors.New("standard end time must be after start time")

	// ErrInvalidBreakTime is returned for half-configured or inverted break
	// windows.
	ErrInvalidBreakTime = errors.New("invalid break window")

	// ErrInvalidClosingDay is returned for closing days outside 1..31.
	ErrInvalidClosingDay = errors.New("closing day must be between 1 and 31")

	// ErrInvalidRounding is returned for rounding granularities outside 1..60.
	ErrInvalidRounding = errors.New("rounding granularity must be between 1 and 60 minutes")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OverlapError identifies which existing rule conflicts with the candidate.
type OverlapError struct {
	UserID        string
	ConflictingID string
	Candidate     MembershipPeriod
	Existing      MembershipPeriod
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("membership period %s overlaps rule %s (%s) for user %s",
		e.Candidate, e.ConflictingID, e.Existing, e.UserID)
}

func (e *OverlapError) Unwrap() error { return ErrOverlappingMembership }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidMembership) ||
		errors.Is(err, ErrInvalidStandardTime) ||
		errors.Is(err, ErrInvalidBreakTime) ||
		errors.Is(err, ErrInvalidClosingDay) ||
		errors.Is(err, ErrInvalidRounding)
}

// IsConflict returns true for expected business-rule violations.
func IsConflict(err error) bool {
	return errors.Is(err, ErrOverlappingMembership)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRuleNotFound)
}

// IsForbidden returns true for ownership violations.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrNotOwner)
}
