/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All attendance error conditions in one place. Callers branch with
  errors.Is / errors.As; the API layer maps them to HTTP statuses via the
  classification helpers at the bottom.

ERROR CATEGORIES:
  1. Validation errors     - bad input, rejected before any computation
  2. Business-rule errors  - expected, recoverable conflicts
  3. Not-found errors      - missing report for an identifier

SEE ALSO:
  - workrule/errors.go: rule-side error taxonomy
  - api/handlers.go:    HTTP status mapping
*/
package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrTimestampsOutOfOrder is returned when the location source yields a
	// non-chronological sequence. The input is rejected, never re-sorted.
	ErrTimestampsOutOfOrder = errors.New("timestamps out of chronological order")

	// ErrInvalidGranularity is returned for rounding granularities outside 1..60.
	ErrInvalidGranularity = errors.New("rounding granularity must be between 1 and 60 minutes")

	// ErrDuplicateReport is returned when a report already exists for the
	// (user, period). The existing report is left untouched.
	ErrDuplicateReport = errors.New("report already exists for period")

	// ErrReportNotFound is returned when no report exists for the (user, period).
	ErrReportNotFound = errors.New("report not found")

	// ErrReportLocked is returned when a mutation targets a submitted or
	// approved report.
	ErrReportLocked = errors.New("report is submitted or approved")

	// ErrInvalidStatusTransition is returned for out-of-order lifecycle moves
	// (e.g. approving a report that was never submitted).
	ErrInvalidStatusTransition = errors.New("invalid report status transition")

	// ErrDetailNotFound is returned when annotating a date the report has no
	// detail for.
	ErrDetailNotFound = errors.New("no detail for date")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateReportError identifies which (user, period) already has a report.
type DuplicateReportError struct {
	UserID string
	Period YearMonth
}

func (e *DuplicateReportError) Error() string {
	return fmt.Sprintf("report already exists for user %s period %s", e.UserID, e.Period)
}

func (e *DuplicateReportError) Unwrap() error { return ErrDuplicateReport }

// LockedReportError carries the status that blocked a mutation.
type LockedReportError struct {
	UserID string
	Period YearMonth
	Status Status
}

func (e *LockedReportError) Error() string {
	return fmt.Sprintf("report %s/%s is %s and cannot be modified", e.UserID, e.Period, e.Status)
}

func (e *LockedReportError) Unwrap() error { return ErrReportLocked }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrTimestampsOutOfOrder) ||
		errors.Is(err, ErrInvalidGranularity)
}

// IsConflict returns true for expected business-rule violations.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateReport) ||
		errors.Is(err, ErrReportLocked) ||
		errors.Is(err, ErrInvalidStatusTransition)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrReportNotFound) ||
		errors.Is(err, ErrDetailNotFound)
}
