/*
store.go - Persistence interfaces for reports and location pings

PURPOSE:
  The boundary between the attendance core and its collaborators. The core
  never touches a database directly: it reads sorted ping timestamps from a
  LocationSource and persists reports through a ReportStore.

CONTRACTS:
  - TimestampsInPeriod returns an ascending slice; empty means "no data"
    and is never an error
  - Find returns (nil, nil) for absence
  - Save and Update are all-or-nothing: a report with its details is either
    fully persisted or not at all

IMPLEMENTATIONS:
  - store/memory: in-memory, for tests and dev
  - store/sqlite: production SQLite
*/
package attendance

import (
	"context"
	"time"
)

// LocationSource supplies raw ping timestamps for report generation.
// Geofencing and distance filtering happen upstream; by the time pings
// reach this interface they are plain instants.
type LocationSource interface {
	// TimestampsInPeriod returns the user's ping timestamps within the
	// period, ascending. An empty slice means no data.
	TimestampsInPeriod(ctx context.Context, period Period, userID string) ([]time.Time, error)
}

// PingRecorder is the write side of the location source.
type PingRecorder interface {
	RecordPing(ctx context.Context, userID string, at time.Time, lat, lon float64) error
}

// ReportStore persists attendance reports together with their details.
type ReportStore interface {
	// Find returns the report for (user, period) or (nil, nil) when absent.
	Find(ctx context.Context, period YearMonth, userID string) (*Report, error)

	Save(ctx context.Context, report Report) error
	Update(ctx context.Context, report Report) error
	Delete(ctx context.Context, period YearMonth, userID string) error

	// ListByUser returns all of the user's reports, newest period first.
	ListByUser(ctx context.Context, userID string) ([]Report, error)
}
