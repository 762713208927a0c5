/*
Package memory provides an in-memory implementation of every store
interface (for testing/dev).

PURPOSE:
  Implements attendance.LocationSource, attendance.PingRecorder,
  attendance.ReportStore, workrule.Store and workrule.SettingsStore over
  plain maps with an RWMutex. Pings are kept sorted on insert so reads
  come back ascending, matching the LocationSource contract.

USAGE:
  store := memory.New()
  svc := attendance.NewService(store, store, workrule.NewResolver(store, store))
*/
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/workrule"
)

type reportKey struct {
	UserID string
	Period string
}

// Store is the in-memory implementation of all persistence interfaces.
type Store struct {
	mu       sync.RWMutex
	pings    map[string][]time.Time
	reports  map[reportKey]attendance.Report
	rules    map[string]workrule.WorkRule
	settings map[string]workrule.Settings
}

func New() *Store {
	return &Store{
		pings:    make(map[string][]time.Time),
		reports:  make(map[reportKey]attendance.Report),
		rules:    make(map[string]workrule.WorkRule),
		settings: make(map[string]workrule.Settings),
	}
}

// =============================================================================
// LOCATION PINGS
// =============================================================================

// RecordPing stores a ping timestamp, keeping the per-user slice sorted.
// Coordinates are accepted for interface parity but not retained; distance
// filtering happens before pings reach the engine.
func (m *Store) RecordPing(_ context.Context, userID string, at time.Time, _, _ float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts := m.pings[userID]
	i := sort.Search(len(ts), func(i int) bool { return ts[i].After(at) })
	ts = append(ts, time.Time{})
	copy(ts[i+1:], ts[i:])
	ts[i] = at
	m.pings[userID] = ts
	return nil
}

func (m *Store) TimestampsInPeriod(_ context.Context, period attendance.Period, userID string) ([]time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []time.Time
	for _, ts := range m.pings[userID] {
		if period.Contains(ts) {
			result = append(result, ts)
		}
	}
	return result, nil
}

// =============================================================================
// REPORTS
// =============================================================================

func (m *Store) Find(_ context.Context, period attendance.YearMonth, userID string) (*attendance.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reports[reportKey{UserID: userID, Period: period.String()}]
	if !ok {
		return nil, nil
	}
	out := copyReport(r)
	return &out, nil
}

func (m *Store) Save(_ context.Context, report attendance.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[reportKey{UserID: report.UserID, Period: report.Period.String()}] = copyReport(report)
	return nil
}

func (m *Store) Update(ctx context.Context, report attendance.Report) error {
	return m.Save(ctx, report)
}

func (m *Store) Delete(_ context.Context, period attendance.YearMonth, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reports, reportKey{UserID: userID, Period: period.String()})
	return nil
}

func (m *Store) ListByUser(_ context.Context, userID string) ([]attendance.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []attendance.Report
	for k, r := range m.reports {
		if k.UserID == userID {
			result = append(result, copyReport(r))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Period.String() > result[j].Period.String()
	})
	return result, nil
}

// copyReport deep-copies the details slice so callers cannot mutate stored
// state through returned values.
func copyReport(r attendance.Report) attendance.Report {
	details := make([]attendance.Detail, len(r.Details))
	copy(details, r.Details)
	r.Details = details
	return r
}

// =============================================================================
// WORK RULES
// =============================================================================

func (m *Store) FindByUser(_ context.Context, userID string) ([]workrule.WorkRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []workrule.WorkRule
	for _, r := range m.rules {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Membership.Start.Before(result[j].Membership.Start)
	})
	return result, nil
}

func (m *Store) FindByID(_ context.Context, id string) (*workrule.WorkRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rules[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Store) SaveRule(_ context.Context, rule workrule.WorkRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[rule.ID] = rule
	return nil
}

func (m *Store) UpdateRule(_ context.Context, rule workrule.WorkRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[rule.ID]; !ok {
		return workrule.ErrRuleNotFound
	}
	m.rules[rule.ID] = rule
	return nil
}

func (m *Store) DeleteRule(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rules, id)
	return nil
}

// =============================================================================
// USER SETTINGS
// =============================================================================

func (m *Store) FindSettings(_ context.Context, userID string) (*workrule.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.settings[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Store) SaveSettings(_ context.Context, s workrule.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.UserID] = s
	return nil
}
