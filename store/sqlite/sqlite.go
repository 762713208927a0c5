/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements attendance.LocationSource, attendance.PingRecorder,
  attendance.ReportStore, workrule.Store and workrule.SettingsStore over
  database/sql. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  location_pings: Raw ping timestamps with coordinates
  reports:        One row per (user, period) with status
  report_details: Per-day attendance records belonging to a report
  work_rules:     Rule definitions with membership periods
  user_settings:  Closing day and rounding granularity per user

ATOMICITY:
  Saving or updating a report writes the report row and all its detail
  rows inside a single SQL transaction. A report is either fully persisted
  or not persisted at all.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - attendance/store.go: interface definitions
  - workrule/store.go:   interface definitions
  - store/memory:        in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/workrule"
)

const (
	dateFormat = "2006-01-02"
	timeFormat = time.RFC3339
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Raw location pings (append-only; reports are derived from these)
	CREATE TABLE IF NOT EXISTS location_pings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL
	);

	-- Hot path: period-range scans per user, already ordered
	CREATE INDEX IF NOT EXISTS idx_pings_user_recorded
		ON location_pings(user_id, recorded_at);

	-- Attendance reports, one per (user, period)
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		period TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, period)
	);

	-- Per-day records belonging to a report
	CREATE TABLE IF NOT EXISTS report_details (
		user_id TEXT NOT NULL,
		period TEXT NOT NULL,
		seq INTEGER NOT NULL,
		date TEXT NOT NULL,
		is_holiday INTEGER NOT NULL,
		leave_category TEXT NOT NULL DEFAULT '',
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		worked_seconds INTEGER NOT NULL,
		overtime_seconds INTEGER NOT NULL,
		holiday_work_seconds INTEGER NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, period, seq),
		FOREIGN KEY (user_id, period) REFERENCES reports(user_id, period) ON DELETE CASCADE
	);

	-- Work rules with membership periods
	CREATE TABLE IF NOT EXISTS work_rules (
		id TEXT PRIMARY KEY,
		workplace_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		standard_start INTEGER NOT NULL,
		standard_end INTEGER NOT NULL,
		break_start INTEGER,
		break_end INTEGER,
		membership_start TEXT NOT NULL,
		membership_end TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_work_rules_user
		ON work_rules(user_id, membership_start);

	-- Per-user report settings
	CREATE TABLE IF NOT EXISTS user_settings (
		user_id TEXT PRIMARY KEY,
		closing_day INTEGER NOT NULL,
		rounding_granularity_minutes INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOCATION PINGS
// =============================================================================

// RecordPing appends a raw ping.
func (s *Store) RecordPing(ctx context.Context, userID string, at time.Time, lat, lon float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO location_pings (id, user_id, recorded_at, latitude, longitude)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, at.UTC().Format(timeFormat), lat, lon)
	return err
}

// TimestampsInPeriod returns ping timestamps within the period, ascending.
func (s *Store) TimestampsInPeriod(ctx context.Context, period attendance.Period, userID string) ([]time.Time, error) {
	from := period.Start.UTC().Format(timeFormat)
	// Exclusive upper bound one day past End keeps the whole closing day.
	to := period.End.AddDate(0, 0, 1).UTC().Format(timeFormat)

	rows, err := s.db.QueryContext(ctx, `
		SELECT recorded_at FROM location_pings
		WHERE user_id = ? AND recorded_at >= ? AND recorded_at < ?
		ORDER BY recorded_at ASC`,
		userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		ts, err := time.Parse(timeFormat, raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt recorded_at %q: %w", raw, err)
		}
		result = append(result, ts)
	}
	return result, rows.Err()
}

// =============================================================================
// REPORTS
// =============================================================================

func (s *Store) Find(ctx context.Context, period attendance.YearMonth, userID string) (*attendance.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, status, created_at, updated_at FROM reports
		WHERE user_id = ? AND period = ?`,
		userID, period.String())

	var report attendance.Report
	var status, createdAt, updatedAt string
	err := row.Scan(&report.ID, &status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	report.UserID = userID
	report.Period = period
	report.Status = attendance.Status(status)
	if report.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, err
	}
	if report.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		return nil, err
	}

	if report.Details, err = s.loadDetails(ctx, period, userID); err != nil {
		return nil, err
	}
	report.Summary = attendance.Summarize(report.Details)
	return &report, nil
}

func (s *Store) loadDetails(ctx context.Context, period attendance.YearMonth, userID string) ([]attendance.Detail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, is_holiday, leave_category, start_time, end_time,
		       worked_seconds, overtime_seconds, holiday_work_seconds, note
		FROM report_details
		WHERE user_id = ? AND period = ?
		ORDER BY seq ASC`,
		userID, period.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []attendance.Detail
	for rows.Next() {
		var d attendance.Detail
		var date, leave, start, end string
		var holiday int
		var worked, overtime, holidayWork int64
		if err := rows.Scan(&date, &holiday, &leave, &start, &end,
			&worked, &overtime, &holidayWork, &d.Note); err != nil {
			return nil, err
		}
		if d.Date, err = time.Parse(dateFormat, date); err != nil {
			return nil, err
		}
		if d.StartTime, err = time.Parse(timeFormat, start); err != nil {
			return nil, err
		}
		if d.EndTime, err = time.Parse(timeFormat, end); err != nil {
			return nil, err
		}
		d.IsHoliday = holiday != 0
		d.LeaveCategory = attendance.LeaveCategory(leave)
		d.Worked = time.Duration(worked) * time.Second
		d.Overtime = time.Duration(overtime) * time.Second
		d.HolidayWork = time.Duration(holidayWork) * time.Second
		details = append(details, d)
	}
	return details, rows.Err()
}

// Save persists a new report with its details atomically.
func (s *Store) Save(ctx context.Context, report attendance.Report) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reports (id, user_id, period, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			report.ID, report.UserID, report.Period.String(), string(report.Status),
			report.CreatedAt.UTC().Format(timeFormat), report.UpdatedAt.UTC().Format(timeFormat))
		if err != nil {
			return err
		}
		return insertDetails(ctx, tx, report)
	})
}

// Update replaces an existing report and its details atomically.
func (s *Store) Update(ctx context.Context, report attendance.Report) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE reports SET status = ?, updated_at = ?
			WHERE user_id = ? AND period = ?`,
			string(report.Status), report.UpdatedAt.UTC().Format(timeFormat),
			report.UserID, report.Period.String())
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return attendance.ErrReportNotFound
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM report_details WHERE user_id = ? AND period = ?`,
			report.UserID, report.Period.String()); err != nil {
			return err
		}
		return insertDetails(ctx, tx, report)
	})
}

func insertDetails(ctx context.Context, tx *sql.Tx, report attendance.Report) error {
	for i, d := range report.Details {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO report_details
				(user_id, period, seq, date, is_holiday, leave_category,
				 start_time, end_time, worked_seconds, overtime_seconds,
				 holiday_work_seconds, note)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.UserID, report.Period.String(), i,
			d.Date.Format(dateFormat), boolToInt(d.IsHoliday), string(d.LeaveCategory),
			d.StartTime.UTC().Format(timeFormat), d.EndTime.UTC().Format(timeFormat),
			int64(d.Worked/time.Second), int64(d.Overtime/time.Second),
			int64(d.HolidayWork/time.Second), d.Note)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, period attendance.YearMonth, userID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM report_details WHERE user_id = ? AND period = ?`,
			userID, period.String()); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			DELETE FROM reports WHERE user_id = ? AND period = ?`,
			userID, period.String())
		return err
	})
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]attendance.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT period FROM reports WHERE user_id = ? ORDER BY period DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []attendance.YearMonth
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		ym, err := attendance.ParseYearMonth(raw)
		if err != nil {
			return nil, err
		}
		periods = append(periods, ym)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reports := make([]attendance.Report, 0, len(periods))
	for _, ym := range periods {
		r, err := s.Find(ctx, ym, userID)
		if err != nil {
			return nil, err
		}
		if r != nil {
			reports = append(reports, *r)
		}
	}
	return reports, nil
}

// =============================================================================
// WORK RULES
// =============================================================================

func (s *Store) FindByUser(ctx context.Context, userID string) ([]workrule.WorkRule, error) {
	return s.queryRules(ctx, `
		SELECT id, workplace_id, user_id, latitude, longitude,
		       standard_start, standard_end, break_start, break_end,
		       membership_start, membership_end
		FROM work_rules WHERE user_id = ?
		ORDER BY membership_start ASC`, userID)
}

func (s *Store) FindByID(ctx context.Context, id string) (*workrule.WorkRule, error) {
	rules, err := s.queryRules(ctx, `
		SELECT id, workplace_id, user_id, latitude, longitude,
		       standard_start, standard_end, break_start, break_end,
		       membership_start, membership_end
		FROM work_rules WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}
	return &rules[0], nil
}

func (s *Store) queryRules(ctx context.Context, query string, args ...any) ([]workrule.WorkRule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []workrule.WorkRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func scanRule(rows *sql.Rows) (workrule.WorkRule, error) {
	var r workrule.WorkRule
	var stdStart, stdEnd int
	var brkStart, brkEnd sql.NullInt64
	var memStart, memEnd string

	err := rows.Scan(&r.ID, &r.WorkplaceID, &r.UserID, &r.Latitude, &r.Longitude,
		&stdStart, &stdEnd, &brkStart, &brkEnd, &memStart, &memEnd)
	if err != nil {
		return r, err
	}

	r.StandardStart = workrule.ClockTime(stdStart)
	r.StandardEnd = workrule.ClockTime(stdEnd)
	if brkStart.Valid && brkEnd.Valid {
		bs := workrule.ClockTime(brkStart.Int64)
		be := workrule.ClockTime(brkEnd.Int64)
		r.BreakStart = &bs
		r.BreakEnd = &be
	}
	if r.Membership.Start, err = time.Parse(dateFormat, memStart); err != nil {
		return r, err
	}
	if r.Membership.End, err = time.Parse(dateFormat, memEnd); err != nil {
		return r, err
	}
	return r, nil
}

func (s *Store) SaveRule(ctx context.Context, rule workrule.WorkRule) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO work_rules
			(id, workplace_id, user_id, latitude, longitude,
			 standard_start, standard_end, break_start, break_end,
			 membership_start, membership_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.WorkplaceID, rule.UserID, rule.Latitude, rule.Longitude,
		int(rule.StandardStart), int(rule.StandardEnd),
		clockPtr(rule.BreakStart), clockPtr(rule.BreakEnd),
		rule.Membership.Start.Format(dateFormat), rule.Membership.End.Format(dateFormat))
	return err
}

func (s *Store) UpdateRule(ctx context.Context, rule workrule.WorkRule) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE work_rules SET
			workplace_id = ?, latitude = ?, longitude = ?,
			standard_start = ?, standard_end = ?, break_start = ?, break_end = ?,
			membership_start = ?, membership_end = ?
		WHERE id = ?`,
		rule.WorkplaceID, rule.Latitude, rule.Longitude,
		int(rule.StandardStart), int(rule.StandardEnd),
		clockPtr(rule.BreakStart), clockPtr(rule.BreakEnd),
		rule.Membership.Start.Format(dateFormat), rule.Membership.End.Format(dateFormat),
		rule.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return workrule.ErrRuleNotFound
	}
	return nil
}

func (s *Store) DeleteRule(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM work_rules WHERE id = ?`, id)
	return err
}

// =============================================================================
// USER SETTINGS
// =============================================================================

func (s *Store) FindSettings(ctx context.Context, userID string) (*workrule.Settings, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT closing_day, rounding_granularity_minutes
		FROM user_settings WHERE user_id = ?`, userID)

	settings := workrule.Settings{UserID: userID}
	err := row.Scan(&settings.ClosingDay, &settings.RoundingGranularityMinutes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings workrule.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, closing_day, rounding_granularity_minutes)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			closing_day = excluded.closing_day,
			rounding_granularity_minutes = excluded.rounding_granularity_minutes`,
		settings.UserID, settings.ClosingDay, settings.RoundingGranularityMinutes)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

// Reset wipes all tables (dev/test only).
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"report_details", "reports", "location_pings", "work_rules", "user_settings"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func clockPtr(c *workrule.ClockTime) any {
	if c == nil {
		return nil
	}
	return int(*c)
}
