/*
service_test.go - End-to-end tests of report assembly and lifecycle

Each test drives the full pipeline against the in-memory store: pings in,
report out, with the rule resolver and settings in between.
*/
package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/store/memory"
	"github.com/warp/attendance-engine/workrule"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) (*attendance.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	resolver := workrule.NewResolver(store, store)
	return attendance.NewService(store, store, resolver), store
}

func recordPings(t *testing.T, store *memory.Store, userID string, from time.Time, every time.Duration, count int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < count; i++ {
		require.NoError(t, store.RecordPing(ctx, userID, from.Add(time.Duration(i)*every), 35.68, 139.76))
	}
}

var april = attendance.NewYearMonth(2025, time.April)

// =============================================================================
// GENERATION
// =============================================================================

func TestGenerateFromLocation_WeekdayOvertime(t *testing.T) {
	// GIVEN: pings every 30m from 09:00 to 18:00 on a Monday (one session, 9h)
	// WHEN:  generating the 2025-04 report with default settings and no rule
	// THEN:  effective worked 8h against the 7h30m default -> 30m overtime

	svc, store := newTestService(t)
	monday := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	recordPings(t, store, "emp-1", monday, 30*time.Minute, 19)

	report, err := svc.GenerateFromLocation(context.Background(), april, "emp-1")
	require.NoError(t, err)

	require.Len(t, report.Details, 1)
	d := report.Details[0]
	assert.False(t, d.IsHoliday)
	assert.Equal(t, 9*time.Hour, d.Worked)
	assert.Equal(t, 30*time.Minute, d.Overtime)
	assert.Equal(t, time.Duration(0), d.HolidayWork)
	assert.Equal(t, attendance.StatusNotSubmitted, report.Status)

	assert.Equal(t, 1, report.Summary.WorkedDays)
	assert.Equal(t, 30*time.Minute, report.Summary.TotalOvertime)
}

func TestGenerateFromLocation_SaturdayIsHolidayWork(t *testing.T) {
	// A 1h Saturday session is all holiday work, no overtime, no break cut.
	svc, store := newTestService(t)
	saturday := time.Date(2025, time.April, 5, 10, 0, 0, 0, time.UTC)
	recordPings(t, store, "emp-1", saturday, 30*time.Minute, 3)

	report, err := svc.GenerateFromLocation(context.Background(), april, "emp-1")
	require.NoError(t, err)

	require.Len(t, report.Details, 1)
	d := report.Details[0]
	assert.True(t, d.IsHoliday)
	assert.Equal(t, time.Hour, d.Worked)
	assert.Equal(t, time.Hour, d.HolidayWork)
	assert.Equal(t, time.Duration(0), d.Overtime)
}

func TestGenerateFromLocation_GapSplitsSessions(t *testing.T) {
	// Morning and afternoon separated by >60m become two details on one day;
	// the summary still counts one worked day.
	svc, store := newTestService(t)
	ctx := context.Background()
	day := time.Date(2025, time.April, 8, 0, 0, 0, 0, time.UTC)
	for _, hm := range [][2]int{{9, 0}, {9, 30}, {11, 30}, {12, 0}} {
		require.NoError(t, store.RecordPing(ctx, "emp-1", day.Add(time.Duration(hm[0])*time.Hour+time.Duration(hm[1])*time.Minute), 0, 0))
	}

	report, err := svc.GenerateFromLocation(ctx, april, "emp-1")
	require.NoError(t, err)

	assert.Len(t, report.Details, 2)
	assert.Equal(t, 1, report.Summary.WorkedDays)
	assert.Equal(t, time.Hour, report.Summary.TotalWorked)
}

func TestGenerateFromLocation_RoundingAppliedToBoundaries(t *testing.T) {
	// With 15m granularity, a 10:01-10:31 session becomes 10:15-10:45.
	svc, store := newTestService(t)
	ctx := context.Background()
	require.NoError(t, store.SaveSettings(ctx, workrule.Settings{
		UserID:                     "emp-1",
		ClosingDay:                 31,
		RoundingGranularityMinutes: 15,
	}))
	day := time.Date(2025, time.April, 9, 10, 1, 0, 0, time.UTC)
	recordPings(t, store, "emp-1", day, 30*time.Minute, 2)

	report, err := svc.GenerateFromLocation(ctx, april, "emp-1")
	require.NoError(t, err)

	require.Len(t, report.Details, 1)
	d := report.Details[0]
	assert.Equal(t, time.Date(2025, time.April, 9, 10, 15, 0, 0, time.UTC), d.StartTime)
	assert.Equal(t, time.Date(2025, time.April, 9, 10, 45, 0, 0, time.UTC), d.EndTime)
	assert.Equal(t, 30*time.Minute, d.Worked)
}

func TestGenerateFromLocation_ResolvedRuleApplies(t *testing.T) {
	// A registered rule (9h standard, 45m break) replaces the defaults.
	svc, store := newTestService(t)
	ctx := context.Background()

	brkStart, _ := workrule.ParseClockTime("12:00")
	brkEnd, _ := workrule.ParseClockTime("12:45")
	stdStart, _ := workrule.ParseClockTime("09:00")
	stdEnd, _ := workrule.ParseClockTime("18:00")
	require.NoError(t, store.SaveRule(ctx, workrule.WorkRule{
		ID:            "rule-1",
		WorkplaceID:   "hq",
		UserID:        "emp-1",
		StandardStart: stdStart,
		StandardEnd:   stdEnd,
		BreakStart:    &brkStart,
		BreakEnd:      &brkEnd,
		Membership: workrule.MembershipPeriod{
			Start: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
	}))

	// 10h session on a Monday: effective 9h15m against 9h standard.
	monday := time.Date(2025, time.April, 7, 8, 0, 0, 0, time.UTC)
	recordPings(t, store, "emp-1", monday, time.Hour, 11)

	report, err := svc.GenerateFromLocation(ctx, april, "emp-1")
	require.NoError(t, err)

	require.Len(t, report.Details, 1)
	assert.Equal(t, 15*time.Minute, report.Details[0].Overtime)
}

func TestGenerateFromLocation_EmptyPeriod(t *testing.T) {
	// No pings: a report with no details and a zero summary, not an error.
	svc, _ := newTestService(t)

	report, err := svc.GenerateFromLocation(context.Background(), april, "emp-1")
	require.NoError(t, err)

	assert.Empty(t, report.Details)
	assert.Equal(t, attendance.Summary{}, report.Summary)
}

func TestGenerateFromLocation_DuplicateRejected(t *testing.T) {
	// GIVEN: an existing report for (emp-1, 2025-04)
	// WHEN:  generating again
	// THEN:  duplicate error, existing report untouched

	svc, store := newTestService(t)
	ctx := context.Background()
	monday := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	recordPings(t, store, "emp-1", monday, 30*time.Minute, 3)

	first, err := svc.GenerateFromLocation(ctx, april, "emp-1")
	require.NoError(t, err)

	_, err = svc.GenerateFromLocation(ctx, april, "emp-1")
	assert.ErrorIs(t, err, attendance.ErrDuplicateReport)

	var dup *attendance.DuplicateReportError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, "emp-1", dup.UserID)

	unchanged, err := store.Find(ctx, april, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, unchanged.ID)
	assert.Equal(t, len(first.Details), len(unchanged.Details))
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestReportLifecycle_SubmitThenApprove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GenerateFromLocation(ctx, april, "emp-1")
	require.NoError(t, err)

	submitted, err := svc.Submit(ctx, april, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusSubmitted, submitted.Status)

	approved, err := svc.Approve(ctx, april, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusApproved, approved.Status)
}

func TestReportLifecycle_OutOfOrderTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GenerateFromLocation(ctx, april, "emp-1")
	require.NoError(t, err)

	// Approve before submit.
	_, err = svc.Approve(ctx, april, "emp-1")
	assert.ErrorIs(t, err, attendance.ErrInvalidStatusTransition)

	// Double submit.
	_, err = svc.Submit(ctx, april, "emp-1")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, april, "emp-1")
	assert.ErrorIs(t, err, attendance.ErrInvalidStatusTransition)
}

func TestSubmittedReport_IsLocked(t *testing.T) {
	// Submitted reports reject regeneration and annotation.
	svc, store := newTestService(t)
	ctx := context.Background()
	monday := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	recordPings(t, store, "emp-1", monday, 30*time.Minute, 3)

	_, err := svc.GenerateFromLocation(ctx, april, "emp-1")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, april, "emp-1")
	require.NoError(t, err)

	_, err = svc.Regenerate(ctx, april, "emp-1")
	assert.ErrorIs(t, err, attendance.ErrReportLocked)

	_, err = svc.AnnotateDetail(ctx, april, "emp-1", monday, attendance.LeavePaid, "")
	assert.ErrorIs(t, err, attendance.ErrReportLocked)
}

func TestRegenerate_PicksUpNewPings(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	monday := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	recordPings(t, store, "emp-1", monday, 30*time.Minute, 3)

	first, err := svc.GenerateFromLocation(ctx, april, "emp-1")
	require.NoError(t, err)
	require.Equal(t, time.Hour, first.Summary.TotalWorked)

	// Another hour of pings arrives late.
	recordPings(t, store, "emp-1", monday.Add(90*time.Minute), 30*time.Minute, 2)

	second, err := svc.Regenerate(ctx, april, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, second.Summary.TotalWorked)
}

func TestRegenerate_RequiresExistingReport(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Regenerate(context.Background(), april, "emp-1")
	assert.ErrorIs(t, err, attendance.ErrReportNotFound)
}

// =============================================================================
// ANNOTATION
// =============================================================================

func TestAnnotateDetail_UpdatesSummary(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	monday := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	recordPings(t, store, "emp-1", monday, 30*time.Minute, 3)

	_, err := svc.GenerateFromLocation(ctx, april, "emp-1")
	require.NoError(t, err)

	report, err := svc.AnnotateDetail(ctx, april, "emp-1", monday, attendance.LeaveSick, "half day, fever")
	require.NoError(t, err)

	assert.Equal(t, attendance.LeaveSick, report.Details[0].LeaveCategory)
	assert.Equal(t, "half day, fever", report.Details[0].Note)
	assert.Equal(t, 1, report.Summary.LeaveDays)
	assert.Equal(t, 0, report.Summary.WorkedDays)
}

func TestAnnotateDetail_UnknownDate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GenerateFromLocation(ctx, april, "emp-1")
	require.NoError(t, err)

	_, err = svc.AnnotateDetail(ctx, april, "emp-1",
		time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC), attendance.LeavePaid, "")
	assert.ErrorIs(t, err, attendance.ErrDetailNotFound)
}
