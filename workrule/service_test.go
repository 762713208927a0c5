/*
service_test.go - Rule lifecycle and resolution tests

Runs the rule service and resolver against the in-memory store.
*/
package workrule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/store/memory"
	"github.com/warp/attendance-engine/workrule"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func clock(t *testing.T, s string) workrule.ClockTime {
	t.Helper()
	c, err := workrule.ParseClockTime(s)
	require.NoError(t, err)
	return c
}

func officeRule(t *testing.T, userID string, start, end time.Time) workrule.WorkRule {
	t.Helper()
	brkStart := clock(t, "12:00")
	brkEnd := clock(t, "13:00")
	return workrule.WorkRule{
		WorkplaceID:   "hq",
		UserID:        userID,
		Latitude:      35.6812,
		Longitude:     139.7671,
		StandardStart: clock(t, "09:00"),
		StandardEnd:   clock(t, "17:30"),
		BreakStart:    &brkStart,
		BreakEnd:      &brkEnd,
		Membership:    workrule.MembershipPeriod{Start: start, End: end},
	}
}

var (
	jan1  = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	jun30 = time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)
	jul1  = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	dec31 = time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// =============================================================================
// REGISTRATION
// =============================================================================

func TestRegister_AssignsID(t *testing.T) {
	store := memory.New()
	svc := workrule.NewService(store, store)

	rule, err := svc.Register(context.Background(), officeRule(t, "emp-1", jan1, jun30))
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)

	rules, err := svc.ListByUser(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestRegister_OverlapRejected(t *testing.T) {
	// GIVEN: a rule effective Jan 1 - Jun 30
	// WHEN:  registering another starting Jun 30 (shared boundary day)
	// THEN:  overlap conflict naming the existing rule; nothing persisted

	store := memory.New()
	svc := workrule.NewService(store, store)
	ctx := context.Background()

	first, err := svc.Register(ctx, officeRule(t, "emp-1", jan1, jun30))
	require.NoError(t, err)

	_, err = svc.Register(ctx, officeRule(t, "emp-1", jun30, dec31))
	assert.ErrorIs(t, err, workrule.ErrOverlappingMembership)

	var overlap *workrule.OverlapError
	require.ErrorAs(t, err, &overlap)
	assert.Equal(t, first.ID, overlap.ConflictingID)

	rules, err := svc.ListByUser(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestRegister_AdjacentPeriodsAllowed(t *testing.T) {
	store := memory.New()
	svc := workrule.NewService(store, store)
	ctx := context.Background()

	_, err := svc.Register(ctx, officeRule(t, "emp-1", jan1, jun30))
	require.NoError(t, err)
	_, err = svc.Register(ctx, officeRule(t, "emp-1", jul1, dec31))
	require.NoError(t, err)
}

func TestRegister_OverlapScopedPerUser(t *testing.T) {
	// Different users may hold identical periods.
	store := memory.New()
	svc := workrule.NewService(store, store)
	ctx := context.Background()

	_, err := svc.Register(ctx, officeRule(t, "emp-1", jan1, dec31))
	require.NoError(t, err)
	_, err = svc.Register(ctx, officeRule(t, "emp-2", jan1, dec31))
	require.NoError(t, err)
}

func TestRegister_ValidationFailures(t *testing.T) {
	store := memory.New()
	svc := workrule.NewService(store, store)
	ctx := context.Background()

	inverted := officeRule(t, "emp-1", jun30, jan1)
	_, err := svc.Register(ctx, inverted)
	assert.ErrorIs(t, err, workrule.ErrInvalidMembership)

	backwards := officeRule(t, "emp-1", jan1, jun30)
	backwards.StandardStart = clock(t, "18:00")
	_, err = svc.Register(ctx, backwards)
	assert.ErrorIs(t, err, workrule.ErrInvalidStandardTime)

	halfBreak := officeRule(t, "emp-1", jan1, jun30)
	halfBreak.BreakEnd = nil
	_, err = svc.Register(ctx, halfBreak)
	assert.ErrorIs(t, err, workrule.ErrInvalidBreakTime)
}

// =============================================================================
// UPDATE AND DELETE
// =============================================================================

func TestUpdate_ExcludesOwnPeriod(t *testing.T) {
	// A rule may be re-saved over its own period without tripping the gate.
	store := memory.New()
	svc := workrule.NewService(store, store)
	ctx := context.Background()

	rule, err := svc.Register(ctx, officeRule(t, "emp-1", jan1, jun30))
	require.NoError(t, err)

	changed := officeRule(t, "emp-1", jan1, jun30)
	changed.StandardEnd = clock(t, "18:00")
	updated, err := svc.Update(ctx, rule.ID, "emp-1", changed)
	require.NoError(t, err)
	assert.Equal(t, rule.ID, updated.ID)
	assert.Equal(t, 9*time.Hour, updated.StandardDuration())
}

func TestUpdate_OverlapWithOtherRuleRejected(t *testing.T) {
	store := memory.New()
	svc := workrule.NewService(store, store)
	ctx := context.Background()

	_, err := svc.Register(ctx, officeRule(t, "emp-1", jan1, jun30))
	require.NoError(t, err)
	second, err := svc.Register(ctx, officeRule(t, "emp-1", jul1, dec31))
	require.NoError(t, err)

	// Stretch the second rule back over the first.
	_, err = svc.Update(ctx, second.ID, "emp-1", officeRule(t, "emp-1", jun30, dec31))
	assert.ErrorIs(t, err, workrule.ErrOverlappingMembership)
}

func TestUpdate_OwnershipEnforced(t *testing.T) {
	store := memory.New()
	svc := workrule.NewService(store, store)
	ctx := context.Background()

	rule, err := svc.Register(ctx, officeRule(t, "emp-1", jan1, jun30))
	require.NoError(t, err)

	_, err = svc.Update(ctx, rule.ID, "emp-2", officeRule(t, "emp-1", jan1, jun30))
	assert.ErrorIs(t, err, workrule.ErrNotOwner)

	err = svc.Delete(ctx, rule.ID, "emp-2")
	assert.ErrorIs(t, err, workrule.ErrNotOwner)
}

func TestUpdate_UnknownRule(t *testing.T) {
	store := memory.New()
	svc := workrule.NewService(store, store)

	_, err := svc.Update(context.Background(), "missing", "emp-1", officeRule(t, "emp-1", jan1, jun30))
	assert.ErrorIs(t, err, workrule.ErrRuleNotFound)

	err = svc.Delete(context.Background(), "missing", "emp-1")
	assert.ErrorIs(t, err, workrule.ErrRuleNotFound)
}

func TestDelete_RemovesRule(t *testing.T) {
	store := memory.New()
	svc := workrule.NewService(store, store)
	ctx := context.Background()

	rule, err := svc.Register(ctx, officeRule(t, "emp-1", jan1, jun30))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, rule.ID, "emp-1"))

	rules, err := svc.ListByUser(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, rules)
}

// =============================================================================
// RESOLUTION
// =============================================================================

func TestResolve_WithinMembership(t *testing.T) {
	// 09:00-17:30 with a 12:00-13:00 break: 8h30m standard, 1h break.
	store := memory.New()
	svc := workrule.NewService(store, store)
	resolver := workrule.NewResolver(store, store)
	ctx := context.Background()

	_, err := svc.Register(ctx, officeRule(t, "emp-1", jan1, jun30))
	require.NoError(t, err)

	info, err := resolver.Resolve(ctx, "emp-1", time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.True(t, info.Valid)
	assert.Equal(t, 8*time.Hour+30*time.Minute, info.Standard)
	assert.Equal(t, time.Hour, info.Break)
}

func TestResolve_OutsideMembership(t *testing.T) {
	// Dates outside every membership period resolve to the invalid Info,
	// not an error.
	store := memory.New()
	svc := workrule.NewService(store, store)
	resolver := workrule.NewResolver(store, store)
	ctx := context.Background()

	_, err := svc.Register(ctx, officeRule(t, "emp-1", jan1, jun30))
	require.NoError(t, err)

	info, err := resolver.Resolve(ctx, "emp-1", time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, info.Valid)
}

func TestResolve_NoBreakConfigured(t *testing.T) {
	store := memory.New()
	resolver := workrule.NewResolver(store, store)
	ctx := context.Background()

	rule := officeRule(t, "emp-1", jan1, jun30)
	rule.ID = "r1"
	rule.BreakStart = nil
	rule.BreakEnd = nil
	require.NoError(t, store.SaveRule(ctx, rule))

	info, err := resolver.Resolve(ctx, "emp-1", time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, info.Valid)
	assert.Equal(t, time.Duration(0), info.Break)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestUserSettings_DefaultsWhenUnset(t *testing.T) {
	store := memory.New()
	resolver := workrule.NewResolver(store, store)

	s, err := resolver.UserSettings(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, workrule.DefaultClosingDay, s.ClosingDay)
	assert.Equal(t, workrule.DefaultRoundingGranularityMinutes, s.RoundingGranularityMinutes)
}

func TestSaveSettings_Validation(t *testing.T) {
	store := memory.New()
	svc := workrule.NewService(store, store)
	ctx := context.Background()

	err := svc.SaveSettings(ctx, workrule.Settings{UserID: "emp-1", ClosingDay: 0, RoundingGranularityMinutes: 15})
	assert.ErrorIs(t, err, workrule.ErrInvalidClosingDay)

	err = svc.SaveSettings(ctx, workrule.Settings{UserID: "emp-1", ClosingDay: 20, RoundingGranularityMinutes: 61})
	assert.ErrorIs(t, err, workrule.ErrInvalidRounding)

	err = svc.SaveSettings(ctx, workrule.Settings{UserID: "emp-1", ClosingDay: 20, RoundingGranularityMinutes: 15})
	require.NoError(t, err)

	resolver := workrule.NewResolver(store, store)
	s, err := resolver.UserSettings(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 20, s.ClosingDay)
}

// =============================================================================
// CLOCK TIME
// =============================================================================

func TestParseClockTime(t *testing.T) {
	c, err := workrule.ParseClockTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", c.String())

	_, err = workrule.ParseClockTime("9:30pm")
	assert.Error(t, err)
}

func TestClockTime_Sub(t *testing.T) {
	start := clock(t, "09:00")
	end := clock(t, "17:30")
	assert.Equal(t, 8*time.Hour+30*time.Minute, end.Sub(start))
}
