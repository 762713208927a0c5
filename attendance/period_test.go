package attendance

import (
	"testing"
	"time"
)

// =============================================================================
// PERIOD CALCULATION TESTS
// =============================================================================

func TestPeriodFor_ClosingDay20(t *testing.T) {
	// The 2025-04 period of a user closing on the 20th runs Mar 21 - Apr 20.
	p := PeriodFor(NewYearMonth(2025, time.April), 20)

	wantStart := time.Date(2025, time.March, 21, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.April, 20, 0, 0, 0, 0, time.UTC)
	if !p.Start.Equal(wantStart) {
		t.Errorf("start: expected %v, got %v", wantStart, p.Start)
	}
	if !p.End.Equal(wantEnd) {
		t.Errorf("end: expected %v, got %v", wantEnd, p.End)
	}
}

func TestPeriodFor_ClosingDayClampsToShortMonths(t *testing.T) {
	// Closing day 31 clamps to Feb 28 in a non-leap year.
	p := PeriodFor(NewYearMonth(2025, time.February), 31)

	if p.Start.Day() != 1 || p.Start.Month() != time.February {
		t.Errorf("expected start Feb 1, got %v", p.Start)
	}
	if p.End.Day() != 28 || p.End.Month() != time.February {
		t.Errorf("expected end Feb 28, got %v", p.End)
	}
}

func TestPeriodFor_YearBoundary(t *testing.T) {
	// January periods reach back into December of the previous year.
	p := PeriodFor(NewYearMonth(2025, time.January), 15)

	wantStart := time.Date(2024, time.December, 16, 0, 0, 0, 0, time.UTC)
	if !p.Start.Equal(wantStart) {
		t.Errorf("expected %v, got %v", wantStart, p.Start)
	}
}

func TestPeriod_ContainsWholeClosingDay(t *testing.T) {
	p := PeriodFor(NewYearMonth(2025, time.April), 20)

	inside := time.Date(2025, time.April, 20, 23, 30, 0, 0, time.UTC)
	outside := time.Date(2025, time.April, 21, 0, 0, 0, 0, time.UTC)
	if !p.Contains(inside) {
		t.Error("closing day evening must be inside the period")
	}
	if p.Contains(outside) {
		t.Error("day after closing must be outside the period")
	}
}

// =============================================================================
// YEAR MONTH TESTS
// =============================================================================

func TestParseYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2025-04")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ym.Year != 2025 || ym.Month != time.April {
		t.Errorf("got %+v", ym)
	}
	if ym.String() != "2025-04" {
		t.Errorf("round trip failed: %s", ym.String())
	}

	if _, err := ParseYearMonth("April 2025"); err == nil {
		t.Error("expected parse error")
	}
}

func TestYearMonth_Previous(t *testing.T) {
	prev := NewYearMonth(2025, time.January).Previous()
	if prev.Year != 2024 || prev.Month != time.December {
		t.Errorf("expected 2024-12, got %v", prev)
	}
}
