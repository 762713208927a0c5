/*
assembler.go - Report assembly and lifecycle

PURPOSE:
  Orchestrates the full pipeline from raw pings to a persisted report:

    closing-day period -> sorted pings -> segment (raw timestamps)
      -> per session: round boundaries, resolve rule, breakdown -> Detail
      -> Summary -> Report (not_submitted) -> save

  and owns the report lifecycle on top of it: regenerate, submit, approve,
  annotate, delete. Execution is synchronous; collaborator calls run
  sequentially. Callers serialize writes per user - the duplicate check and
  the save are the only gate, there is no locking here.

SEE ALSO:
  - session.go, rounding.go, breakdown.go, period.go: pipeline stages
  - workrule/resolver.go: rule and settings lookup
*/
package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/warp/attendance-engine/workrule"
)

// Service assembles and manages attendance reports.
type Service struct {
	location  LocationSource
	reports   ReportStore
	resolver  *workrule.Resolver
	segmenter Segmenter
	now       func() time.Time
}

func NewService(location LocationSource, reports ReportStore, resolver *workrule.Resolver) *Service {
	return &Service{
		location:  location,
		reports:   reports,
		resolver:  resolver,
		segmenter: Segmenter{Gap: DefaultSessionGap},
		now:       time.Now,
	}
}

// =============================================================================
// GENERATION
// =============================================================================

// GenerateFromLocation builds and persists a new report for the period from
// the user's location pings. Fails with DuplicateReportError when a report
// already exists; the existing report is not touched.
func (s *Service) GenerateFromLocation(ctx context.Context, period YearMonth, userID string) (*Report, error) {
	existing, err := s.reports.Find(ctx, period, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &DuplicateReportError{UserID: userID, Period: period}
	}

	details, err := s.buildDetails(ctx, period, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	report := Report{
		ID:        uuid.NewString(),
		UserID:    userID,
		Period:    period,
		Status:    StatusNotSubmitted,
		Details:   details,
		Summary:   Summarize(details),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reports.Save(ctx, report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Regenerate recomputes an existing report's details from the current ping
// data. Requires an existing, unlocked report. Annotations on recomputed
// details are discarded; the report is rebuilt from source data.
func (s *Service) Regenerate(ctx context.Context, period YearMonth, userID string) (*Report, error) {
	report, err := s.findUnlocked(ctx, period, userID)
	if err != nil {
		return nil, err
	}

	details, err := s.buildDetails(ctx, period, userID)
	if err != nil {
		return nil, err
	}

	report.Details = details
	report.Summary = Summarize(details)
	report.UpdatedAt = s.now()
	if err := s.reports.Update(ctx, *report); err != nil {
		return nil, err
	}
	return report, nil
}

// buildDetails runs the segmentation/rounding/breakdown pipeline for a
// (user, period). An empty ping stream yields zero details, not an error.
func (s *Service) buildDetails(ctx context.Context, period YearMonth, userID string) ([]Detail, error) {
	settings, err := s.resolver.UserSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	policy, err := NewCeilingPolicy(settings.RoundingGranularityMinutes)
	if err != nil {
		return nil, err
	}

	dates := PeriodFor(period, settings.ClosingDay)
	timestamps, err := s.location.TimestampsInPeriod(ctx, dates, userID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.segmenter.Segment(timestamps)
	if err != nil {
		return nil, err
	}

	details := make([]Detail, 0, len(sessions))
	for _, session := range sessions {
		start := policy.Round(session.Start())
		end := policy.Round(session.End())
		date := DateOf(start)
		holiday := IsHolidayDate(date)

		info, err := s.resolver.Resolve(ctx, userID, date)
		if err != nil {
			return nil, err
		}

		worked := end.Sub(start)
		bd := ComputeBreakdown(worked, holiday, info)

		details = append(details, Detail{
			Date:        date,
			IsHoliday:   holiday,
			StartTime:   start,
			EndTime:     end,
			Worked:      worked,
			Overtime:    bd.Overtime,
			HolidayWork: bd.HolidayWork,
		})
	}
	return details, nil
}

// =============================================================================
// LIFECYCLE - not_submitted -> submitted -> approved
// =============================================================================

// Submit moves a not-submitted report to submitted.
func (s *Service) Submit(ctx context.Context, period YearMonth, userID string) (*Report, error) {
	return s.transition(ctx, period, userID, StatusNotSubmitted, StatusSubmitted)
}

// Approve moves a submitted report to approved.
func (s *Service) Approve(ctx context.Context, period YearMonth, userID string) (*Report, error) {
	return s.transition(ctx, period, userID, StatusSubmitted, StatusApproved)
}

func (s *Service) transition(ctx context.Context, period YearMonth, userID string, from, to Status) (*Report, error) {
	report, err := s.mustFind(ctx, period, userID)
	if err != nil {
		return nil, err
	}
	if report.Status != from {
		return nil, ErrInvalidStatusTransition
	}
	report.Status = to
	report.UpdatedAt = s.now()
	if err := s.reports.Update(ctx, *report); err != nil {
		return nil, err
	}
	return report, nil
}

// =============================================================================
// ANNOTATION
// =============================================================================

// AnnotateDetail sets the leave category and note on every detail of the
// given date. The report must be unlocked; the summary is recomputed.
func (s *Service) AnnotateDetail(ctx context.Context, period YearMonth, userID string, date time.Time, leave LeaveCategory, note string) (*Report, error) {
	report, err := s.findUnlocked(ctx, period, userID)
	if err != nil {
		return nil, err
	}

	date = DateOf(date)
	found := false
	for i := range report.Details {
		if report.Details[i].Date.Equal(date) {
			report.Details[i].LeaveCategory = leave
			report.Details[i].Note = note
			found = true
		}
	}
	if !found {
		return nil, ErrDetailNotFound
	}

	report.Summary = Summarize(report.Details)
	report.UpdatedAt = s.now()
	if err := s.reports.Update(ctx, *report); err != nil {
		return nil, err
	}
	return report, nil
}

// =============================================================================
// READS AND DELETION
// =============================================================================

// Get returns the report for (user, period).
func (s *Service) Get(ctx context.Context, period YearMonth, userID string) (*Report, error) {
	return s.mustFind(ctx, period, userID)
}

// ListByUser returns all of the user's reports.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Report, error) {
	return s.reports.ListByUser(ctx, userID)
}

// Delete removes the report for (user, period).
func (s *Service) Delete(ctx context.Context, period YearMonth, userID string) error {
	if _, err := s.mustFind(ctx, period, userID); err != nil {
		return err
	}
	return s.reports.Delete(ctx, period, userID)
}

func (s *Service) mustFind(ctx context.Context, period YearMonth, userID string) (*Report, error) {
	report, err := s.reports.Find(ctx, period, userID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return report, nil
}

func (s *Service) findUnlocked(ctx context.Context, period YearMonth, userID string) (*Report, error) {
	report, err := s.mustFind(ctx, period, userID)
	if err != nil {
		return nil, err
	}
	if !report.Status.Mutable() {
		return nil, &LockedReportError{UserID: userID, Period: period, Status: report.Status}
	}
	return report, nil
}
