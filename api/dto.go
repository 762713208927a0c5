/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry validator/v10 struct tags; handlers run the shared
  validator before touching domain logic. DTOs stay pure data carriers.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/workrule"
)

// hoursOf renders a duration as decimal hours with two-digit precision.
func hoursOf(d time.Duration) string {
	return decimal.NewFromInt(int64(d / time.Minute)).Div(decimal.NewFromInt(60)).Round(2).String()
}

// =============================================================================
// REPORT TYPES
// =============================================================================

// GenerateReportRequest asks for report generation or regeneration.
type GenerateReportRequest struct {
	Period string `json:"period" validate:"required,len=7"`
}

// AnnotateDetailRequest sets leave category and note on a report day.
type AnnotateDetailRequest struct {
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	LeaveCategory string `json:"leave_category" validate:"omitempty,oneof=paid sick special"`
	Note          string `json:"note" validate:"max=500"`
}

// DetailDTO is one day's attendance record.
type DetailDTO struct {
	Date          string `json:"date"`
	IsHoliday     bool   `json:"is_holiday"`
	LeaveCategory string `json:"leave_category,omitempty"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	WorkedHours   string `json:"worked_hours"`
	OvertimeHours string `json:"overtime_hours"`
	HolidayHours  string `json:"holiday_work_hours"`
	Note          string `json:"note,omitempty"`
}

// SummaryDTO holds the aggregate totals of a report.
type SummaryDTO struct {
	WorkedDays       int    `json:"worked_days"`
	LeaveDays        int    `json:"leave_days"`
	WorkedHours      string `json:"total_worked_hours"`
	OvertimeHours    string `json:"total_overtime_hours"`
	HolidayWorkHours string `json:"total_holiday_work_hours"`
}

// ReportDTO is a full attendance report.
type ReportDTO struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Period    string      `json:"period"`
	Status    string      `json:"status"`
	Details   []DetailDTO `json:"details"`
	Summary   SummaryDTO  `json:"summary"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

func toReportDTO(r *attendance.Report) ReportDTO {
	details := make([]DetailDTO, len(r.Details))
	for i, d := range r.Details {
		details[i] = DetailDTO{
			Date:          d.Date.Format("2006-01-02"),
			IsHoliday:     d.IsHoliday,
			LeaveCategory: string(d.LeaveCategory),
			StartTime:     d.StartTime.Format(time.RFC3339),
			EndTime:       d.EndTime.Format(time.RFC3339),
			WorkedHours:   hoursOf(d.Worked),
			OvertimeHours: hoursOf(d.Overtime),
			HolidayHours:  hoursOf(d.HolidayWork),
			Note:          d.Note,
		}
	}
	return ReportDTO{
		ID:      r.ID,
		UserID:  r.UserID,
		Period:  r.Period.String(),
		Status:  string(r.Status),
		Details: details,
		Summary: SummaryDTO{
			WorkedDays:       r.Summary.WorkedDays,
			LeaveDays:        r.Summary.LeaveDays,
			WorkedHours:      r.Summary.WorkedHours().String(),
			OvertimeHours:    r.Summary.OvertimeHours().String(),
			HolidayWorkHours: r.Summary.HolidayWorkHours().String(),
		},
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// WORK RULE TYPES
// =============================================================================

// WorkRuleRequest creates or replaces a work rule.
type WorkRuleRequest struct {
	WorkplaceID     string  `json:"workplace_id" validate:"required"`
	Latitude        float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude       float64 `json:"longitude" validate:"gte=-180,lte=180"`
	StandardStart   string  `json:"standard_start" validate:"required,datetime=15:04"`
	StandardEnd     string  `json:"standard_end" validate:"required,datetime=15:04"`
	BreakStart      string  `json:"break_start" validate:"omitempty,datetime=15:04"`
	BreakEnd        string  `json:"break_end" validate:"omitempty,datetime=15:04"`
	MembershipStart string  `json:"membership_start" validate:"required,datetime=2006-01-02"`
	MembershipEnd   string  `json:"membership_end" validate:"required,datetime=2006-01-02"`
}

// WorkRuleDTO is a work rule in API responses.
type WorkRuleDTO struct {
	ID              string  `json:"id"`
	WorkplaceID     string  `json:"workplace_id"`
	UserID          string  `json:"user_id"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	StandardStart   string  `json:"standard_start"`
	StandardEnd     string  `json:"standard_end"`
	BreakStart      string  `json:"break_start,omitempty"`
	BreakEnd        string  `json:"break_end,omitempty"`
	MembershipStart string  `json:"membership_start"`
	MembershipEnd   string  `json:"membership_end"`
}

func toWorkRuleDTO(r *workrule.WorkRule) WorkRuleDTO {
	dto := WorkRuleDTO{
		ID:              r.ID,
		WorkplaceID:     r.WorkplaceID,
		UserID:          r.UserID,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		StandardStart:   r.StandardStart.String(),
		StandardEnd:     r.StandardEnd.String(),
		MembershipStart: r.Membership.Start.Format("2006-01-02"),
		MembershipEnd:   r.Membership.End.Format("2006-01-02"),
	}
	if r.BreakStart != nil {
		dto.BreakStart = r.BreakStart.String()
	}
	if r.BreakEnd != nil {
		dto.BreakEnd = r.BreakEnd.String()
	}
	return dto
}

// toWorkRule converts a validated request into a domain rule. Clock and
// date parsing can still fail on out-of-range values the tag patterns let
// through, so errors propagate.
func toWorkRule(userID string, req WorkRuleRequest) (workrule.WorkRule, error) {
	rule := workrule.WorkRule{
		WorkplaceID: req.WorkplaceID,
		UserID:      userID,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}

	var err error
	if rule.StandardStart, err = workrule.ParseClockTime(req.StandardStart); err != nil {
		return rule, err
	}
	if rule.StandardEnd, err = workrule.ParseClockTime(req.StandardEnd); err != nil {
		return rule, err
	}
	if req.BreakStart != "" {
		bs, err := workrule.ParseClockTime(req.BreakStart)
		if err != nil {
			return rule, err
		}
		rule.BreakStart = &bs
	}
	if req.BreakEnd != "" {
		be, err := workrule.ParseClockTime(req.BreakEnd)
		if err != nil {
			return rule, err
		}
		rule.BreakEnd = &be
	}
	if rule.Membership.Start, err = time.Parse("2006-01-02", req.MembershipStart); err != nil {
		return rule, err
	}
	if rule.Membership.End, err = time.Parse("2006-01-02", req.MembershipEnd); err != nil {
		return rule, err
	}
	return rule, nil
}

// =============================================================================
// PING AND SETTINGS TYPES
// =============================================================================

// PingRequest records one raw location ping.
type PingRequest struct {
	RecordedAt string  `json:"recorded_at" validate:"required"`
	Latitude   float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude  float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// SettingsRequest replaces a user's report settings.
type SettingsRequest struct {
	ClosingDay                 int `json:"closing_day" validate:"min=1,max=31"`
	RoundingGranularityMinutes int `json:"rounding_granularity_minutes" validate:"min=1,max=60"`
}

// SettingsDTO is a user's report settings.
type SettingsDTO struct {
	UserID                     string `json:"user_id"`
	ClosingDay                 int    `json:"closing_day"`
	RoundingGranularityMinutes int    `json:"rounding_granularity_minutes"`
}
