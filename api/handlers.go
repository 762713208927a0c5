/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes report generation, the report lifecycle, work rule management,
  ping ingestion and user settings over REST. Handles HTTP request/response
  and JSON, delegates everything else to the domain services.

ENDPOINTS:
  Reports:
    POST   /api/users/{id}/reports                    Generate from location data
    GET    /api/users/{id}/reports                    List reports
    GET    /api/users/{id}/reports/{period}           Get one report
    PUT    /api/users/{id}/reports/{period}           Regenerate (unlocked only)
    DELETE /api/users/{id}/reports/{period}           Delete
    POST   /api/users/{id}/reports/{period}/submit    not_submitted -> submitted
    POST   /api/users/{id}/reports/{period}/approve   submitted -> approved
    PATCH  /api/users/{id}/reports/{period}/details   Annotate a day

  Work rules:
    GET    /api/users/{id}/rules                      List rules
    POST   /api/users/{id}/rules                      Register rule
    PUT    /api/users/{id}/rules/{ruleID}             Update rule (owner only)
    DELETE /api/users/{id}/rules/{ruleID}             Delete rule (owner only)

  Pings and settings:
    POST   /api/users/{id}/pings                      Record a location ping
    GET    /api/users/{id}/settings                   Get settings
    PUT    /api/users/{id}/settings                   Replace settings

ERROR HANDLING:
  Domain errors map to HTTP status via the packages' classification
  helpers:
  - 400: validation errors, malformed input
  - 403: ownership violations
  - 404: missing report/rule
  - 409: duplicate report, overlap, locked report, bad transition
  - 500: everything else

SEE ALSO:
  - dto.go:    request/response data structures
  - server.go: router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/workrule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Attendance *attendance.Service
	Rules      *workrule.Service
	Resolver   *workrule.Resolver
	Pings      attendance.PingRecorder

	validate *validator.Validate
}

// NewHandler creates a new handler wired to the given services.
func NewHandler(att *attendance.Service, rules *workrule.Service, resolver *workrule.Resolver, pings attendance.PingRecorder) *Handler {
	return &Handler{
		Attendance: att,
		Rules:      rules,
		Resolver:   resolver,
		Pings:      pings,
		validate:   validator.New(),
	}
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GenerateReport builds a new report from location pings.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req GenerateReportRequest
	if !h.decode(w, r, &req) {
		return
	}
	period, err := attendance.ParseYearMonth(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	report, err := h.Attendance.GenerateFromLocation(r.Context(), period, userID)
	if err != nil {
		writeDomainError(w, "Failed to generate report", err)
		return
	}
	writeJSON(w, http.StatusCreated, toReportDTO(report))
}

// ListReports returns all of a user's reports.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	reports, err := h.Attendance.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reports", err)
		return
	}

	dtos := make([]ReportDTO, len(reports))
	for i := range reports {
		dtos[i] = toReportDTO(&reports[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetReport returns one report.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	userID, period, ok := h.reportParams(w, r)
	if !ok {
		return
	}

	report, err := h.Attendance.Get(r.Context(), period, userID)
	if err != nil {
		writeDomainError(w, "Failed to get report", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// RegenerateReport recomputes an unlocked report from current ping data.
func (h *Handler) RegenerateReport(w http.ResponseWriter, r *http.Request) {
	userID, period, ok := h.reportParams(w, r)
	if !ok {
		return
	}

	report, err := h.Attendance.Regenerate(r.Context(), period, userID)
	if err != nil {
		writeDomainError(w, "Failed to regenerate report", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// DeleteReport removes a report.
func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	userID, period, ok := h.reportParams(w, r)
	if !ok {
		return
	}

	if err := h.Attendance.Delete(r.Context(), period, userID); err != nil {
		writeDomainError(w, "Failed to delete report", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// SubmitReport moves a report to submitted.
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Attendance.Submit)
}

// ApproveReport moves a report to approved.
func (h *Handler) ApproveReport(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Attendance.Approve)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, attendance.YearMonth, string) (*attendance.Report, error)) {
	userID, period, ok := h.reportParams(w, r)
	if !ok {
		return
	}

	report, err := fn(r.Context(), period, userID)
	if err != nil {
		writeDomainError(w, "Failed to change report status", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// AnnotateDetail sets leave category and note on a report day.
func (h *Handler) AnnotateDetail(w http.ResponseWriter, r *http.Request) {
	userID, period, ok := h.reportParams(w, r)
	if !ok {
		return
	}

	var req AnnotateDetailRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	report, err := h.Attendance.AnnotateDetail(r.Context(), period, userID, date,
		attendance.LeaveCategory(req.LeaveCategory), req.Note)
	if err != nil {
		writeDomainError(w, "Failed to annotate detail", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// =============================================================================
// WORK RULE HANDLERS
// =============================================================================

// ListRules returns all rules owned by a user.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	rules, err := h.Rules.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rules", err)
		return
	}

	dtos := make([]WorkRuleDTO, len(rules))
	for i := range rules {
		dtos[i] = toWorkRuleDTO(&rules[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RegisterRule creates a work rule after the overlap check.
func (h *Handler) RegisterRule(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req WorkRuleRequest
	if !h.decode(w, r, &req) {
		return
	}
	candidate, err := toWorkRule(userID, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid work rule", err)
		return
	}

	rule, err := h.Rules.Register(r.Context(), candidate)
	if err != nil {
		writeDomainError(w, "Failed to register rule", err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkRuleDTO(rule))
}

// UpdateRule replaces a work rule; the overlap check excludes the rule itself.
func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	ruleID := chi.URLParam(r, "ruleID")

	var req WorkRuleRequest
	if !h.decode(w, r, &req) {
		return
	}
	candidate, err := toWorkRule(userID, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid work rule", err)
		return
	}

	rule, err := h.Rules.Update(r.Context(), ruleID, userID, candidate)
	if err != nil {
		writeDomainError(w, "Failed to update rule", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkRuleDTO(rule))
}

// DeleteRule removes a work rule.
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	ruleID := chi.URLParam(r, "ruleID")

	if err := h.Rules.Delete(r.Context(), ruleID, userID); err != nil {
		writeDomainError(w, "Failed to delete rule", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// PING AND SETTINGS HANDLERS
// =============================================================================

// RecordPing ingests one raw location ping.
func (h *Handler) RecordPing(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req PingRequest
	if !h.decode(w, r, &req) {
		return
	}
	at, err := time.Parse(time.RFC3339, req.RecordedAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recorded_at (use RFC3339)", err)
		return
	}

	if err := h.Pings.RecordPing(r.Context(), userID, at, req.Latitude, req.Longitude); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record ping", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "recorded"})
}

// GetSettings returns the user's report settings (defaults if unset).
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	settings, err := h.Resolver.UserSettings(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsDTO{
		UserID:                     settings.UserID,
		ClosingDay:                 settings.ClosingDay,
		RoundingGranularityMinutes: settings.RoundingGranularityMinutes,
	})
}

// PutSettings replaces the user's report settings.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req SettingsRequest
	if !h.decode(w, r, &req) {
		return
	}

	settings := workrule.Settings{
		UserID:                     userID,
		ClosingDay:                 req.ClosingDay,
		RoundingGranularityMinutes: req.RoundingGranularityMinutes,
	}
	if err := h.Rules.SaveSettings(r.Context(), settings); err != nil {
		writeDomainError(w, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsDTO{
		UserID:                     settings.UserID,
		ClosingDay:                 settings.ClosingDay,
		RoundingGranularityMinutes: settings.RoundingGranularityMinutes,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// decode parses and validates a JSON request body. Writes the error
// response itself and returns false when the body is unusable.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

func (h *Handler) reportParams(w http.ResponseWriter, r *http.Request) (string, attendance.YearMonth, bool) {
	userID := chi.URLParam(r, "id")
	period, err := attendance.ParseYearMonth(chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return "", attendance.YearMonth{}, false
	}
	return userID, period, true
}

// writeDomainError maps domain error categories to HTTP statuses.
func writeDomainError(w http.ResponseWriter, msg string, err error) {
	switch {
	case attendance.IsNotFound(err) || workrule.IsNotFound(err):
		writeError(w, http.StatusNotFound, msg, err)
	case attendance.IsConflict(err) || workrule.IsConflict(err):
		writeError(w, http.StatusConflict, msg, err)
	case workrule.IsForbidden(err):
		writeError(w, http.StatusForbidden, msg, err)
	case attendance.IsClientError(err) || workrule.IsClientError(err):
		writeError(w, http.StatusBadRequest, msg, err)
	default:
		writeError(w, http.StatusInternalServerError, msg, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]any{"error": msg}
	if err != nil {
		body["detail"] = err.Error()
	}
	writeJSON(w, status, body)
}
