/*
handlers.go - HTTP API handlers for the scheduling engine

PURPOSE:
  Exposes the duty/absence scheduling engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the Manager.

ENDPOINTS:
  Schedule:
    GET    /api/schedule              List records (filter query params)
    POST   /api/schedule              Create record
    PUT    /api/schedule/{id}         Update record
    DELETE /api/schedule/{id}         Delete record
    GET    /api/schedule/period       Reporting subset for a period
    GET    /api/schedule/calendar     Month calendar grid (JSON)
    GET    /api/schedule/calendar.txt Month calendar as a text sheet
    GET    /api/schedule/summary      Absence-day totals per employee

  Directory:
    GET    /api/employees             List employees
    POST   /api/employees             Register employee
    GET    /api/categories            List absence category names

  Audit:
    GET    /api/audit                 Recent audit entries

ACTING IDENTITY:
  Mutations read the acting identity from the X-Actor header. An empty
  header is recorded as "anonymous"; authentication is out of scope.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors (unknown employee/category, bad range)
  - 404: Record not found
  - 409: Date-range conflict
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - roster/manager.go: The domain logic behind every endpoint
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/roster-engine/report"
	"github.com/warp/roster-engine/roster"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Manager   *roster.Manager
	Directory roster.EmployeeDirectory
	Audit     roster.AuditLog

	// Now stamps generated reports. Tests override it so rendered
	// output is deterministic.
	Now func() time.Time

	// RegisterEmployee persists a new directory entry; nil disables
	// the POST /api/employees endpoint.
	RegisterEmployee func(r *http.Request, e roster.Employee) error
}

// NewHandler creates a new handler around the manager and directory.
func NewHandler(manager *roster.Manager, directory roster.EmployeeDirectory) *Handler {
	return &Handler{Manager: manager, Directory: directory, Now: time.Now}
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ListRecords returns records matching the query filters.
// GET /api/schedule?department=&employee=&category=
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	filter := roster.ListFilter{
		DepartmentContains:   r.URL.Query().Get("department"),
		EmployeeNameContains: r.URL.Query().Get("employee"),
		CategoryNameContains: r.URL.Query().Get("category"),
	}

	records, err := h.Manager.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	writeJSON(w, http.StatusOK, h.toRecordDTOs(r, records))
}

// ListForPeriod returns the {duty, vacation} reporting subset.
// GET /api/schedule/period?start=YYYY-MM-DD&end=YYYY-MM-DD&department=
func (h *Handler) ListForPeriod(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	records, err := h.Manager.ListForPeriod(r.Context(), start, end, r.URL.Query().Get("department"))
	if err != nil {
		writeDomainError(w, "Failed to list period records", err)
		return
	}

	writeJSON(w, http.StatusOK, h.toRecordDTOs(r, records))
}

// CreateRecord creates a schedule record.
// POST /api/schedule
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeRecordRequest(w, r)
	if !ok {
		return
	}

	record, err := h.Manager.Create(r.Context(), actorFrom(r), input)
	if err != nil {
		writeDomainError(w, "Failed to create record", err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toRecordDTO(r, record))
}

// UpdateRecord replaces all fields of an existing record.
// PUT /api/schedule/{id}
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id := roster.RecordID(chi.URLParam(r, "id"))

	input, ok := decodeRecordRequest(w, r)
	if !ok {
		return
	}

	record, err := h.Manager.Update(r.Context(), actorFrom(r), id, input)
	if err != nil {
		writeDomainError(w, "Failed to update record", err)
		return
	}

	writeJSON(w, http.StatusOK, h.toRecordDTO(r, record))
}

// DeleteRecord removes a record.
// DELETE /api/schedule/{id}
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := roster.RecordID(chi.URLParam(r, "id"))

	if err := h.Manager.Delete(r.Context(), actorFrom(r), id); err != nil {
		writeDomainError(w, "Failed to delete record", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetCalendar builds the month grid for the requested month.
// GET /api/schedule/calendar?year=2025&month=5&department=
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseMonth(w, r)
	if !ok {
		return
	}

	grid, err := h.Manager.BuildCalendarGrid(r.Context(), start, end, r.URL.Query().Get("department"))
	if err != nil {
		writeDomainError(w, "Failed to build calendar", err)
		return
	}

	writeJSON(w, http.StatusOK, toGridDTO(grid))
}

// GetCalendarText renders the month grid as a monospace text sheet.
// GET /api/schedule/calendar.txt?year=2025&month=5&department=
func (h *Handler) GetCalendarText(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseMonth(w, r)
	if !ok {
		return
	}

	grid, err := h.Manager.BuildCalendarGrid(r.Context(), start, end, r.URL.Query().Get("department"))
	if err != nil {
		writeDomainError(w, "Failed to build calendar", err)
		return
	}

	renderer := &report.TextRenderer{}
	label := fmt.Sprintf("Duty roster, %s %d", grid.Month, grid.Year)
	sheet, err := renderer.Render(grid, label, h.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render calendar", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(sheet)
}

// GetSummary returns per-employee absence-day totals for a period.
// GET /api/schedule/summary?start=YYYY-MM-DD&end=YYYY-MM-DD&department=
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	summaries, err := h.Manager.Summary(r.Context(), start, end, r.URL.Query().Get("department"))
	if err != nil {
		writeDomainError(w, "Failed to build summary", err)
		return
	}

	dtos := make([]EmployeeSummaryDTO, len(summaries))
	for i, s := range summaries {
		dto := EmployeeSummaryDTO{
			EmployeeID:   string(s.Employee.ID),
			EmployeeName: s.Employee.FullName(),
			Department:   s.Employee.Department,
			TotalDays:    s.TotalDays.String(),
		}
		for _, c := range s.Categories {
			dto.Categories = append(dto.Categories, CategoryTotalDTO{
				CategoryName: c.CategoryName,
				Days:         c.Days.String(),
			})
		}
		dtos[i] = dto
	}

	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DIRECTORY HANDLERS
// =============================================================================

// ListEmployees returns all directory entries.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Directory.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee registers a directory entry.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	if h.RegisterEmployee == nil {
		writeError(w, http.StatusMethodNotAllowed, "Directory is read-only", nil)
		return
	}

	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Surname == "" || req.FirstName == "" {
		writeError(w, http.StatusBadRequest, "surname and first_name are required", nil)
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	e := roster.Employee{
		ID:         roster.EmployeeID(req.ID),
		Surname:    req.Surname,
		FirstName:  req.FirstName,
		Patronymic: req.Patronymic,
		Department: req.Department,
	}
	if err := h.RegisterEmployee(r, e); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(e))
}

// ListCategories returns the distinct absence category names.
// GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	names, err := h.Manager.ListAbsenceCategoryNames(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// =============================================================================
// AUDIT HANDLERS
// =============================================================================

// ListAudit returns recent audit entries, newest first.
// GET /api/audit?record_id=&actor=&limit=
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	if h.Audit == nil {
		writeJSON(w, http.StatusOK, []AuditEntryDTO{})
		return
	}

	var filter roster.AuditFilter
	if v := r.URL.Query().Get("record_id"); v != "" {
		id := roster.RecordID(v)
		filter.RecordID = &id
	}
	if v := r.URL.Query().Get("actor"); v != "" {
		filter.ActorID = &v
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	entries, err := h.Audit.Query(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to query audit log", err)
		return
	}

	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = AuditEntryDTO{
			ID:       e.ID,
			At:       formatTimestamp(e.At),
			ActorID:  e.ActorID,
			Action:   string(e.Action),
			RecordID: string(e.RecordID),
			Detail:   e.Detail,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeRecordRequest(w http.ResponseWriter, r *http.Request) (roster.RecordInput, bool) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return roster.RecordInput{}, false
	}

	start, err := roster.ParseDate(req.DateStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date_start format (use YYYY-MM-DD)", err)
		return roster.RecordInput{}, false
	}
	end, err := roster.ParseDate(req.DateEnd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date_end format (use YYYY-MM-DD)", err)
		return roster.RecordInput{}, false
	}

	return roster.RecordInput{
		EmployeeFullName: req.EmployeeFullName,
		DateStart:        start,
		DateEnd:          end,
		CategoryName:     req.CategoryName,
		Description:      req.Description,
	}, true
}

// parseMonth reads year and month query params and returns the first
// and last day of that month.
func parseMonth(w http.ResponseWriter, r *http.Request) (roster.Date, roster.Date, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return roster.Date{}, roster.Date{}, false
	}
	monthNum, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month (1-12)", err)
		return roster.Date{}, roster.Date{}, false
	}

	month := time.Month(monthNum)
	start := roster.NewDate(year, month, 1)
	end := roster.NewDate(year, month, roster.DaysInMonth(start))
	return start, end, true
}

func parsePeriod(w http.ResponseWriter, r *http.Request) (roster.Date, roster.Date, bool) {
	start, err := roster.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
		return roster.Date{}, roster.Date{}, false
	}
	end, err := roster.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
		return roster.Date{}, roster.Date{}, false
	}
	return start, end, true
}

func actorFrom(r *http.Request) string {
	if actor := r.Header.Get("X-Actor"); actor != "" {
		return actor
	}
	return "anonymous"
}

func (h *Handler) toRecordDTOs(r *http.Request, records []roster.ScheduleRecord) []ScheduleRecordDTO {
	dtos := make([]ScheduleRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = h.toRecordDTO(r, rec)
	}
	return dtos
}

func (h *Handler) toRecordDTO(r *http.Request, rec roster.ScheduleRecord) ScheduleRecordDTO {
	dto := ScheduleRecordDTO{
		ID:          string(rec.ID),
		EmployeeID:  string(rec.EmployeeID),
		DateStart:   rec.DateStart.String(),
		DateEnd:     rec.DateEnd.String(),
		CategoryID:  string(rec.CategoryID),
		Description: rec.Description,
		CreatedAt:   formatTimestamp(rec.CreatedAt),
		UpdatedAt:   formatTimestamp(rec.UpdatedAt),
	}

	// Display names are best-effort; a dangling reference leaves the
	// field empty rather than failing the whole response.
	if emp, err := h.Directory.GetEmployee(r.Context(), rec.EmployeeID); err == nil && emp != nil {
		dto.EmployeeName = emp.FullName()
	}
	if name, err := h.Manager.CategoryName(r.Context(), rec.CategoryID); err == nil {
		dto.CategoryName = name
	}

	return dto
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps roster errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case roster.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case roster.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case roster.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
