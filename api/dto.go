/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the Manager, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/roster-engine/roster"
)

// =============================================================================
// SCHEDULE RECORDS
// =============================================================================

// ScheduleRecordDTO represents a schedule record in API responses.
// Employee and category are resolved to display strings; the raw IDs
// stay available for follow-up requests.
type ScheduleRecordDTO struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	DateStart    string `json:"date_start"`
	DateEnd      string `json:"date_end"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name,omitempty"`
	Description  string `json:"description,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// RecordRequest is the request body for create and update.
type RecordRequest struct {
	EmployeeFullName string `json:"employee_full_name"`
	DateStart        string `json:"date_start"`
	DateEnd          string `json:"date_end"`
	CategoryName     string `json:"category_name"`
	Description      string `json:"description,omitempty"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents a directory entry in API responses.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Surname    string `json:"surname"`
	FirstName  string `json:"first_name"`
	Patronymic string `json:"patronymic,omitempty"`
	Department string `json:"department,omitempty"`
}

// CreateEmployeeRequest is the request to register an employee.
type CreateEmployeeRequest struct {
	ID         string `json:"id"`
	Surname    string `json:"surname"`
	FirstName  string `json:"first_name"`
	Patronymic string `json:"patronymic,omitempty"`
	Department string `json:"department,omitempty"`
}

// =============================================================================
// CALENDAR GRID
// =============================================================================

// CalendarGridDTO is the JSON projection of a roster.CalendarGrid.
type CalendarGridDTO struct {
	Year   int            `json:"year"`
	Month  int            `json:"month"`
	Blocks []WeekBlockDTO `json:"blocks"`
}

// WeekBlockDTO is one week row-group of the grid.
type WeekBlockDTO struct {
	Days  [7]int           `json:"days"`
	Rows  int              `json:"rows"`
	Cells [][7]GridCellDTO `json:"cells"`
}

// GridCellDTO is one (column, sub-row) slot.
type GridCellDTO struct {
	Mark  string `json:"mark,omitempty"`
	Color string `json:"color,omitempty"`
}

// =============================================================================
// SUMMARY
// =============================================================================

// EmployeeSummaryDTO aggregates one employee's absence days for a period.
type EmployeeSummaryDTO struct {
	EmployeeID   string             `json:"employee_id"`
	EmployeeName string             `json:"employee_name"`
	Department   string             `json:"department,omitempty"`
	Categories   []CategoryTotalDTO `json:"categories"`
	TotalDays    string             `json:"total_days"`
}

// CategoryTotalDTO is one category's day total.
type CategoryTotalDTO struct {
	CategoryName string `json:"category_name"`
	Days         string `json:"days"`
}

// =============================================================================
// AUDIT
// =============================================================================

// AuditEntryDTO represents one audit trail entry.
type AuditEntryDTO struct {
	ID       string `json:"id"`
	At       string `json:"at"`
	ActorID  string `json:"actor_id"`
	Action   string `json:"action"`
	RecordID string `json:"record_id"`
	Detail   string `json:"detail,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toGridDTO(grid roster.CalendarGrid) CalendarGridDTO {
	dto := CalendarGridDTO{
		Year:   grid.Year,
		Month:  int(grid.Month),
		Blocks: make([]WeekBlockDTO, len(grid.Blocks)),
	}
	for i, block := range grid.Blocks {
		b := WeekBlockDTO{
			Days:  block.Days,
			Rows:  block.Rows,
			Cells: make([][7]GridCellDTO, len(block.Cells)),
		}
		for row, cells := range block.Cells {
			for col, cell := range cells {
				b.Cells[row][col] = GridCellDTO{
					Mark:  cell.Mark,
					Color: string(cell.Color),
				}
			}
		}
		dto.Blocks[i] = b
	}
	return dto
}

func toEmployeeDTO(e roster.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         string(e.ID),
		Surname:    e.Surname,
		FirstName:  e.FirstName,
		Patronymic: e.Patronymic,
		Department: e.Department,
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
