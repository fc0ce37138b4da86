/*
Package roster provides the duty/absence scheduling engine.

PURPOSE:
  This package contains the domain types and algorithms for managing
  employee duty and absence intervals. It maintains the non-overlap
  invariant per employee and synthesizes a month calendar grid from the
  stored intervals for reporting.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date: A calendar date at day granularity (used for all interval math)
  - ScheduleRecord: One employee's absence/duty interval
  - Employee: A directory entry (surname, first name, optional patronymic)
  - AbsenceCategory: Classification of a record (duty, vacation, ...)

DESIGN PRINCIPLES:
  1. Reference by identifier: records hold employee/category IDs, never
     the objects themselves. Lookups go through the directory/catalog.
  2. Closed intervals: [DateStart, DateEnd] is inclusive on both ends,
     and a shared boundary day counts as overlap.
  3. Purity where possible: the conflict checker and grid builder are
     pure functions with no shared mutable state.

SEE ALSO:
  - conflict.go: Interval overlap checking
  - manager.go: Orchestration of create/update/delete/list
  - grid.go: Month calendar grid construction
*/
package roster

import (
	"strings"
	"time"
)

// =============================================================================
// DATE - Calendar date at day granularity
// =============================================================================

// Date is a calendar date. The zero value is the zero time.
// All dates are normalized to midnight UTC so comparisons are exact.
type Date struct {
	Time time.Time
}

// NewDate constructs a Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.normalize().Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

// DaysBetween returns the number of days from one date to another,
// inclusive of both endpoints. Returns 0 when to is before from.
func DaysBetween(from, to Date) int {
	if to.Before(from) {
		return 0
	}
	return int(to.normalize().Sub(from.normalize()).Hours()/24) + 1
}

// DaysInMonth returns the number of days in the month containing d.
func DaysInMonth(d Date) int {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type RecordID string
type EmployeeID string
type CategoryID string

// =============================================================================
// SCHEDULE RECORD - One employee's duty/absence interval
// =============================================================================

// ScheduleRecord is a single duty/absence interval for one employee.
// The record references its employee and category by identifier only;
// resolution goes through the EmployeeDirectory and the catalog.
//
// Invariant: DateStart <= DateEnd, and for a fixed employee no two
// persisted records have overlapping [DateStart, DateEnd] ranges.
type ScheduleRecord struct {
	ID          RecordID
	EmployeeID  EmployeeID
	DateStart   Date
	DateEnd     Date
	CategoryID  CategoryID
	Description string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contains reports whether the record's interval covers the given date.
func (r ScheduleRecord) Contains(d Date) bool {
	return d.AfterOrEqual(r.DateStart) && d.BeforeOrEqual(r.DateEnd)
}

// Intersects reports whether the record's interval touches [from, to].
func (r ScheduleRecord) Intersects(from, to Date) bool {
	return !r.DateEnd.Before(from) && !r.DateStart.After(to)
}

// =============================================================================
// EMPLOYEE - Directory entry
// =============================================================================

// Employee is a directory entry. The patronymic is optional.
type Employee struct {
	ID         EmployeeID
	Surname    string
	FirstName  string
	Patronymic string
	Department string
}

// FullName returns "Surname FirstName Patronymic" with the patronymic
// omitted when absent.
func (e Employee) FullName() string {
	parts := []string{e.Surname, e.FirstName}
	if e.Patronymic != "" {
		parts = append(parts, e.Patronymic)
	}
	return strings.Join(parts, " ")
}

// ShortName returns the surname plus initials, e.g. "Ivanov I.P.".
// This is the occupant mark placed in calendar grid cells.
func (e Employee) ShortName() string {
	var b strings.Builder
	b.WriteString(e.Surname)
	if init := initial(e.FirstName); init != "" {
		b.WriteString(" ")
		b.WriteString(init)
		b.WriteString(".")
		if init := initial(e.Patronymic); init != "" {
			b.WriteString(init)
			b.WriteString(".")
		}
	}
	return b.String()
}

func initial(name string) string {
	for _, r := range name {
		return string(r)
	}
	return ""
}

// =============================================================================
// ABSENCE CATEGORY - Record classification
// =============================================================================

// AbsenceCategory classifies a schedule record.
type AbsenceCategory struct {
	ID   CategoryID
	Name string
}

// DefaultCategoryNames is the standard category set seeded on first run.
var DefaultCategoryNames = []string{
	"duty",
	"vacation",
	"sick leave",
	"unpaid leave",
	"day off",
	"unexcused absence",
}

// ReportingCategoryNames is the fixed allow-list of categories that
// participate in calendar reporting. Other categories are stored and
// listed but never appear on the month sheet.
var ReportingCategoryNames = []string{"duty", "vacation"}

// IsReportingCategory reports whether a category name is in the
// reporting allow-list (case-insensitive).
func IsReportingCategory(name string) bool {
	for _, allowed := range ReportingCategoryNames {
		if strings.EqualFold(name, allowed) {
			return true
		}
	}
	return false
}
