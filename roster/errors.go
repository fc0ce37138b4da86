/*
errors.go - Centralized error types for the scheduling engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers branch on the sentinels with errors.Is(); the structured
  types carry the context needed for descriptive messages.

ERROR CATEGORIES:
  1. Resolution errors - Employee or category name did not resolve
  2. Invariant errors  - Date-range conflicts, malformed ranges
  3. Lookup errors     - Update/delete target absent

All of these are recoverable, caller-facing validation errors: they are
reported with a message and never corrupt state. Rendering failures are
a separate concern (see the report package).

SEE ALSO:
  - manager.go: Produces these errors
  - api/handlers.go: Maps them to HTTP status codes
*/
package roster

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a full-name string does not
	// resolve to exactly one employee.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrAbsenceCategoryNotFound is returned when a category name is unknown.
	ErrAbsenceCategoryNotFound = errors.New("absence category not found")

	// ErrDateConflict is returned when a record's range overlaps an existing
	// record for the same employee. Touching boundary days count as overlap.
	ErrDateConflict = errors.New("date range conflicts with an existing record")

	// ErrRecordNotFound is returned when an update/delete target is absent.
	ErrRecordNotFound = errors.New("schedule record not found")

	// ErrInvalidRange is returned when a range ends before it starts.
	ErrInvalidRange = errors.New("invalid range: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// EmployeeNotFoundError reports the name that failed to resolve.
type EmployeeNotFoundError struct {
	FullName string
	Reason   string
}

func (e *EmployeeNotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("employee %q not found: %s", e.FullName, e.Reason)
	}
	return fmt.Sprintf("employee %q not found", e.FullName)
}

func (e *EmployeeNotFoundError) Unwrap() error { return ErrEmployeeNotFound }

// CategoryNotFoundError reports the unknown category name.
type CategoryNotFoundError struct {
	Name string
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("absence category %q not found", e.Name)
}

func (e *CategoryNotFoundError) Unwrap() error { return ErrAbsenceCategoryNotFound }

// DateConflictError reports which existing record the candidate overlaps.
type DateConflictError struct {
	EmployeeID EmployeeID
	Candidate  Interval
	Existing   Interval
}

func (e *DateConflictError) Error() string {
	return fmt.Sprintf("range [%s, %s] overlaps existing record %s [%s, %s] for employee %s",
		e.Candidate.Start, e.Candidate.End,
		e.Existing.ID, e.Existing.Start, e.Existing.End,
		e.EmployeeID)
}

func (e *DateConflictError) Unwrap() error { return ErrDateConflict }

// RecordNotFoundError reports the missing record identifier.
type RecordNotFoundError struct {
	ID RecordID
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("schedule record %s not found", e.ID)
}

func (e *RecordNotFoundError) Unwrap() error { return ErrRecordNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrAbsenceCategoryNotFound) ||
		errors.Is(err, ErrDateConflict) ||
		errors.Is(err, ErrInvalidRange)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// IsConflict returns true if the error indicates a date-range conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDateConflict)
}
