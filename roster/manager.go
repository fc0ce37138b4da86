/*
manager.go - Orchestration of schedule record operations

PURPOSE:
  The Manager owns the domain invariants. It resolves free-text employee
  and category names through the collaborator interfaces, runs the
  interval conflict check, and persists through the ScheduleStore.
  Every mutation is recorded in the audit log with the acting identity.

COLLABORATORS:
  EmployeeDirectory:      full-name and ID resolution
  AbsenceCategoryCatalog: category name and ID resolution
  ScheduleStore:          durable record storage
  AuditLog:               append-only mutation trail (optional)

CONCURRENCY:
  The create/update path is a read-then-write (check conflicts, then
  persist) which is not atomic on its own. The Manager closes the gap
  with a per-employee advisory lock held across the check and the write,
  so two overlapping requests for the same employee serialize.

SEE ALSO:
  - conflict.go: The overlap check
  - grid.go: Calendar grid construction from listed records
  - store/sqlite: Production implementation of the collaborators
*/
package roster

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// EmployeeDirectory resolves employee identities. FindByName must return
// (nil, nil) unless the components match exactly one employee.
type EmployeeDirectory interface {
	// FindByName matches surname, first name and, when non-empty,
	// patronymic. All present components must match exactly.
	FindByName(ctx context.Context, surname, firstName, patronymic string) (*Employee, error)

	// GetEmployee returns the employee by ID, or (nil, nil) if absent.
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)

	// ListEmployees returns all known employees.
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// AbsenceCategoryCatalog resolves absence categories.
type AbsenceCategoryCatalog interface {
	// FindByName matches a category name case-insensitively.
	// Returns (nil, nil) when the name is unknown.
	FindByName(ctx context.Context, name string) (*AbsenceCategory, error)

	// GetCategory returns the category by ID, or (nil, nil) if absent.
	GetCategory(ctx context.Context, id CategoryID) (*AbsenceCategory, error)

	// AllNames returns the distinct category names known to the catalog.
	AllNames(ctx context.Context) ([]string, error)
}

// ScheduleStore is durable storage for schedule records.
type ScheduleStore interface {
	FindAll(ctx context.Context) ([]ScheduleRecord, error)
	FindByID(ctx context.Context, id RecordID) (*ScheduleRecord, error)
	FindByEmployee(ctx context.Context, employeeID EmployeeID) ([]ScheduleRecord, error)

	// FindIntersecting returns records whose range touches [from, to].
	FindIntersecting(ctx context.Context, from, to Date) ([]ScheduleRecord, error)

	Save(ctx context.Context, record ScheduleRecord) error
	DeleteByID(ctx context.Context, id RecordID) error
}

// AuditEntry records who did what when.
type AuditEntry struct {
	ID       string
	At       time.Time
	ActorID  string
	Action   AuditAction
	RecordID RecordID
	Detail   string
}

type AuditAction string

const (
	AuditRecordCreated AuditAction = "record_created"
	AuditRecordUpdated AuditAction = "record_updated"
	AuditRecordDeleted AuditAction = "record_deleted"
)

// AuditLog stores audit entries. Append-only.
type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error

	// Query returns matching entries, newest first.
	Query(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
}

// AuditFilter narrows audit queries. Nil fields match everything.
type AuditFilter struct {
	RecordID *RecordID
	ActorID  *string
	Limit    int
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager orchestrates create/update/delete/list for schedule records.
type Manager struct {
	store     ScheduleStore
	directory EmployeeDirectory
	catalog   AbsenceCategoryCatalog
	audit     AuditLog // nil disables auditing

	now   func() time.Time
	newID func() string

	locks employeeLocks
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock injects the time source used for audit timestamps and
// record created/updated stamps. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator injects the record/audit ID source.
func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

// WithAuditLog enables audit logging.
func WithAuditLog(audit AuditLog) Option {
	return func(m *Manager) { m.audit = audit }
}

// NewManager wires the collaborators for schedule record operations.
func NewManager(store ScheduleStore, directory EmployeeDirectory, catalog AbsenceCategoryCatalog, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		directory: directory,
		catalog:   catalog,
		now:       time.Now,
		newID:     defaultIDGenerator,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RecordInput carries the caller-supplied fields for create and update.
// The employee and category are free-text names, resolved on every call.
type RecordInput struct {
	EmployeeFullName string
	DateStart        Date
	DateEnd          Date
	CategoryName     string
	Description      string
}

// ListFilter narrows List results. Empty fields match everything; all
// supplied fields are ANDed as case-insensitive substring matches.
type ListFilter struct {
	DepartmentContains   string
	EmployeeNameContains string
	CategoryNameContains string
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns records matching the filter, in store retrieval order.
func (m *Manager) List(ctx context.Context, filter ListFilter) ([]ScheduleRecord, error) {
	records, err := m.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	if filter == (ListFilter{}) {
		return records, nil
	}

	employees, err := m.employeeIndex(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]ScheduleRecord, 0, len(records))
	for _, r := range records {
		emp, ok := employees[r.EmployeeID]
		if !ok {
			continue
		}
		if !containsFold(emp.Department, filter.DepartmentContains) {
			continue
		}
		if !containsFold(emp.FullName(), filter.EmployeeNameContains) {
			continue
		}
		if filter.CategoryNameContains != "" {
			cat, err := m.catalog.GetCategory(ctx, r.CategoryID)
			if err != nil {
				return nil, fmt.Errorf("resolve category %s: %w", r.CategoryID, err)
			}
			if cat == nil || !containsFold(cat.Name, filter.CategoryNameContains) {
				continue
			}
		}
		matched = append(matched, r)
	}
	return matched, nil
}

// ListForPeriod returns records whose category is in the reporting
// allow-list ({duty, vacation}) and whose range intersects the period.
// An optional department substring filter applies on top.
func (m *Manager) ListForPeriod(ctx context.Context, periodStart, periodEnd Date, departmentContains string) ([]ScheduleRecord, error) {
	if periodEnd.Before(periodStart) {
		return nil, ErrInvalidRange
	}

	records, err := m.store.FindIntersecting(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("list records for period: %w", err)
	}

	employees, err := m.employeeIndex(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]ScheduleRecord, 0, len(records))
	for _, r := range records {
		cat, err := m.catalog.GetCategory(ctx, r.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("resolve category %s: %w", r.CategoryID, err)
		}
		if cat == nil || !IsReportingCategory(cat.Name) {
			continue
		}
		if departmentContains != "" {
			emp, ok := employees[r.EmployeeID]
			if !ok || !containsFold(emp.Department, departmentContains) {
				continue
			}
		}
		matched = append(matched, r)
	}
	return matched, nil
}

// ListAbsenceCategoryNames returns the distinct category names known to
// the catalog. Pass-through convenience for callers building forms.
func (m *Manager) ListAbsenceCategoryNames(ctx context.Context) ([]string, error) {
	return m.catalog.AllNames(ctx)
}

// CategoryName resolves a category ID to its display name. Returns the
// empty string when the ID is unknown to the catalog.
func (m *Manager) CategoryName(ctx context.Context, id CategoryID) (string, error) {
	cat, err := m.catalog.GetCategory(ctx, id)
	if err != nil {
		return "", err
	}
	if cat == nil {
		return "", nil
	}
	return cat.Name, nil
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create validates and persists a new schedule record.
// Fails with ErrEmployeeNotFound, ErrAbsenceCategoryNotFound,
// ErrInvalidRange or ErrDateConflict.
func (m *Manager) Create(ctx context.Context, actor string, input RecordInput) (ScheduleRecord, error) {
	emp, cat, err := m.resolve(ctx, input)
	if err != nil {
		return ScheduleRecord{}, err
	}

	// Serialize the conflict check and the write per employee.
	unlock := m.locks.lock(emp.ID)
	defer unlock()

	if err := m.checkConflicts(ctx, emp.ID, input, ""); err != nil {
		return ScheduleRecord{}, err
	}

	now := m.now()
	record := ScheduleRecord{
		ID:          RecordID(m.newID()),
		EmployeeID:  emp.ID,
		DateStart:   input.DateStart,
		DateEnd:     input.DateEnd,
		CategoryID:  cat.ID,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := m.store.Save(ctx, record); err != nil {
		return ScheduleRecord{}, fmt.Errorf("save record: %w", err)
	}

	m.writeAudit(ctx, actor, AuditRecordCreated, record.ID,
		fmt.Sprintf("%s %s [%s, %s]", emp.ShortName(), cat.Name, record.DateStart, record.DateEnd))

	return record, nil
}

// Update replaces all caller-settable fields of an existing record and
// re-validates. The conflict check excludes the record itself, so an
// update that keeps the same range always passes.
func (m *Manager) Update(ctx context.Context, actor string, id RecordID, input RecordInput) (ScheduleRecord, error) {
	existing, err := m.store.FindByID(ctx, id)
	if err != nil {
		return ScheduleRecord{}, fmt.Errorf("load record %s: %w", id, err)
	}
	if existing == nil {
		return ScheduleRecord{}, &RecordNotFoundError{ID: id}
	}

	emp, cat, err := m.resolve(ctx, input)
	if err != nil {
		return ScheduleRecord{}, err
	}

	unlock := m.locks.lock(emp.ID)
	defer unlock()

	if err := m.checkConflicts(ctx, emp.ID, input, id); err != nil {
		return ScheduleRecord{}, err
	}

	record := ScheduleRecord{
		ID:          id,
		EmployeeID:  emp.ID,
		DateStart:   input.DateStart,
		DateEnd:     input.DateEnd,
		CategoryID:  cat.ID,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   m.now(),
	}

	if err := m.store.Save(ctx, record); err != nil {
		return ScheduleRecord{}, fmt.Errorf("save record: %w", err)
	}

	m.writeAudit(ctx, actor, AuditRecordUpdated, record.ID,
		fmt.Sprintf("%s %s [%s, %s]", emp.ShortName(), cat.Name, record.DateStart, record.DateEnd))

	return record, nil
}

// Delete removes a record unconditionally. Schedule records have no
// dependents in this subsystem, so existence is the only check.
func (m *Manager) Delete(ctx context.Context, actor string, id RecordID) error {
	existing, err := m.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load record %s: %w", id, err)
	}
	if existing == nil {
		return &RecordNotFoundError{ID: id}
	}

	if err := m.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}

	m.writeAudit(ctx, actor, AuditRecordDeleted, id,
		fmt.Sprintf("[%s, %s]", existing.DateStart, existing.DateEnd))

	return nil
}

// =============================================================================
// CALENDAR
// =============================================================================

// BuildCalendarGrid lists the reporting records for the period, resolves
// names and categories, and builds the month grid. The period must bound
// a single calendar month.
func (m *Manager) BuildCalendarGrid(ctx context.Context, periodStart, periodEnd Date, departmentContains string) (CalendarGrid, error) {
	records, err := m.ListForPeriod(ctx, periodStart, periodEnd, departmentContains)
	if err != nil {
		return CalendarGrid{}, err
	}

	entries, err := m.toGridEntries(ctx, records)
	if err != nil {
		return CalendarGrid{}, err
	}

	return BuildGrid(periodStart, periodEnd, entries), nil
}

func (m *Manager) toGridEntries(ctx context.Context, records []ScheduleRecord) ([]GridEntry, error) {
	entries := make([]GridEntry, 0, len(records))
	for _, r := range records {
		emp, err := m.directory.GetEmployee(ctx, r.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("resolve employee %s: %w", r.EmployeeID, err)
		}
		cat, err := m.catalog.GetCategory(ctx, r.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("resolve category %s: %w", r.CategoryID, err)
		}
		if emp == nil || cat == nil {
			// Dangling reference; the record cannot be drawn.
			continue
		}
		entries = append(entries, GridEntry{
			Start:        r.DateStart,
			End:          r.DateEnd,
			Employee:     *emp,
			CategoryName: cat.Name,
		})
	}
	return entries, nil
}

// =============================================================================
// RESOLUTION & VALIDATION
// =============================================================================

func (m *Manager) resolve(ctx context.Context, input RecordInput) (*Employee, *AbsenceCategory, error) {
	if input.DateEnd.Before(input.DateStart) {
		return nil, nil, ErrInvalidRange
	}

	emp, err := m.resolveEmployee(ctx, input.EmployeeFullName)
	if err != nil {
		return nil, nil, err
	}

	cat, err := m.catalog.FindByName(ctx, strings.TrimSpace(input.CategoryName))
	if err != nil {
		return nil, nil, fmt.Errorf("resolve category: %w", err)
	}
	if cat == nil {
		return nil, nil, &CategoryNotFoundError{Name: input.CategoryName}
	}

	return emp, cat, nil
}

// resolveEmployee splits a full-name string on whitespace into
// surname / first name / optional patronymic and requires an exact
// match on all present components.
func (m *Manager) resolveEmployee(ctx context.Context, fullName string) (*Employee, error) {
	parts := strings.Fields(fullName)
	switch {
	case len(parts) < 2:
		return nil, &EmployeeNotFoundError{FullName: fullName, Reason: "expected at least surname and first name"}
	case len(parts) > 3:
		return nil, &EmployeeNotFoundError{FullName: fullName, Reason: "expected at most surname, first name and patronymic"}
	}

	patronymic := ""
	if len(parts) == 3 {
		patronymic = parts[2]
	}

	emp, err := m.directory.FindByName(ctx, parts[0], parts[1], patronymic)
	if err != nil {
		return nil, fmt.Errorf("resolve employee: %w", err)
	}
	if emp == nil {
		return nil, &EmployeeNotFoundError{FullName: fullName}
	}
	return emp, nil
}

func (m *Manager) checkConflicts(ctx context.Context, employeeID EmployeeID, input RecordInput, excludeID RecordID) error {
	records, err := m.store.FindByEmployee(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("load records for employee %s: %w", employeeID, err)
	}

	existing := make([]Interval, 0, len(records))
	for _, r := range records {
		existing = append(existing, IntervalOf(r))
	}

	candidate := Interval{ID: excludeID, Start: input.DateStart, End: input.DateEnd}
	if hit, conflict := Conflicts(existing, candidate, excludeID); conflict {
		return &DateConflictError{EmployeeID: employeeID, Candidate: candidate, Existing: hit}
	}
	return nil
}

func (m *Manager) employeeIndex(ctx context.Context) (map[EmployeeID]Employee, error) {
	employees, err := m.directory.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	index := make(map[EmployeeID]Employee, len(employees))
	for _, e := range employees {
		index[e.ID] = e
	}
	return index, nil
}

func (m *Manager) writeAudit(ctx context.Context, actor string, action AuditAction, recordID RecordID, detail string) {
	if m.audit == nil {
		return
	}
	entry := AuditEntry{
		ID:       m.newID(),
		At:       m.now(),
		ActorID:  actor,
		Action:   action,
		RecordID: recordID,
		Detail:   detail,
	}
	// The mutation already committed; audit failure must not undo it.
	_ = m.audit.Append(ctx, entry)
}

// containsFold reports whether s contains substr, case-insensitively.
// An empty substr matches everything.
func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// =============================================================================
// PER-EMPLOYEE ADVISORY LOCKS
// =============================================================================

// employeeLocks serializes check-and-write sequences per employee so two
// overlapping requests cannot both pass the conflict check.
type employeeLocks struct {
	mu    sync.Mutex
	locks map[EmployeeID]*sync.Mutex
}

func (l *employeeLocks) lock(id EmployeeID) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[EmployeeID]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
