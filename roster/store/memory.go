// Package store provides in-memory implementations of the roster
// collaborator interfaces, used in tests and dev mode.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/warp/roster-engine/roster"
)

// =============================================================================
// MEMORY SCHEDULE STORE
// =============================================================================

// Memory implements roster.ScheduleStore, roster.EmployeeDirectory,
// roster.AbsenceCategoryCatalog and roster.AuditLog in process memory.
type Memory struct {
	mu         sync.RWMutex
	records    []roster.ScheduleRecord
	employees  []roster.Employee
	categories []roster.AbsenceCategory
	audit      []roster.AuditEntry
}

func NewMemory() *Memory {
	return &Memory{}
}

// FindAll returns records in insertion order.
func (m *Memory) FindAll(_ context.Context) ([]roster.ScheduleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]roster.ScheduleRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *Memory) FindByID(_ context.Context, id roster.RecordID) (*roster.ScheduleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.records {
		if r.ID == id {
			rec := r
			return &rec, nil
		}
	}
	return nil, nil
}

func (m *Memory) FindByEmployee(_ context.Context, employeeID roster.EmployeeID) ([]roster.ScheduleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []roster.ScheduleRecord
	for _, r := range m.records {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

// FindIntersecting returns records whose range touches [from, to], in
// insertion order.
func (m *Memory) FindIntersecting(_ context.Context, from, to roster.Date) ([]roster.ScheduleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []roster.ScheduleRecord
	for _, r := range m.records {
		if r.Intersects(from, to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Save inserts or replaces by ID, preserving insertion order on replace.
func (m *Memory) Save(_ context.Context, record roster.ScheduleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.records {
		if r.ID == record.ID {
			m.records[i] = record
			return nil
		}
	}
	m.records = append(m.records, record)
	return nil
}

func (m *Memory) DeleteByID(_ context.Context, id roster.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.records {
		if r.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return nil
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

// AddEmployee registers an employee. Intended for test and dev seeding.
func (m *Memory) AddEmployee(e roster.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = append(m.employees, e)
}

// FindByName requires an exact match on all present components and
// resolves only when exactly one employee matches.
func (m *Memory) FindByName(_ context.Context, surname, firstName, patronymic string) (*roster.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *roster.Employee
	for i, e := range m.employees {
		if e.Surname != surname || e.FirstName != firstName {
			continue
		}
		if patronymic != "" && e.Patronymic != patronymic {
			continue
		}
		if found != nil {
			return nil, nil // ambiguous
		}
		found = &m.employees[i]
	}
	if found == nil {
		return nil, nil
	}
	emp := *found
	return &emp, nil
}

func (m *Memory) GetEmployee(_ context.Context, id roster.EmployeeID) (*roster.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.employees {
		if e.ID == id {
			emp := e
			return &emp, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]roster.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]roster.Employee, len(m.employees))
	copy(out, m.employees)
	return out, nil
}

// =============================================================================
// ABSENCE CATEGORY CATALOG
// =============================================================================

// AddCategory registers a category.
func (m *Memory) AddCategory(c roster.AbsenceCategory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = append(m.categories, c)
}

// SeedDefaultCategories registers the standard category set with
// predictable IDs ("cat-1", "cat-2", ...).
func (m *Memory) SeedDefaultCategories() {
	for i, name := range roster.DefaultCategoryNames {
		m.AddCategory(roster.AbsenceCategory{
			ID:   roster.CategoryID(fmt.Sprintf("cat-%d", i+1)),
			Name: name,
		})
	}
}

// findCategory backs the catalog view; the method name FindByName is
// already taken by the employee directory on this type.
func (m *Memory) findCategory(name string) (*roster.AbsenceCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.categories {
		if strings.EqualFold(c.Name, name) {
			cat := c
			return &cat, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetCategory(_ context.Context, id roster.CategoryID) (*roster.AbsenceCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.categories {
		if c.ID == id {
			cat := c
			return &cat, nil
		}
	}
	return nil, nil
}

func (m *Memory) AllNames(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.categories))
	seen := make(map[string]struct{}, len(m.categories))
	for _, c := range m.categories {
		key := strings.ToLower(c.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, c.Name)
	}
	return names, nil
}

// Catalog returns the memory store as an AbsenceCategoryCatalog. The
// catalog's FindByName signature differs from the directory's, so the
// adapter keeps both usable from one Memory instance.
func (m *Memory) Catalog() roster.AbsenceCategoryCatalog {
	return catalogView{m}
}

type catalogView struct{ m *Memory }

func (v catalogView) FindByName(ctx context.Context, name string) (*roster.AbsenceCategory, error) {
	return v.m.findCategory(name)
}

func (v catalogView) GetCategory(ctx context.Context, id roster.CategoryID) (*roster.AbsenceCategory, error) {
	return v.m.GetCategory(ctx, id)
}

func (v catalogView) AllNames(ctx context.Context) ([]string, error) {
	return v.m.AllNames(ctx)
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (m *Memory) Append(_ context.Context, entry roster.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entry)
	return nil
}

// Query returns matching entries, newest first.
func (m *Memory) Query(_ context.Context, filter roster.AuditFilter) ([]roster.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []roster.AuditEntry
	for i := len(m.audit) - 1; i >= 0; i-- {
		e := m.audit[i]
		if filter.RecordID != nil && e.RecordID != *filter.RecordID {
			continue
		}
		if filter.ActorID != nil && e.ActorID != *filter.ActorID {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}
