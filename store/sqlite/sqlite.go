/*
Package sqlite provides a SQLite-backed implementation of the roster
collaborator interfaces.

PURPOSE:
  Implements roster.ScheduleStore, roster.EmployeeDirectory,
  roster.AbsenceCategoryCatalog and roster.AuditLog on a single SQLite
  database. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  schedule_records:   Duty/absence intervals per employee
  employees:          Directory entries (surname, first name, patronymic)
  absence_categories: Category dictionary (name unique, case-insensitive)
  audit_log:          Append-only mutation trail

INDEXES:
  idx_records_employee:    Conflict checks load one employee's records
  idx_records_range:       Period-intersection queries
  idx_categories_name:     Case-insensitive name resolution

CONCURRENCY:
  Uses sync.RWMutex for thread-safety around the shared *sql.DB. The
  per-employee serialization of check-and-write lives in the Manager;
  the store only guarantees each statement is atomic.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers do not
  block while a report query runs alongside record writes.

USAGE:
  store, err := sqlite.New("./data/roster.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  manager := roster.NewManager(store, store.Directory(), store.Catalog(),
      roster.WithAuditLog(store))

SEE ALSO:
  - roster/manager.go: Interface definitions
  - roster/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/roster-engine/roster"
)

// Store implements the roster collaborator interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Duty/absence intervals, one row per schedule record
	CREATE TABLE IF NOT EXISTS schedule_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		date_start TEXT NOT NULL,
		date_end TEXT NOT NULL,
		category_id TEXT NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Conflict checks load one employee's records (hot path)
	CREATE INDEX IF NOT EXISTS idx_records_employee
		ON schedule_records(employee_id);

	-- Period-intersection queries for reporting
	CREATE INDEX IF NOT EXISTS idx_records_range
		ON schedule_records(date_start, date_end);

	-- Directory entries
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		surname TEXT NOT NULL,
		first_name TEXT NOT NULL,
		patronymic TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_surname
		ON employees(surname, first_name);

	-- Category dictionary; names are unique ignoring case
	CREATE TABLE IF NOT EXISTS absence_categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL COLLATE NOCASE
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name
		ON absence_categories(name COLLATE NOCASE);

	-- Append-only mutation trail
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		action TEXT NOT NULL,
		record_id TEXT NOT NULL,
		detail TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_audit_record
		ON audit_log(record_id);
	CREATE INDEX IF NOT EXISTS idx_audit_actor
		ON audit_log(actor_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SCHEDULE STORE (roster.ScheduleStore interface)
// =============================================================================

const recordColumns = "id, employee_id, date_start, date_end, category_id, description, created_at, updated_at"

// FindAll returns every schedule record in insertion order.
func (s *Store) FindAll(ctx context.Context) ([]roster.ScheduleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + recordColumns + " FROM schedule_records ORDER BY rowid ASC"
	return s.queryRecords(ctx, query)
}

// FindByID returns a record by ID, or (nil, nil) if absent.
func (s *Store) FindByID(ctx context.Context, id roster.RecordID) (*roster.ScheduleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + recordColumns + " FROM schedule_records WHERE id = ?"
	records, err := s.queryRecords(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// FindByEmployee returns one employee's records ordered by start date.
func (s *Store) FindByEmployee(ctx context.Context, employeeID roster.EmployeeID) ([]roster.ScheduleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + recordColumns + ` FROM schedule_records
		WHERE employee_id = ?
		ORDER BY date_start ASC`
	return s.queryRecords(ctx, query, employeeID)
}

// Save inserts or replaces a record by ID.
func (s *Store) Save(ctx context.Context, r roster.ScheduleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO schedule_records
		(id, employee_id, date_start, date_end, category_id, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			date_start = excluded.date_start,
			date_end = excluded.date_end,
			category_id = excluded.category_id,
			description = excluded.description,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.EmployeeID,
		r.DateStart.String(),
		r.DateEnd.String(),
		r.CategoryID,
		nullString(r.Description),
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// DeleteByID removes a record. Deleting an absent ID is not an error;
// existence is the Manager's concern.
func (s *Store) DeleteByID(ctx context.Context, id roster.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM schedule_records WHERE id = ?", id)
	return err
}

// FindIntersecting returns records whose range touches [from, to].
// Lexicographic comparison works because dates are stored as YYYY-MM-DD.
func (s *Store) FindIntersecting(ctx context.Context, from, to roster.Date) ([]roster.ScheduleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + recordColumns + ` FROM schedule_records
		WHERE date_end >= ? AND date_start <= ?
		ORDER BY rowid ASC`
	return s.queryRecords(ctx, query, from.String(), to.String())
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]roster.ScheduleRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []roster.ScheduleRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (roster.ScheduleRecord, error) {
	var (
		r           roster.ScheduleRecord
		dateStart   string
		dateEnd     string
		description sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := rows.Scan(&r.ID, &r.EmployeeID, &dateStart, &dateEnd, &r.CategoryID,
		&description, &createdAt, &updatedAt)
	if err != nil {
		return r, fmt.Errorf("failed to scan record: %w", err)
	}

	r.DateStart, _ = roster.ParseDate(dateStart)
	r.DateEnd, _ = roster.ParseDate(dateEnd)
	r.Description = description.String
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return r, nil
}

// =============================================================================
// EMPLOYEE DIRECTORY (roster.EmployeeDirectory interface)
// =============================================================================

// SaveEmployee inserts or replaces a directory entry.
func (s *Store) SaveEmployee(ctx context.Context, e roster.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, surname, first_name, patronymic, department, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			surname = excluded.surname,
			first_name = excluded.first_name,
			patronymic = excluded.patronymic,
			department = excluded.department
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Surname, e.FirstName, e.Patronymic, e.Department,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// FindByName matches the present name components exactly and resolves
// only when exactly one employee matches. When the patronymic is empty
// it is not part of the match.
func (s *Store) FindByName(ctx context.Context, surname, firstName, patronymic string) (*roster.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, surname, first_name, patronymic, department
		FROM employees
		WHERE surname = ? AND first_name = ?
	`
	args := []any{surname, firstName}
	if patronymic != "" {
		query += " AND patronymic = ?"
		args = append(args, patronymic)
	}

	employees, err := s.queryEmployees(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(employees) != 1 {
		return nil, nil
	}
	return &employees[0], nil
}

// GetEmployee returns an employee by ID, or (nil, nil) if absent.
func (s *Store) GetEmployee(ctx context.Context, id roster.EmployeeID) (*roster.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employees, err := s.queryEmployees(ctx,
		"SELECT id, surname, first_name, patronymic, department FROM employees WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, nil
	}
	return &employees[0], nil
}

// ListEmployees returns all employees ordered by surname.
func (s *Store) ListEmployees(ctx context.Context) ([]roster.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEmployees(ctx,
		"SELECT id, surname, first_name, patronymic, department FROM employees ORDER BY surname, first_name")
}

func (s *Store) queryEmployees(ctx context.Context, query string, args ...any) ([]roster.Employee, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []roster.Employee
	for rows.Next() {
		var e roster.Employee
		if err := rows.Scan(&e.ID, &e.Surname, &e.FirstName, &e.Patronymic, &e.Department); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// Directory returns the store as a roster.EmployeeDirectory.
func (s *Store) Directory() roster.EmployeeDirectory {
	return s
}

// =============================================================================
// ABSENCE CATEGORY CATALOG (roster.AbsenceCategoryCatalog interface)
// =============================================================================

// SaveCategory inserts a category, ignoring case-insensitive duplicates.
func (s *Store) SaveCategory(ctx context.Context, c roster.AbsenceCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO absence_categories (id, name)
		VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, c.ID, c.Name)
	return err
}

// SeedDefaultCategories inserts the standard category set if absent.
func (s *Store) SeedDefaultCategories(ctx context.Context) error {
	for i, name := range roster.DefaultCategoryNames {
		c := roster.AbsenceCategory{
			ID:   roster.CategoryID(fmt.Sprintf("cat-%d", i+1)),
			Name: name,
		}
		if err := s.SaveCategory(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Catalog returns the store's catalog view. A separate view type is
// needed because FindByName is already the directory lookup on Store.
func (s *Store) Catalog() roster.AbsenceCategoryCatalog {
	return catalogView{s}
}

type catalogView struct{ s *Store }

// FindByName matches a category name case-insensitively (NOCASE column).
func (v catalogView) FindByName(ctx context.Context, name string) (*roster.AbsenceCategory, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	var c roster.AbsenceCategory
	err := v.s.db.QueryRowContext(ctx,
		"SELECT id, name FROM absence_categories WHERE name = ? COLLATE NOCASE",
		strings.TrimSpace(name),
	).Scan(&c.ID, &c.Name)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (v catalogView) GetCategory(ctx context.Context, id roster.CategoryID) (*roster.AbsenceCategory, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	var c roster.AbsenceCategory
	err := v.s.db.QueryRowContext(ctx,
		"SELECT id, name FROM absence_categories WHERE id = ?", id,
	).Scan(&c.ID, &c.Name)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (v catalogView) AllNames(ctx context.Context) ([]string, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	rows, err := v.s.db.QueryContext(ctx,
		"SELECT name FROM absence_categories ORDER BY rowid ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// =============================================================================
// AUDIT LOG (roster.AuditLog interface)
// =============================================================================

// Append adds an audit entry. Append-only: no update or delete exists.
func (s *Store) Append(ctx context.Context, entry roster.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO audit_log (id, at, actor_id, action, record_id, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.At.UTC().Format(time.RFC3339),
		entry.ActorID,
		entry.Action,
		entry.RecordID,
		nullString(entry.Detail),
	)
	return err
}

// Query returns audit entries, newest first.
func (s *Store) Query(ctx context.Context, filter roster.AuditFilter) ([]roster.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, at, actor_id, action, record_id, detail FROM audit_log"
	var conds []string
	var args []any
	if filter.RecordID != nil {
		conds = append(conds, "record_id = ?")
		args = append(args, *filter.RecordID)
	}
	if filter.ActorID != nil {
		conds = append(conds, "actor_id = ?")
		args = append(args, *filter.ActorID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY at DESC, rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []roster.AuditEntry
	for rows.Next() {
		var (
			e      roster.AuditEntry
			at     string
			detail sql.NullString
		)
		if err := rows.Scan(&e.ID, &at, &e.ActorID, &e.Action, &e.RecordID, &detail); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339, at)
		e.Detail = detail.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"schedule_records", "employees", "absence_categories", "audit_log"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
