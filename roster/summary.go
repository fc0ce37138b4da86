package roster

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD SUMMARY - Absence-day totals per employee and category
// =============================================================================

// CategoryTotal is the number of absence days one employee spent in one
// category within a period. Days are counted exactly, clipped to the
// period boundaries.
type CategoryTotal struct {
	CategoryName string
	Days         decimal.Decimal
}

// EmployeeSummary aggregates one employee's absence days over a period.
type EmployeeSummary struct {
	Employee   Employee
	Categories []CategoryTotal
	TotalDays  decimal.Decimal
}

// Summary computes per-employee, per-category absence-day totals for
// the period. All categories participate, not only the reporting
// allow-list. An optional department substring filter applies.
// Results are ordered by surname then first name; categories by name.
func (m *Manager) Summary(ctx context.Context, periodStart, periodEnd Date, departmentContains string) ([]EmployeeSummary, error) {
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

	type key struct {
		employee EmployeeID
		category string
	}
	totals := make(map[key]decimal.Decimal)

	for _, r := range records {
		emp, ok := employees[r.EmployeeID]
		if !ok || !containsFold(emp.Department, departmentContains) {
			continue
		}
		cat, err := m.catalog.GetCategory(ctx, r.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("resolve category %s: %w", r.CategoryID, err)
		}
		if cat == nil {
			continue
		}

		days := clippedDays(r, periodStart, periodEnd)
		k := key{employee: r.EmployeeID, category: cat.Name}
		totals[k] = totals[k].Add(decimal.NewFromInt(int64(days)))
	}

	byEmployee := make(map[EmployeeID]map[string]decimal.Decimal)
	for k, v := range totals {
		if byEmployee[k.employee] == nil {
			byEmployee[k.employee] = make(map[string]decimal.Decimal)
		}
		byEmployee[k.employee][k.category] = v
	}

	summaries := make([]EmployeeSummary, 0, len(byEmployee))
	for id, categories := range byEmployee {
		summary := EmployeeSummary{Employee: employees[id]}
		names := make([]string, 0, len(categories))
		for name := range categories {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			summary.Categories = append(summary.Categories, CategoryTotal{
				CategoryName: name,
				Days:         categories[name],
			})
			summary.TotalDays = summary.TotalDays.Add(categories[name])
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i].Employee, summaries[j].Employee
		if a.Surname != b.Surname {
			return a.Surname < b.Surname
		}
		return a.FirstName < b.FirstName
	})

	return summaries, nil
}

// clippedDays counts the days of a record inside [periodStart, periodEnd].
func clippedDays(r ScheduleRecord, periodStart, periodEnd Date) int {
	start := r.DateStart
	if start.Before(periodStart) {
		start = periodStart
	}
	end := r.DateEnd
	if end.After(periodEnd) {
		end = periodEnd
	}
	return DaysBetween(start, end)
}
