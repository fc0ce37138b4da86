/*
grid.go - Month calendar grid construction

PURPOSE:
  Turns a flat list of duty/vacation intervals into a two-dimensional
  month sheet: a sequence of week-blocks, each with 7 day-columns
  (Monday=0 .. Sunday=6) and a variable number of stacking sub-rows.
  Records active on the same day stack vertically within that day's
  column; a block is always at least 4 sub-rows tall and grows to fit
  its busiest day.

DETERMINISM:
  Given the same entries in the same order and the same period, BuildGrid
  produces identical output. Stacking order within a column follows the
  input order of the entries, so report generation is reproducible.

SEE ALSO:
  - manager.go: Produces the pre-filtered entry list
  - report: Renders the grid into a document
*/
package roster

import (
	"strings"
	"time"
)

// =============================================================================
// GRID STRUCTURE
// =============================================================================

// ColorCategory selects the rendering color of a grid cell.
type ColorCategory string

const (
	ColorDuty     ColorCategory = "duty"
	ColorVacation ColorCategory = "vacation"
	ColorNeutral  ColorCategory = "neutral"
)

// ColorFor maps a category name to its rendering color. The mapping is
// fixed and case-insensitive; unrecognized names fall back to neutral.
func ColorFor(categoryName string) ColorCategory {
	switch {
	case equalFoldTrim(categoryName, "duty"):
		return ColorDuty
	case equalFoldTrim(categoryName, "vacation"):
		return ColorVacation
	default:
		return ColorNeutral
	}
}

// GridEntry is one interval to be drawn, with everything the builder
// needs already resolved.
type GridEntry struct {
	Start        Date
	End          Date
	Employee     Employee
	CategoryName string
}

// GridCell is one (column, sub-row) slot of a week-block. Empty cells
// have an empty Mark.
type GridCell struct {
	Mark  string
	Color ColorCategory
}

// IsEmpty reports whether the cell holds no occupant.
func (c GridCell) IsEmpty() bool { return c.Mark == "" }

// WeekBlock is one calendar week of the grid: 7 day-columns and Rows
// stacking sub-rows. Days holds the day-of-month per column, 0 where
// the column falls outside the month (partial first/last weeks).
type WeekBlock struct {
	Days  [7]int
	Rows  int
	Cells [][7]GridCell // indexed [subRow][column], len == Rows
}

// minWeekRows is the minimum sub-row count of every week-block. The
// renderer relies on blocks never being shorter than this.
const minWeekRows = 4

// CalendarGrid is the derived month sheet. It is never persisted.
type CalendarGrid struct {
	Year   int
	Month  time.Month
	Blocks []WeekBlock
}

// =============================================================================
// BUILDER
// =============================================================================

// BuildGrid lays out the entries over the month bounded by
// [periodStart, periodEnd]. The period is expected to bound a single
// calendar month; daysInMonth is derived from periodEnd.
//
// The walk processes one week-block per iteration: the first block may
// start mid-week (column = weekday of the 1st in the Monday=0 scheme),
// subsequent blocks start at column 0, and the last block may end early.
// An entry spanning a week boundary contributes occurrences to every
// block it overlaps, grouped per column independently in each block.
func BuildGrid(periodStart, periodEnd Date, entries []GridEntry) CalendarGrid {
	grid := CalendarGrid{
		Year:  periodEnd.Year(),
		Month: periodEnd.Month(),
	}

	daysInMonth := DaysInMonth(periodEnd)

	currentDay := 1
	for currentDay <= daysInMonth {
		date := NewDate(grid.Year, grid.Month, currentDay)
		col := mondayColumn(date.Weekday())

		var block WeekBlock
		// occurrences[col] holds the indices of entries active on that
		// column's date, in entry input order.
		var occurrences [7][]int

		for col <= 6 && currentDay <= daysInMonth {
			date = NewDate(grid.Year, grid.Month, currentDay)
			block.Days[col] = currentDay
			for i, e := range entries {
				if activeOn(e, date) {
					occurrences[col] = append(occurrences[col], i)
				}
			}
			col++
			currentDay++
		}

		block.Rows = minWeekRows
		for _, occ := range occurrences {
			if len(occ) > block.Rows {
				block.Rows = len(occ)
			}
		}

		// Allocate the full rectangle so the renderer can draw borders
		// against empty cells too.
		block.Cells = make([][7]GridCell, block.Rows)
		for column, occ := range occurrences {
			for subRow, entryIdx := range occ {
				e := entries[entryIdx]
				block.Cells[subRow][column] = GridCell{
					Mark:  e.Employee.ShortName(),
					Color: ColorFor(e.CategoryName),
				}
			}
		}

		grid.Blocks = append(grid.Blocks, block)
	}

	return grid
}

// mondayColumn converts a Go weekday to the Monday=0 .. Sunday=6 scheme.
func mondayColumn(wd time.Weekday) int {
	if wd == time.Sunday {
		return 6
	}
	return int(wd) - 1
}

func activeOn(e GridEntry, d Date) bool {
	return d.AfterOrEqual(e.Start) && d.BeforeOrEqual(e.End)
}

func equalFoldTrim(s, target string) bool {
	return strings.EqualFold(strings.TrimSpace(s), target)
}
