package roster_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/roster-engine/roster"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func ivanov() roster.Employee {
	return roster.Employee{
		ID: "emp-1", Surname: "Ivanov", FirstName: "Ivan", Patronymic: "Petrovich",
		Department: "Operations",
	}
}

func petrov() roster.Employee {
	return roster.Employee{
		ID: "emp-2", Surname: "Petrov", FirstName: "Pyotr",
		Department: "Operations",
	}
}

func entry(e roster.Employee, category string, start, end roster.Date) roster.GridEntry {
	return roster.GridEntry{Start: start, End: end, Employee: e, CategoryName: category}
}

func buildMay2025(entries ...roster.GridEntry) roster.CalendarGrid {
	return roster.BuildGrid(
		date(2025, time.May, 1),
		date(2025, time.May, 31),
		entries,
	)
}

// =============================================================================
// NAME AND COLOR MAPPING
// =============================================================================

func TestEmployee_ShortName(t *testing.T) {
	assert.Equal(t, "Ivanov I.P.", ivanov().ShortName())
	assert.Equal(t, "Petrov P.", petrov().ShortName(), "no patronymic, single initial")
	assert.Equal(t, "Smith", roster.Employee{Surname: "Smith"}.ShortName(), "no first name, surname only")
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, roster.ColorDuty, roster.ColorFor("duty"))
	assert.Equal(t, roster.ColorDuty, roster.ColorFor("  Duty "), "case and whitespace insensitive")
	assert.Equal(t, roster.ColorVacation, roster.ColorFor("VACATION"))
	assert.Equal(t, roster.ColorNeutral, roster.ColorFor("sick leave"))
	assert.Equal(t, roster.ColorNeutral, roster.ColorFor(""))
}

// =============================================================================
// WEEK-BLOCK LAYOUT
// =============================================================================

func TestBuildGrid_May2025_BlockLayout(t *testing.T) {
	// GIVEN: May 2025, which starts on a Thursday and has 31 days
	// WHEN: Building an empty grid
	// THEN: 5 week-blocks; the first covers columns Thu..Sun only, the
	//       last covers Mon..Sat, and every block has 4 sub-rows

	grid := buildMay2025()

	assert.Equal(t, 2025, grid.Year)
	assert.Equal(t, time.May, grid.Month)
	require.Len(t, grid.Blocks, 5)

	first := grid.Blocks[0]
	assert.Equal(t, [7]int{0, 0, 0, 1, 2, 3, 4}, first.Days, "May 1 is a Thursday (column 3)")

	second := grid.Blocks[1]
	assert.Equal(t, [7]int{5, 6, 7, 8, 9, 10, 11}, second.Days)

	last := grid.Blocks[4]
	assert.Equal(t, [7]int{26, 27, 28, 29, 30, 31, 0}, last.Days, "May 31 is a Saturday")

	for i, block := range grid.Blocks {
		assert.Equal(t, 4, block.Rows, "block %d should have the minimum 4 sub-rows", i)
		assert.Len(t, block.Cells, block.Rows)
	}
}

func TestBuildGrid_EmptyGrid_AllCellsEmpty(t *testing.T) {
	grid := buildMay2025()

	for _, block := range grid.Blocks {
		for _, row := range block.Cells {
			for _, cell := range row {
				assert.True(t, cell.IsEmpty())
			}
		}
	}
}

// =============================================================================
// OCCUPANT PLACEMENT
// =============================================================================

func TestBuildGrid_SingleEntry_FillsItsDays(t *testing.T) {
	// GIVEN: Ivanov on duty May 5-7 (Mon-Wed of the second week)
	// WHEN: Building the grid
	// THEN: Columns 0..2 of block 1 hold his mark in sub-row 0, colored
	//       as duty; all other cells stay empty

	grid := buildMay2025(
		entry(ivanov(), "duty", date(2025, time.May, 5), date(2025, time.May, 7)),
	)

	block := grid.Blocks[1]
	for col := 0; col <= 2; col++ {
		cell := block.Cells[0][col]
		assert.Equal(t, "Ivanov I.P.", cell.Mark, "column %d", col)
		assert.Equal(t, roster.ColorDuty, cell.Color)
	}
	for col := 3; col <= 6; col++ {
		assert.True(t, block.Cells[0][col].IsEmpty(), "column %d", col)
	}
	assert.True(t, grid.Blocks[0].Cells[0][3].IsEmpty(), "no spill into the first week")
}

func TestBuildGrid_Stacking_PerColumn(t *testing.T) {
	// GIVEN: Ivanov on duty May 5 only, Petrov on vacation May 5-7
	// WHEN: Building the grid with Ivanov's entry first
	// THEN: May 5 stacks Ivanov over Petrov; May 6-7 hold Petrov alone
	//       in sub-row 0, since columns stack independently

	grid := buildMay2025(
		entry(ivanov(), "duty", date(2025, time.May, 5), date(2025, time.May, 5)),
		entry(petrov(), "vacation", date(2025, time.May, 5), date(2025, time.May, 7)),
	)

	block := grid.Blocks[1]
	assert.Equal(t, 4, block.Rows, "2 occupants never exceed the minimum height")

	assert.Equal(t, "Ivanov I.P.", block.Cells[0][0].Mark)
	assert.Equal(t, roster.ColorDuty, block.Cells[0][0].Color)
	assert.Equal(t, "Petrov P.", block.Cells[1][0].Mark)
	assert.Equal(t, roster.ColorVacation, block.Cells[1][0].Color)

	for col := 1; col <= 2; col++ {
		assert.Equal(t, "Petrov P.", block.Cells[0][col].Mark, "column %d", col)
		assert.True(t, block.Cells[1][col].IsEmpty(), "column %d has a single occupant", col)
	}
}

func TestBuildGrid_RowsGrowPastMinimum(t *testing.T) {
	// GIVEN: Five employees all away on May 9
	// WHEN: Building the grid
	// THEN: That week-block grows to 5 sub-rows

	employees := []roster.Employee{
		{ID: "e1", Surname: "Adams", FirstName: "A"},
		{ID: "e2", Surname: "Brown", FirstName: "B"},
		{ID: "e3", Surname: "Clark", FirstName: "C"},
		{ID: "e4", Surname: "Davis", FirstName: "D"},
		{ID: "e5", Surname: "Evans", FirstName: "E"},
	}
	entries := make([]roster.GridEntry, len(employees))
	for i, e := range employees {
		entries[i] = entry(e, "duty", date(2025, time.May, 9), date(2025, time.May, 9))
	}

	grid := buildMay2025(entries...)

	block := grid.Blocks[1] // May 9 is a Friday in the second week
	assert.Equal(t, 5, block.Rows)

	col := 4 // Friday column
	for i, e := range employees {
		assert.Equal(t, e.ShortName(), block.Cells[i][col].Mark)
	}
	// Other blocks keep the minimum height.
	assert.Equal(t, 4, grid.Blocks[0].Rows)
	assert.Equal(t, 4, grid.Blocks[2].Rows)
}

func TestBuildGrid_EntrySpanningWeekBoundary(t *testing.T) {
	// GIVEN: Ivanov away May 10-13 (Sat-Sun of week 2, Mon-Tue of week 3)
	// WHEN: Building the grid
	// THEN: His mark appears in both blocks, in the right columns

	grid := buildMay2025(
		entry(ivanov(), "vacation", date(2025, time.May, 10), date(2025, time.May, 13)),
	)

	week2 := grid.Blocks[1]
	assert.Equal(t, "Ivanov I.P.", week2.Cells[0][5].Mark, "Sat May 10")
	assert.Equal(t, "Ivanov I.P.", week2.Cells[0][6].Mark, "Sun May 11")

	week3 := grid.Blocks[2]
	assert.Equal(t, "Ivanov I.P.", week3.Cells[0][0].Mark, "Mon May 12")
	assert.Equal(t, "Ivanov I.P.", week3.Cells[0][1].Mark, "Tue May 13")
	assert.True(t, week3.Cells[0][2].IsEmpty(), "Wed May 14 is clear")
}

func TestBuildGrid_Deterministic(t *testing.T) {
	// GIVEN: The same entries in the same order
	// WHEN: Building the grid twice
	// THEN: The outputs are identical

	entries := []roster.GridEntry{
		entry(ivanov(), "duty", date(2025, time.May, 5), date(2025, time.May, 7)),
		entry(petrov(), "vacation", date(2025, time.May, 6), date(2025, time.May, 20)),
	}

	a := buildMay2025(entries...)
	b := buildMay2025(entries...)

	assert.Equal(t, a, b)
}

func TestBuildGrid_February_NonLeap(t *testing.T) {
	// GIVEN: February 2025 (28 days, starts Saturday)
	// WHEN: Building an empty grid
	// THEN: 5 blocks; the first holds only Sat/Sun, the last only Feb 24-28

	grid := roster.BuildGrid(date(2025, time.February, 1), date(2025, time.February, 28), nil)

	require.Len(t, grid.Blocks, 5)
	assert.Equal(t, [7]int{0, 0, 0, 0, 0, 1, 2}, grid.Blocks[0].Days)
	assert.Equal(t, [7]int{24, 25, 26, 27, 28, 0, 0}, grid.Blocks[4].Days)
}
