package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/roster-engine/report"
	"github.com/warp/roster-engine/roster"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func may2025Grid(entries ...roster.GridEntry) roster.CalendarGrid {
	return roster.BuildGrid(
		roster.NewDate(2025, time.May, 1),
		roster.NewDate(2025, time.May, 31),
		entries,
	)
}

func dutyEntry() roster.GridEntry {
	return roster.GridEntry{
		Start: roster.NewDate(2025, time.May, 5),
		End:   roster.NewDate(2025, time.May, 7),
		Employee: roster.Employee{
			ID: "emp-1", Surname: "Ivanov", FirstName: "Ivan", Patronymic: "Petrovich",
		},
		CategoryName: "duty",
	}
}

// =============================================================================
// TEXT RENDERER TESTS
// =============================================================================

func TestTextRenderer_LabelAndTimestamp(t *testing.T) {
	// GIVEN: A fixed generation time
	// WHEN: Rendering any grid
	// THEN: The sheet starts with the period label and the stamp

	renderer := &report.TextRenderer{}
	generatedAt := time.Date(2025, time.June, 1, 9, 30, 0, 0, time.UTC)

	out, err := renderer.Render(may2025Grid(), "Duty roster, May 2025", generatedAt)

	require.NoError(t, err)
	lines := strings.Split(string(out), "\n")
	assert.Equal(t, "Duty roster, May 2025", lines[0])
	assert.Equal(t, "generated 2025-06-01 09:30", lines[1])
}

func TestTextRenderer_MarksAndColorTags(t *testing.T) {
	// GIVEN: A duty entry and a vacation entry
	// WHEN: Rendering
	// THEN: Occupant marks carry their single-letter color tags

	vacation := roster.GridEntry{
		Start:        roster.NewDate(2025, time.May, 12),
		End:          roster.NewDate(2025, time.May, 14),
		Employee:     roster.Employee{ID: "emp-2", Surname: "Petrov", FirstName: "Pyotr"},
		CategoryName: "vacation",
	}

	renderer := &report.TextRenderer{}
	out, err := renderer.Render(may2025Grid(dutyEntry(), vacation), "May 2025", time.Now())

	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "Ivanov I.P. [d]")
	assert.Contains(t, text, "Petrov P. [v]")
}

func TestTextRenderer_RowStructure(t *testing.T) {
	// GIVEN: An empty May 2025 grid (5 blocks, 4 sub-rows each)
	// WHEN: Rendering
	// THEN: Header + per block one day row and 4 cell rows, all bordered

	renderer := &report.TextRenderer{CellWidth: 8}
	out, err := renderer.Render(may2025Grid(), "May 2025", time.Now())

	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")

	var borderedRows, separators int
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			separators++
		case strings.HasPrefix(line, "|"):
			borderedRows++
		}
	}
	// 1 weekday header + 5 blocks x (1 day row + 4 sub-rows).
	assert.Equal(t, 1+5*5, borderedRows)
	// One separator above and below the header, one closing each block.
	assert.Equal(t, 7, separators)

	assert.Contains(t, lines[4], "Mon", "weekday header row")
}

func TestTextRenderer_TruncatesLongMarks(t *testing.T) {
	// GIVEN: A cell width shorter than the occupant mark
	// WHEN: Rendering
	// THEN: The mark is cut to the cell width; borders stay aligned

	renderer := &report.TextRenderer{CellWidth: 6}
	out, err := renderer.Render(may2025Grid(dutyEntry()), "May 2025", time.Now())

	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if strings.HasPrefix(line, "|") {
			assert.Len(t, line, 7*(6+1)+1, "every bordered row has the same width")
		}
	}
}

func TestTextRenderer_EmptyGrid(t *testing.T) {
	// GIVEN: A grid with no week-blocks
	// WHEN: Rendering
	// THEN: The error wraps ErrRenderFailed and no bytes are returned

	renderer := &report.TextRenderer{}

	out, err := renderer.Render(roster.CalendarGrid{}, "May 2025", time.Now())

	assert.ErrorIs(t, err, report.ErrRenderFailed)
	assert.Nil(t, out)
}
