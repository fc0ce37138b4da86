/*
Package report defines the grid renderer contract and a plain-text
renderer for development use.

PURPOSE:
  The scheduling core guarantees that the CalendarGrid it hands over is
  complete and internally consistent; everything about the output
  document belongs here. Binary document formats (spreadsheets, PDFs)
  are implemented behind the same Renderer interface by external
  packages; this package ships a monospace text sheet that is good
  enough for terminals and tests.

ERROR SEMANTICS:
  A rendering failure is fatal for the current request: no partial
  report is ever returned. Renderer errors wrap ErrRenderFailed so
  callers can distinguish them from the core's validation errors.

SEE ALSO:
  - roster/grid.go: The CalendarGrid structure being rendered
*/
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/warp/roster-engine/roster"
)

// ErrRenderFailed is wrapped by every renderer error.
var ErrRenderFailed = errors.New("report rendering failed")

// Renderer turns a calendar grid into a finished document.
type Renderer interface {
	// Render produces the document bytes for the grid, labelled with
	// the reporting period and stamped with the generation time.
	Render(grid roster.CalendarGrid, periodLabel string, generatedAt time.Time) ([]byte, error)
}

// =============================================================================
// TEXT RENDERER - Monospace month sheet
// =============================================================================

// TextRenderer renders the grid as a fixed-width text sheet.
type TextRenderer struct {
	// CellWidth is the column width in characters. Marks longer than
	// the width are truncated. Zero means the default of 16.
	CellWidth int
}

const defaultCellWidth = 16

var weekdayHeaders = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Render writes one bordered row-group per week-block: a day-number
// header row followed by the block's sub-rows. Empty cells are drawn
// as blanks so the rectangle stays intact.
func (r *TextRenderer) Render(grid roster.CalendarGrid, periodLabel string, generatedAt time.Time) ([]byte, error) {
	if len(grid.Blocks) == 0 {
		return nil, fmt.Errorf("%w: grid has no week-blocks", ErrRenderFailed)
	}

	width := r.CellWidth
	if width <= 0 {
		width = defaultCellWidth
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", periodLabel)
	fmt.Fprintf(&b, "generated %s\n\n", generatedAt.UTC().Format("2006-01-02 15:04"))

	separator := rowSeparator(width)

	b.WriteString(separator)
	b.WriteString(headerRow(width))
	b.WriteString(separator)

	for _, block := range grid.Blocks {
		b.WriteString(dayNumberRow(block, width))
		for _, row := range block.Cells {
			b.WriteString(cellRow(row, width))
		}
		b.WriteString(separator)
	}

	return []byte(b.String()), nil
}

func rowSeparator(width int) string {
	cell := strings.Repeat("-", width)
	return "+" + strings.Repeat(cell+"+", 7) + "\n"
}

func headerRow(width int) string {
	var b strings.Builder
	b.WriteString("|")
	for _, h := range weekdayHeaders {
		fmt.Fprintf(&b, "%-*s|", width, " "+h)
	}
	b.WriteString("\n")
	return b.String()
}

func dayNumberRow(block roster.WeekBlock, width int) string {
	var b strings.Builder
	b.WriteString("|")
	for col := 0; col < 7; col++ {
		label := ""
		if block.Days[col] != 0 {
			label = fmt.Sprintf(" %d", block.Days[col])
		}
		fmt.Fprintf(&b, "%-*s|", width, label)
	}
	b.WriteString("\n")
	return b.String()
}

func cellRow(row [7]roster.GridCell, width int) string {
	var b strings.Builder
	b.WriteString("|")
	for col := 0; col < 7; col++ {
		label := ""
		if !row[col].IsEmpty() {
			label = " " + cellLabel(row[col])
		}
		if len(label) > width {
			label = label[:width]
		}
		fmt.Fprintf(&b, "%-*s|", width, label)
	}
	b.WriteString("\n")
	return b.String()
}

// cellLabel suffixes the mark with a single-letter color tag so the
// category survives into plain text.
func cellLabel(c roster.GridCell) string {
	switch c.Color {
	case roster.ColorDuty:
		return c.Mark + " [d]"
	case roster.ColorVacation:
		return c.Mark + " [v]"
	default:
		return c.Mark
	}
}
