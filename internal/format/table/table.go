package table

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

const (
	gap      = "  "
	ellipsis = "…"
	minWidth = 3
)

// Format returns the rows padded according to the widest entry in each column.
// When maxWidth is positive the widest columns are narrowed, and their cells
// truncated, until every row fits.
func Format(rows [][]string, alignments []Alignment, maxWidth int) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := Widths(rows)
	if maxWidth > 0 {
		Shrink(widths, maxWidth)
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = Row(row, widths, alignments)
	}
	return out
}

// Widths returns the display width of the widest cell per column.
func Widths(rows [][]string) []int {
	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	widths := make([]int, colCount)
	for _, row := range rows {
		for c, cell := range row {
			width := CellWidth(cell)
			if width > widths[c] {
				widths[c] = width
			}
		}
	}
	return widths
}

// Shrink narrows the widest columns in place until the joined row fits in
// maxWidth or every column is at its minimum.
func Shrink(widths []int, maxWidth int) {
	total := func() int {
		sum := len(gap) * (len(widths) - 1)
		for _, w := range widths {
			sum += w
		}
		return sum
	}
	for total() > maxWidth {
		widest := -1
		for c, w := range widths {
			if w > minWidth && (widest < 0 || w > widths[widest]) {
				widest = c
			}
		}
		if widest < 0 {
			return
		}
		widths[widest]--
	}
}

// Row lays out one row with the given column widths.
func Row(row []string, widths []int, alignments []Alignment) string {
	var b strings.Builder
	for c := range widths {
		if c > 0 {
			b.WriteString(gap)
		}
		cell := ""
		if c < len(row) {
			cell = row[c]
		}
		align := AlignLeft
		if c < len(alignments) {
			align = alignments[c]
		}
		b.WriteString(Fit(cell, widths[c], align))
	}
	return b.String()
}

// Fit truncates or pads text to exactly width cells.
func Fit(text string, width int, align Alignment) string {
	if width <= 0 {
		return ""
	}
	if CellWidth(text) > width {
		text = ansi.Truncate(text, width, ellipsis)
	}
	pad := width - CellWidth(text)
	if pad <= 0 {
		return text
	}
	if align == AlignRight {
		return strings.Repeat(" ", pad) + text
	}
	return text + strings.Repeat(" ", pad)
}

// CellWidth is the display width of text, ignoring escape sequences.
func CellWidth(text string) int {
	return ansi.StringWidth(text)
}
