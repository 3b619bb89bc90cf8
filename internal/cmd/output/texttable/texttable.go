// Package texttable renders aligned plain text tables for the text output
// format.
package texttable

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/storeops/storectl/internal/iostreams"
	"github.com/storeops/storectl/internal/util"
	"golang.org/x/term"
)

const (
	separator      = "  "
	minColumnWidth = 4
	maxColumnWidth = 48
)

// Table is a header row plus data rows of equal length.
type Table struct {
	Headers []string
	Rows    [][]string
	// MaxWidth bounds the rendered line width. Zero means unbounded.
	MaxWidth int
}

// TerminalWidth returns the width of the terminal behind w, or zero when w is
// not a terminal.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok || !iostreams.IsTerminal(w) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// Write renders t to w. Cells wider than their column are cut with an
// ellipsis; an empty table still prints its header.
func Write(w io.Writer, t Table) error {
	widths := columnWidths(t.Headers, t.Rows, t.MaxWidth)

	var b strings.Builder
	writeLine(&b, t.Headers, widths)
	for _, row := range t.Rows {
		writeLine(&b, row, widths)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeLine(b *strings.Builder, cells []string, widths []int) {
	parts := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = strings.ReplaceAll(cells[i], "\n", " ")
		}
		cell = runewidth.Truncate(cell, width, "…")
		if i < len(widths)-1 {
			cell = runewidth.FillRight(cell, width)
		}
		parts[i] = cell
	}
	fmt.Fprintln(b, strings.TrimRight(strings.Join(parts, separator), " "))
}

// columnWidths sizes each column to its widest cell, then narrows the widest
// columns one cell at a time until the table fits limit.
func columnWidths(headers []string, rows [][]string, limit int) []int {
	widths := make([]int, len(headers))
	floors := make([]int, len(headers))
	for i, h := range headers {
		floors[i] = clamp(runewidth.StringWidth(h), minColumnWidth, maxColumnWidth)
		widths[i] = floors[i]
		for _, row := range rows {
			if i < len(row) {
				widths[i] = max(widths[i], min(runewidth.StringWidth(row[i]), maxColumnWidth))
			}
		}
	}
	if limit <= 0 {
		return widths
	}

	total := len(separator) * max(len(widths)-1, 0)
	for _, w := range widths {
		total += w
	}
	for total > limit {
		idx := -1
		for i, w := range widths {
			if w > floors[i] && (idx == -1 || w > widths[idx]) {
				idx = i
			}
		}
		if idx == -1 {
			break
		}
		widths[idx]--
		total--
	}
	return widths
}

// AbbreviateIDs shortens UUID values in ID columns, leaving rows untouched.
func AbbreviateIDs(headers []string, rows [][]string) [][]string {
	var idCols []int
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "id" || strings.HasSuffix(key, " id") {
			idCols = append(idCols, i)
		}
	}
	if len(idCols) == 0 {
		return rows
	}

	rv := make([][]string, len(rows))
	for i, row := range rows {
		row = append([]string(nil), row...)
		for _, c := range idCols {
			if c < len(row) && util.IsValidUUID(row[c]) {
				row[c] = util.AbbreviateUUID(row[c])
			}
		}
		rv[i] = row
	}
	return rv
}

func clamp(val, minVal, maxVal int) int {
	return max(minVal, min(val, maxVal))
}
