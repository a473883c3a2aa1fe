package db

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// textTable renders rows as a boxed plain-text table.
type textTable struct {
	headers []string
	rows    [][]string
}

func newTextTable(headers ...string) *textTable {
	return &textTable{headers: headers}
}

func (t *textTable) Row(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *textTable) Render(w io.Writer) {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return
	}

	widths := t.widths()
	separator := separatorLine(widths)

	fmt.Fprintln(w, separator)
	if len(t.headers) > 0 {
		fmt.Fprintln(w, formatCells(t.headers, widths))
		fmt.Fprintln(w, separator)
	}
	for _, row := range t.rows {
		fmt.Fprintln(w, formatCells(row, widths))
	}
	fmt.Fprintln(w, separator)
}

func (t *textTable) widths() []int {
	columns := len(t.headers)
	for _, row := range t.rows {
		columns = max(columns, len(row))
	}

	widths := make([]int, columns)
	for i := range widths {
		widths[i] = 1
	}
	measure := func(cells []string) {
		for i, cell := range cells {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}
	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func separatorLine(widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("-", width+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

func formatCells(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = " " + cell + strings.Repeat(" ", width-utf8.RuneCountInString(cell)+1)
	}
	return "|" + strings.Join(parts, "|") + "|"
}
