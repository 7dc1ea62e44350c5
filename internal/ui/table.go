package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders a lipgloss-styled table with fixed-width columns.
type Table struct {
	Columns []Column
	Rows    []Row
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render returns the full table as a string. Cells are padded by hand
// rather than with lipgloss Width, which wraps long content.
func (t *Table) Render() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)

	line := func(cells []string, style lipgloss.Style) {
		parts := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			parts[i] = style.Render(pad(val, col.Width))
		}
		sb.WriteString(strings.Join(parts, " "))
		sb.WriteString("\n")
	}

	titles := make([]string, len(t.Columns))
	dividers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		titles[i] = col.Title
		dividers[i] = strings.Repeat("-", col.Width)
	}
	line(titles, headerStyle)
	line(dividers, StyleMeta)
	for _, row := range t.Rows {
		line(row, cellStyle)
	}

	return sb.String()
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-16s", p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(sb.String())
}

// pad left-aligns s within exactly width chars, truncating if needed.
func pad(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
