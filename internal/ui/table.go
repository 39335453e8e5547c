package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column is one table column. Width 0 sizes the column to its widest cell.
type Column struct {
	Title string
	Width int
}

// Row holds the cells of one line; missing trailing cells render empty.
type Row []string

// Table is a plain aligned table used for deployment summaries and key
// listings.
type Table struct {
	Columns []Column
	Rows    []Row
}

func NewTable(cols []Column) *Table {
	return &Table{Columns: cols}
}

func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

func (t *Table) widths() []int {
	w := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		if col.Width > 0 {
			w[i] = col.Width
			continue
		}
		w[i] = lipgloss.Width(col.Title)
		for _, r := range t.Rows {
			if i < len(r) && lipgloss.Width(r[i]) > w[i] {
				w[i] = lipgloss.Width(r[i])
			}
		}
	}
	return w
}

// fit cuts or pads s to exactly n cells. Padding is done before styling so
// lipgloss never wraps a cell.
func fit(s string, n int) string {
	r := []rune(s)
	if len(r) >= n {
		return string(r[:n])
	}
	return s + strings.Repeat(" ", n-len(r))
}

// Render returns the header, a divider and one line per row.
func (t *Table) Render() string {
	widths := t.widths()
	head := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cell := lipgloss.NewStyle().Foreground(ColorValue)
	rule := lipgloss.NewStyle().Foreground(ColorMeta)

	line := func(style lipgloss.Style, cellAt func(i int) string) string {
		parts := make([]string, len(widths))
		for i, w := range widths {
			parts[i] = style.Render(fit(cellAt(i), w))
		}
		return strings.Join(parts, " ") + "\n"
	}

	var sb strings.Builder
	sb.WriteString(line(head, func(i int) string { return t.Columns[i].Title }))
	sb.WriteString(line(rule, func(i int) string { return strings.Repeat("-", widths[i]) }))
	for _, r := range t.Rows {
		sb.WriteString(line(cell, func(i int) string {
			if i < len(r) {
				return r[i]
			}
			return ""
		}))
	}
	return sb.String()
}

// KeyValueBlock renders pairs in order inside a bordered box, keys aligned
// to the longest one.
func KeyValueBlock(title string, pairs [][2]string) string {
	keyWidth := 0
	for _, p := range pairs {
		if n := lipgloss.Width(p[0]) + 1; n > keyWidth {
			keyWidth = n
		}
	}
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title) + "\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-*s", keyWidth, p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(strings.TrimSuffix(sb.String(), "\n"))
}
