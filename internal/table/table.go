// Package table renders ASCII tables for terminal output.
package table

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// stripAnsi removes color escape sequences so that cell widths reflect
// what is visible on the terminal.
func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func visibleWidth(s string) int {
	return utf8.RuneCountInString(stripAnsi(s))
}

// Table accumulates rows and writes them out as a bordered grid.
type Table struct {
	w               io.Writer
	header          []string
	rows            [][]string
	columnAlignment []Alignment
	headerAlignment []Alignment
}

func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

func (t *Table) WithColumnAlignment(alignment []Alignment) *Table {
	t.columnAlignment = alignment
	return t
}

func (t *Table) WithHeaderAlignment(alignment []Alignment) *Table {
	t.headerAlignment = alignment
	return t
}

func (t *Table) Append(row []string) {
	t.rows = append(t.rows, row)
}

// Render writes the table. Rows shorter than the widest row are padded
// with empty cells.
func (t *Table) Render() error {
	widths := t.columnWidths()
	if len(widths) == 0 {
		return nil
	}
	separator := t.separator(widths)
	lines := []string{separator}
	if len(t.header) > 0 {
		lines = append(lines, t.line(t.header, widths, t.headerAlignment), separator)
	}
	for _, row := range t.rows {
		lines = append(lines, t.line(row, widths, t.columnAlignment))
	}
	lines = append(lines, separator)
	_, err := fmt.Fprintln(t.w, strings.Join(lines, "\n"))
	return err
}

func (t *Table) columnWidths() []int {
	var widths []int
	measure := func(row []string) {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], visibleWidth(cell))
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func (t *Table) separator(widths []int) string {
	var sb strings.Builder
	sb.WriteByte('+')
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteByte('+')
	}
	return sb.String()
}

func (t *Table) line(row []string, widths []int, alignment []Alignment) string {
	var sb strings.Builder
	sb.WriteByte('|')
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		align := AlignLeft
		if i < len(alignment) {
			align = alignment[i]
		}
		sb.WriteByte(' ')
		sb.WriteString(pad(cell, w, align))
		sb.WriteString(" |")
	}
	return sb.String()
}

func pad(cell string, width int, align Alignment) string {
	gap := width - visibleWidth(cell)
	if gap <= 0 {
		return cell
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + cell
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + cell + strings.Repeat(" ", gap-left)
	default:
		return cell + strings.Repeat(" ", gap)
	}
}
