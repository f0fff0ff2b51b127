package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableStyles resolves semantic cell styles and header states.
type TableStyles struct {
	Header         lipgloss.Style
	HeaderSelected lipgloss.Style
	RowSelected    lipgloss.Style
	Cells          map[CellStyle]lipgloss.Style
}

// RenderOptions controls one Render call.
type RenderOptions struct {
	Delta bool
	// Focused draws the row cursor and selected header highlight.
	Focused bool
	Styles  TableStyles
	// MarkHeader wraps a rendered header cell, for example to register a
	// mouse zone. Nil leaves headers untouched.
	MarkHeader func(column int, text string) string
}

const (
	arrowAsc  = "▲"
	arrowDesc = "▼"
)

// Render draws the header and the visible rows of an already sorted row set
// using the columns Layout picks for the last width.
func (t *ExtendedTable[T]) Render(rows []T, opts RenderOptions) string {
	cols := t.Layout(t.width)
	if len(cols) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(t.renderHeader(cols, opts))

	start, end := t.rows.Window(len(rows))
	for i := start; i < end; i++ {
		b.WriteByte('\n')
		b.WriteString(t.renderRow(rows[i], cols, opts, opts.Focused && i == t.rows.selected))
	}
	return b.String()
}

func (t *ExtendedTable[T]) renderHeader(cols []Column, opts RenderOptions) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		title := c.Header
		if c.Index == t.sortedBy {
			switch t.sortOrder {
			case Ascending:
				title += arrowAsc
			case Descending:
				title += arrowDesc
			}
		}
		text := Fit(title, c.Width, AlignLeft)
		style := opts.Styles.Header
		if opts.Focused && c.Index == t.selected {
			style = opts.Styles.HeaderSelected
		}
		text = style.Render(text)
		if opts.MarkHeader != nil {
			text = opts.MarkHeader(c.Index, text)
		}
		parts[i] = text + strings.Repeat(" ", ColumnPadding)
	}
	return strings.Join(parts, "")
}

func (t *ExtendedTable[T]) renderRow(row T, cols []Column, opts RenderOptions, selected bool) string {
	cells := row.Cells(opts.Delta)
	parts := make([]string, len(cols))
	for i, c := range cols {
		cell := Missing()
		if c.Index < len(cells) {
			cell = cells[c.Index]
		}
		if cell.Text == "" {
			cell = Missing()
		}
		text := Fit(cell.Text, c.Width, cell.Align)
		style, ok := opts.Styles.Cells[cell.Style]
		if !ok {
			style = lipgloss.NewStyle()
		}
		if selected {
			style = style.Inherit(opts.Styles.RowSelected).Background(opts.Styles.RowSelected.GetBackground())
		}
		parts[i] = style.Render(text) + strings.Repeat(" ", ColumnPadding)
	}
	return strings.Join(parts, "")
}
