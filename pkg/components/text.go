// Package components holds the table engine and the small text widgets the
// dashboard screens are built from.
package components

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks text cut to fit a column.
const Ellipsis = "…"

// Align places text inside a wider cell.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// VisibleLen is the width of s in terminal cells, ignoring ANSI sequences.
func VisibleLen(s string) int {
	return ansi.StringWidth(s)
}

// Truncate cuts s to at most width cells, keeping escape sequences intact.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "")
}

// Pad fills s with spaces up to width cells. Centered text puts the odd
// space on the right. Text already width cells or wider is returned as is.
func Pad(s string, width int, align Align) string {
	gap := width - VisibleLen(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	}
	return s + strings.Repeat(" ", gap)
}

// Fit renders s in exactly width cells: cut with an ellipsis when too
// long, padded according to align otherwise.
func Fit(s string, width int, align Align) string {
	if width <= 0 {
		return ""
	}
	return Pad(ansi.Truncate(s, width, Ellipsis), width, align)
}
