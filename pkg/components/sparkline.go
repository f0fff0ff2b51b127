package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters: 8 vertical levels per cell.
var sparkBlocks = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders the last width points of data as block characters,
// auto-scaled between the minimum and maximum of those points.
func Sparkline(data []float64, width int, style lipgloss.Style) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	lo, hi := data[0], data[0]
	for _, v := range data[1:] {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	var b strings.Builder
	for _, v := range data {
		idx := 3 // flat series sit mid-height
		if span := hi - lo; span > 0 {
			idx = int(math.Round((v - lo) / span * 7))
			idx = min(max(idx, 0), 7)
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return style.Render(b.String())
}
