package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Block characters for sub-cell precision (8 levels per cell).
var gaugeBlocks = [9]rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}

// GaugeStyles colours the filled part by ratio.
type GaugeStyles struct {
	Filled   lipgloss.Style
	Warning  lipgloss.Style
	Critical lipgloss.Style
	Empty    lipgloss.Style
	// WarnAt and CritAt are ratios in [0, 1]. Zero disables the threshold.
	WarnAt float64
	CritAt float64
}

// Gauge draws a horizontal bar width cells wide for ratio, which is clamped
// to [0, 1].
func Gauge(ratio float64, width int, st GaugeStyles) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(ratio) {
		ratio = 0
	}
	ratio = math.Min(math.Max(ratio, 0), 1)

	eighths := int(math.Round(ratio * float64(width*8)))
	full := eighths / 8
	part := eighths % 8

	var filled strings.Builder
	filled.WriteString(strings.Repeat(string(gaugeBlocks[8]), full))
	used := full
	if part > 0 && used < width {
		filled.WriteRune(gaugeBlocks[part])
		used++
	}

	fill := st.Filled
	switch {
	case st.CritAt > 0 && ratio >= st.CritAt:
		fill = st.Critical
	case st.WarnAt > 0 && ratio >= st.WarnAt:
		fill = st.Warning
	}
	return fill.Render(filled.String()) + st.Empty.Render(strings.Repeat("░", width-used))
}
