package theme

import (
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/components"
)

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Title       lipgloss.Style
	Frame       lipgloss.Style
	FrameFocus  lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	StatusBar   lipgloss.Style
	StatusStale lipgloss.Style
	Label       lipgloss.Style
	Value       lipgloss.Style
	Muted       lipgloss.Style
	HelpKey     lipgloss.Style
	HelpDesc    lipgloss.Style
	Sparkline   lipgloss.Style
	Table       components.TableStyles
	Gauge       components.GaugeStyles
}

// Styles builds the style set for t.
func (t Theme) Styles() Styles {
	c := func(hex string) lipgloss.Color { return lipgloss.Color(hex) }
	fg := lipgloss.NewStyle().Foreground(c(t.Foreground))
	muted := lipgloss.NewStyle().Foreground(c(t.Muted))

	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c(t.Border))

	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(c(t.Title)),
		Frame:       frame,
		FrameFocus:  frame.BorderForeground(c(t.BorderFocus)),
		Tab:         muted.Padding(0, 1),
		TabActive:   lipgloss.NewStyle().Bold(true).Foreground(c(t.Accent)).Padding(0, 1).Underline(true),
		StatusBar:   fg,
		StatusStale: lipgloss.NewStyle().Foreground(c(t.Bad)),
		Label:       muted,
		Value:       fg.Bold(true),
		Muted:       muted,
		HelpKey:     lipgloss.NewStyle().Foreground(c(t.HelpKey)),
		HelpDesc:    lipgloss.NewStyle().Foreground(c(t.HelpDesc)),
		Sparkline:   lipgloss.NewStyle().Foreground(c(t.Chart)),
		Table: components.TableStyles{
			Header:         lipgloss.NewStyle().Bold(true).Foreground(c(t.Title)),
			HeaderSelected: lipgloss.NewStyle().Bold(true).Foreground(c(t.Accent)).Underline(true),
			RowSelected:    lipgloss.NewStyle().Background(c(t.SelectedBg)),
			Cells: map[components.CellStyle]lipgloss.Style{
				components.StyleNormal: fg,
				components.StyleMuted:  muted,
				components.StyleGood:   lipgloss.NewStyle().Foreground(c(t.Good)),
				components.StyleWarn:   lipgloss.NewStyle().Foreground(c(t.Warn)),
				components.StyleBad:    lipgloss.NewStyle().Foreground(c(t.Bad)),
				components.StyleAccent: lipgloss.NewStyle().Foreground(c(t.Accent)),
			},
		},
		Gauge: components.GaugeStyles{
			Filled:   lipgloss.NewStyle().Foreground(c(t.Good)),
			Warning:  lipgloss.NewStyle().Foreground(c(t.Warn)),
			Critical: lipgloss.NewStyle().Foreground(c(t.Bad)),
			Empty:    lipgloss.NewStyle().Foreground(c(t.GaugeEmpty)),
		},
	}
}
