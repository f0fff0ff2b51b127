// Package tui draws the dashboard. It keeps no state of its own: every frame
// is a function of the committed dashboard State.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/components"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/dashboard"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/theme"
)

// Table identifies one of the dashboard tables for mouse hit testing.
type Table int

const (
	TablePeers Table = iota
	TableEndorsements
	TableApplication
	TablePeerStats
	TableOperations
)

func (t Table) String() string {
	switch t {
	case TablePeers:
		return "peers"
	case TableEndorsements:
		return "endorsements"
	case TableApplication:
		return "application"
	case TablePeerStats:
		return "peer_stats"
	case TableOperations:
		return "operations"
	}
	return "unknown"
}

// Tables lists the tables shown on screen in focus order.
func Tables(screen dashboard.Screen) []Table {
	switch screen {
	case dashboard.ScreenSync:
		return []Table{TablePeers}
	case dashboard.ScreenEndorsements:
		return []Table{TableEndorsements}
	case dashboard.ScreenBaking:
		return []Table{TableApplication, TablePeerStats}
	case dashboard.ScreenMempool:
		return []Table{TableOperations}
	}
	return nil
}

// Headers returns the column titles of table t.
func Headers(s *dashboard.State, t Table) []string {
	tables := &s.UI.Tables
	switch t {
	case TablePeers:
		return tables.Peers.Headers()
	case TableEndorsements:
		return tables.Endorsements.Headers()
	case TableApplication:
		return tables.Application.Headers()
	case TablePeerStats:
		return tables.PeerStats.Headers()
	case TableOperations:
		return tables.Operations.Headers()
	}
	return nil
}

// TabZone is the mouse zone id of a screen tab.
func TabZone(screen dashboard.Screen) string {
	return fmt.Sprintf("tab-%d", int(screen))
}

// HeaderZone is the mouse zone id of one table header cell.
func HeaderZone(t Table, column int) string {
	return fmt.Sprintf("header-%s-%d", t, column)
}

// Renderer draws State with one style set. Zones may be nil, in which case
// nothing is marked for mouse input.
type Renderer struct {
	Styles theme.Styles
	Zones  *zone.Manager
}

// View draws the full terminal frame. shortHelp is the one-line key hint;
// fullHelp replaces the screen body while the help overlay is open.
func (r Renderer) View(s *dashboard.State, shortHelp, fullHelp string) string {
	width, height := s.UI.Width, s.UI.Height
	if width <= 0 || height <= 0 {
		return ""
	}

	bodyHeight := max(height-dashboard.ChromeHeight, 0)
	var body string
	switch {
	case s.UI.Help:
		body = r.frame(fullHelp, width, bodyHeight-dashboard.FrameHeight, true)
	case s.UI.Screen == dashboard.ScreenSync:
		body = r.tuiRenderSync(s)
	case s.UI.Screen == dashboard.ScreenEndorsements:
		body = r.tuiRenderEndorsements(s)
	case s.UI.Screen == dashboard.ScreenBaking:
		body = r.tuiRenderBaking(s)
	case s.UI.Screen == dashboard.ScreenMempool:
		body = r.tuiRenderMempool(s)
	}

	parts := []string{tuiFit(r.tuiRenderTabs(s), width, 1)}
	if bodyHeight > 0 {
		parts = append(parts, tuiFit(body, width, bodyHeight))
	}
	parts = append(parts,
		tuiFit(r.tuiRenderStatusBar(s), width, 1),
		tuiFit(r.Styles.Muted.Render(shortHelp), width, 1),
	)
	return strings.Join(parts, "\n")
}

func (r Renderer) mark(id, s string) string {
	if r.Zones == nil {
		return s
	}
	return r.Zones.Mark(id, s)
}

// tuiRenderTabs draws the screen tabs with the program name on the right.
func (r Renderer) tuiRenderTabs(s *dashboard.State) string {
	var tabs []string
	for i, screen := range dashboard.Screens() {
		style := r.Styles.Tab
		if screen == s.UI.Screen {
			style = r.Styles.TabActive
		}
		tabs = append(tabs, r.mark(TabZone(screen), style.Render(fmt.Sprintf("%d %s", i+1, screen))))
	}
	line := strings.Join(tabs, "")

	title := r.Styles.Title.Render("chain-pulse")
	if gap := s.UI.Width - components.VisibleLen(line) - components.VisibleLen(title) - 1; gap > 0 {
		line += strings.Repeat(" ", gap) + title
	}
	return line
}

// frame wraps body in the rounded border. rows is the inner height; the
// frame is always width cells wide.
func (r Renderer) frame(body string, width, rows int, focused bool) string {
	if width < dashboard.FrameWidth+1 {
		return ""
	}
	style := r.Styles.Frame
	if focused {
		style = r.Styles.FrameFocus
	}
	style = style.Padding(0, 1).Width(width - 2)
	if rows > 0 {
		style = style.Height(rows).MaxHeight(rows + dashboard.FrameHeight)
	}
	return style.Render(body)
}

// renderTable sorts a copy of rows with the table's sort and draws it framed.
func renderTable[T components.Row](r Renderer, s *dashboard.State, t *components.ExtendedTable[T], rows []T, id Table, focused bool) string {
	sorted := make([]T, len(rows))
	copy(sorted, rows)
	t.SortContent(sorted, s.UI.Delta)

	opts := components.RenderOptions{
		Delta:   s.UI.Delta,
		Focused: focused,
		Styles:  r.Styles.Table,
	}
	if r.Zones != nil {
		opts.MarkHeader = func(column int, text string) string {
			return r.Zones.Mark(HeaderZone(id, column), text)
		}
	}

	body := t.Render(sorted, opts)
	if len(rows) == 0 {
		width := 0
		for _, w := range t.RenderableConstraints(t.Width()) {
			width += w + components.ColumnPadding
		}
		placeholder := components.Pad("no data", width, components.AlignCenter)
		body = lipgloss.JoinVertical(lipgloss.Left, body, r.Styles.Muted.Render(placeholder))
	}
	return r.frame(body, s.UI.Width, t.Rows().Height()+1, focused)
}

// field draws one label/value pair of a summary panel.
func (r Renderer) field(label, value string) string {
	return r.Styles.Label.Render(components.Pad(label, labelWidth, components.AlignLeft)) + r.Styles.Value.Render(value)
}

// tuiFit clips every line to width and pads or trims s to exactly height
// lines.
func tuiFit(s string, width, height int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		lines[i] = components.Truncate(line, width)
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
