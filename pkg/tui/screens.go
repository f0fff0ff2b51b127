package tui

import (
	"fmt"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/components"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/dashboard"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/wsfeed"
)

const (
	missing = components.MissingText
	// labelWidth is the label column of the summary panels.
	labelWidth = 10
)

// ---------------------------------------------------------------------------
// Synchronization
// ---------------------------------------------------------------------------

func (r Renderer) tuiRenderSync(s *dashboard.State) string {
	inner := s.UI.Width - dashboard.FrameWidth
	barWidth := min(max(inner-labelWidth-24, 0), 60)
	sy := &s.Sync

	lines := []string{
		r.field("Head", headText(s)),
		r.field("Cycle", cycleText(s)),
		r.field("Remote", remoteText(s)),
		r.field("Synced", "") + r.syncGauge(s, barWidth),
		r.field("Transfer", "") + r.transferLine(sy, barWidth),
		r.field("Apply", applyText(sy.Application)),
		r.field("Blocks", blocksText(sy.Blocks, sy.Chain)),
	}
	summary := r.frame(strings.Join(lines, "\n"), s.UI.Width, dashboard.SyncSummaryHeight, false)
	peers := renderTable(r, s, &s.UI.Tables.Peers, sy.Peers, TablePeers, true)
	return summary + "\n" + peers
}

func headText(s *dashboard.State) string {
	h := s.Sync.Head
	if !h.Known() {
		return missing
	}
	return fmt.Sprintf("%d  %s  round %d", h.Level, dashboard.ShortHash(h.Hash), h.Round)
}

func cycleText(s *dashboard.State) string {
	md := s.Sync.Metadata
	if md == nil {
		return missing
	}
	text := fmt.Sprintf("%d  position %d", md.LevelInfo.Cycle, md.LevelInfo.CyclePosition)
	if c := s.Sync.Constants; c != nil && c.BlocksPerCycle > 0 {
		text += fmt.Sprintf("/%d", c.BlocksPerCycle)
	}
	return text
}

func remoteText(s *dashboard.State) string {
	best := s.Sync.BestRemoteLevel
	if best == nil {
		return missing
	}
	text := fmt.Sprintf("%d", *best)
	if h := s.Sync.Head; h.Known() {
		if behind := *best - h.Level; behind > 0 {
			text += fmt.Sprintf("  (%d behind)", behind)
		} else {
			text += "  (in sync)"
		}
	}
	return text
}

// syncRatio is head level over best remote level, falling back to the
// bootstrap download counters before a head is known.
func syncRatio(s *dashboard.State) (float64, bool) {
	if best := s.Sync.BestRemoteLevel; best != nil && *best > 0 && s.Sync.Head.Known() {
		return float64(s.Sync.Head.Level) / float64(*best), true
	}
	if t := s.Sync.Transfer; t != nil && t.CurrentBlockCount > 0 {
		return float64(t.DownloadedBlocks) / float64(t.CurrentBlockCount), true
	}
	return 0, false
}

func (r Renderer) syncGauge(s *dashboard.State, width int) string {
	ratio, ok := syncRatio(s)
	if !ok {
		return r.Styles.Muted.Render(missing)
	}
	return components.Gauge(ratio, width, r.Styles.Gauge) + r.Styles.Value.Render(fmt.Sprintf(" %5.1f%%", min(ratio, 1)*100))
}

func (r Renderer) transferLine(sy *dashboard.Sync, width int) string {
	t := sy.Transfer
	if t == nil {
		return r.Styles.Muted.Render(missing)
	}
	line := components.Pad(components.Sparkline(sy.TransferRates, width, r.Styles.Sparkline), width, components.AlignLeft)
	text := fmt.Sprintf(" %.1f blk/s  avg %.1f", t.CurrentRate, t.AverageRate)
	if t.Eta != nil {
		text += "  eta " + time.Duration(*t.Eta*float64(time.Second)).Truncate(time.Second).String()
	}
	return line + r.Styles.Value.Render(text)
}

func applyText(a *wsfeed.BlockApplicationStatus) string {
	if a == nil {
		return missing
	}
	text := fmt.Sprintf("%.1f blk/s  avg %.1f", a.CurrentApplicationSpeed, a.AverageApplicationSpeed)
	if b := a.LastAppliedBlock; b != nil {
		text += fmt.Sprintf("  last %d %s", b.Level, dashboard.ShortHash(b.Hash))
	}
	return text
}

func blocksText(groups []wsfeed.BlockStatus, chain []wsfeed.CycleStatus) string {
	if len(groups) == 0 && len(chain) == 0 {
		return missing
	}
	var total, finished, applied int
	for _, g := range groups {
		total += g.NumberOfBlocks
		finished += g.FinishedBlocks
		applied += g.AppliedBlocks
	}
	done := 0
	for _, c := range chain {
		if c.IsCompleted {
			done++
		}
	}
	return fmt.Sprintf("%d groups  finished %d/%d  applied %d  cycles %d/%d",
		len(groups), finished, total, applied, done, len(chain))
}

// ---------------------------------------------------------------------------
// Endorsements
// ---------------------------------------------------------------------------

func (r Renderer) tuiRenderEndorsements(s *dashboard.State) string {
	e := &s.Endorsements
	sum := e.Summary

	level := missing
	if e.Hash != "" {
		level = fmt.Sprintf("%d  %s", e.Level, dashboard.ShortHash(e.Hash))
	}
	power := missing
	if sum.Power > 0 {
		power = fmt.Sprintf("%d/%d  %.0f%%", sum.PowerSeen, sum.Power, float64(sum.PowerSeen)/float64(sum.Power)*100)
	}

	cells := r.Styles.Table.Cells
	counts := strings.Join([]string{
		cells[components.StyleBad].Render(fmt.Sprintf("missing %d", sum.Missing)),
		cells[components.StyleWarn].Render(fmt.Sprintf("received %d", sum.Received)),
		cells[components.StyleWarn].Render(fmt.Sprintf("decoded %d", sum.Decoded)),
		cells[components.StyleWarn].Render(fmt.Sprintf("prechecked %d", sum.Prechecked)),
		cells[components.StyleGood].Render(fmt.Sprintf("applied %d", sum.Applied)),
		cells[components.StyleGood].Render(fmt.Sprintf("broadcast %d", sum.Broadcast)),
	}, "  ")

	summary := r.field("Level", level) + "    " + r.Styles.Label.Render("power ") + r.Styles.Value.Render(power) +
		"\n" + counts
	table := renderTable(r, s, &s.UI.Tables.Endorsements, e.Rows, TableEndorsements, true)
	return summary + "\n" + table
}

// ---------------------------------------------------------------------------
// Baking
// ---------------------------------------------------------------------------

func (r Renderer) tuiRenderBaking(s *dashboard.State) string {
	b := &s.Baking
	tables := &s.UI.Tables
	return strings.Join([]string{
		r.nextRightLine(s),
		renderTable(r, s, &tables.Application, b.Application, TableApplication, s.UI.Focus == 0),
		renderTable(r, s, &tables.PeerStats, b.Peers, TablePeerStats, s.UI.Focus == 1),
	}, "\n")
}

func (r Renderer) nextRightLine(s *dashboard.State) string {
	baker := s.UI.Settings.Baker
	if baker == "" {
		return r.Styles.Muted.Render("No baker configured; set node.baker to track baking rights")
	}
	next := s.Baking.NextRight
	if next == nil {
		return r.field("Next", "no baking rights for "+dashboard.ShortHash(baker))
	}
	text := fmt.Sprintf("level %d  round %d", next.Level, next.Round)
	if h := s.Sync.Head; h.Known() && next.Level > h.Level {
		text += fmt.Sprintf("  in %d blocks", next.Level-h.Level)
	}
	if next.EstimatedTime != nil {
		text += "  at " + next.EstimatedTime.Local().Format(time.TimeOnly)
	}
	return r.field("Next", text)
}

// ---------------------------------------------------------------------------
// Mempool
// ---------------------------------------------------------------------------

func (r Renderer) tuiRenderMempool(s *dashboard.State) string {
	return renderTable(r, s, &s.UI.Tables.Operations, s.Operations.Rows, TableOperations, true)
}
