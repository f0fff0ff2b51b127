package tui

import (
	"fmt"
	"strings"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/dashboard"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
)

const statusSeparator = " │ "

// tuiRenderStatusBar draws head, cycle position, stale RPC targets and host
// load on one line.
func (r Renderer) tuiRenderStatusBar(s *dashboard.State) string {
	bar := r.Styles.StatusBar
	var parts []string

	if h := s.Sync.Head; h.Known() {
		parts = append(parts, bar.Render(fmt.Sprintf("L %d %s", h.Level, dashboard.ShortHash(h.Hash))))
	} else {
		parts = append(parts, r.Styles.Muted.Render("waiting for head"))
	}

	if md := s.Sync.Metadata; md != nil {
		pos := fmt.Sprintf("cycle %d %d", md.LevelInfo.Cycle, md.LevelInfo.CyclePosition)
		if c := s.Sync.Constants; c != nil && c.BlocksPerCycle > 0 {
			pos += fmt.Sprintf("/%d", c.BlocksPerCycle)
		}
		parts = append(parts, bar.Render(pos))
	}

	if stale := s.RPC.FailingTargets(); len(stale) > 0 {
		parts = append(parts, r.Styles.StatusStale.Render("stale: "+targetList(stale)))
	}
	if s.RPC.Dropped > 0 {
		parts = append(parts, r.Styles.StatusStale.Render(fmt.Sprintf("dropped %d", s.RPC.Dropped)))
	}

	if hs := s.Host.Sample; hs != nil {
		parts = append(parts, bar.Render(fmt.Sprintf("cpu %.0f%%  mem %.0f%%  load %.2f",
			hs.CPUPercent, hs.MemPercent, hs.Load1)))
	} else if s.Host.LastError != "" {
		parts = append(parts, r.Styles.StatusStale.Render("host: "+s.Host.LastError))
	}

	var flags []string
	if s.UI.Delta {
		flags = append(flags, "Δ")
	}
	if !s.UI.Mouse {
		flags = append(flags, "no mouse")
	}
	if len(flags) > 0 {
		parts = append(parts, r.Styles.Muted.Render(strings.Join(flags, " ")))
	}

	return strings.Join(parts, r.Styles.Muted.Render(statusSeparator))
}

func targetList(targets []rpc.Target) string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.String()
	}
	return strings.Join(names, ",")
}
