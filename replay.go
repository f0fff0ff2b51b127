package main

import (
	"fmt"
	"io"
	"strings"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/actionlog"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/automaton"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/config"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/dashboard"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/hoststats"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/terminal"
)

// replayService accepts every request and answers none. Responses come from
// the log instead.
type replayService struct{}

var _ dashboard.Service = replayService{}

func (replayService) SendRPC(rpc.Request) error          { return nil }
func (replayService) SampleHost(hoststats.Request) error { return nil }
func (replayService) Terminal(terminal.Command) error    { return nil }

// runReplay feeds the root actions of the log at path into a fresh Store and
// prints a summary of the resulting state.
func runReplay(path string, cfg *config.Config, out io.Writer) error {
	log, err := actionlog.ReadFile[dashboard.Action](path, dashboard.Codec{})
	if err != nil {
		return err
	}
	store := dashboard.NewStore(replayService{}, nil,
		automaton.WithMaxDepth[dashboard.State, dashboard.Action](cfg.Automaton.MaxDepth),
	)
	reduced := actionlog.Replay(store, log)
	printSummary(out, store, len(log), reduced)
	return nil
}

func printSummary(out io.Writer, store *dashboard.Store, records, reduced int) {
	s := store.State()
	st := store.Stats()

	line := func(label, format string, args ...any) {
		fmt.Fprintf(out, "%-14s "+format+"\n", append([]any{label + ":"}, args...)...)
	}

	line("records", "%d (%d root actions reduced)", records, reduced)
	line("dispatched", "%d reduced %d disabled %d truncated %d max depth %d",
		st.Dispatched, st.Reduced, st.Disabled, st.Truncated, st.MaxDepth)

	if h := s.Sync.Head; h.Known() {
		line("head", "%d %s round %d (%d changes)", h.Level, h.Hash, h.Round, s.Sync.HeadChanges)
	} else {
		line("head", "unknown")
	}
	if best := s.Sync.BestRemoteLevel; best != nil {
		line("best remote", "%d", *best)
	}

	e := s.Endorsements.Summary
	line("endorsements", "%d rows, missing %d received %d applied %d broadcast %d, power %d/%d",
		len(s.Endorsements.Rows), e.Missing, e.Received, e.Applied, e.Broadcast, e.PowerSeen, e.Power)
	line("baking", "%d rights, %d application rows, %d peers",
		len(s.Baking.Rights), len(s.Baking.Application), len(s.Baking.Peers))
	line("mempool", "%d operations", len(s.Operations.Rows))
	line("peers", "%d", len(s.Sync.Peers))

	if failing := s.RPC.FailingTargets(); len(failing) > 0 {
		names := make([]string, len(failing))
		for i, t := range failing {
			names[i] = t.String()
		}
		line("failing", "%s", strings.Join(names, ", "))
	}
	line("screen", "%s", s.UI.Screen)
}
