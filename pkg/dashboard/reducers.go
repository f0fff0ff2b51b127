package dashboard

import (
	"time"

	"github.com/google/uuid"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/automaton"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
)

// maxBackoffFactor caps the exponential retry delay at this multiple of the
// configured backoff.
const maxBackoffFactor = 8

type meta = automaton.ActionWithMeta[Action]

// Reducers returns the reducer chain in registration order. reduceRPC runs
// first so pending markers settle before anything reads them; reduceUI runs
// last because it clamps row cursors to the row counts the data reducers just
// produced.
func Reducers() []automaton.Reducer[State, Action] {
	return []automaton.Reducer[State, Action]{
		reduceRPC,
		reduceSync,
		reduceEndorsements,
		reduceBaking,
		reduceOperations,
		reduceHost,
		reduceUI,
	}
}

// ---------------------------------------------------------------------------
// rpc-status
// ---------------------------------------------------------------------------

func reduceRPC(s *State, a meta) {
	r := &s.RPC
	if r.Targets == nil {
		r.Targets = map[rpc.Target]TargetStatus{}
	}
	switch act := a.Action.(type) {
	case RPCRequested:
		st := r.Targets[act.Target]
		st.Pending = true
		st.PendingID = act.ID
		st.RequestedAt = a.Time
		st.LastParams = act.Params
		st.Requests++
		r.Targets[act.Target] = st
	case RequestFailed:
		st := r.Targets[act.Target]
		st.Pending = false
		st.PendingID = uuid.Nil
		st.Failures++
		st.LastFailure = a.Time
		st.LastError = act.Reason
		st.RetryAfter = a.Time.Add(retryDelay(s.UI.Settings.RetryBackoff, st.Failures))
		r.Targets[act.Target] = st
		if act.Channel {
			r.Dropped++
		}
	default:
		if target, id, ok := responseOf(act); ok {
			r.settle(target, id, a.Time)
		}
	}
}

func (r *RPCStatus) settle(target rpc.Target, id uuid.UUID, at time.Time) {
	st := r.Targets[target]
	st.Responses++
	if !st.Pending || st.PendingID != id {
		st.Stale++
		r.Targets[target] = st
		return
	}
	st.Pending = false
	st.PendingID = uuid.Nil
	st.Failures = 0
	st.LastError = ""
	st.RetryAfter = time.Time{}
	st.LastSuccess = at
	r.Targets[target] = st
}

// responseOf maps a response action to the target and correlation id it
// answers.
func responseOf(a Action) (rpc.Target, uuid.UUID, bool) {
	switch a := a.(type) {
	case CurrentHeadHeaderReceived:
		return rpc.CurrentHeadHeader, a.ID, true
	case EndorsementRightsReceived:
		return rpc.EndorsementRights, a.ID, true
	case EndorsementStatusesReceived:
		return rpc.EndorsementStatuses, a.ID, true
	case OperationsStatsReceived:
		return rpc.OperationsStats, a.ID, true
	case BakingRightsReceived:
		return rpc.BakingRights, a.ID, true
	case ApplicationStatsReceived:
		return rpc.ApplicationStats, a.ID, true
	case PeerStatsReceived:
		return rpc.PeerStats, a.ID, true
	case NetworkConstantsReceived:
		return rpc.NetworkConstants, a.ID, true
	case CurrentHeadMetadataReceived:
		return rpc.CurrentHeadMetadata, a.ID, true
	case BestRemoteLevelReceived:
		return rpc.BestRemoteLevel, a.ID, true
	}
	return 0, uuid.Nil, false
}

func retryDelay(base time.Duration, failures int) time.Duration {
	d := base
	for i := 1; i < failures && d < maxBackoffFactor*base; i++ {
		d *= 2
	}
	return min(d, maxBackoffFactor*base)
}

// ---------------------------------------------------------------------------
// Synchronization
// ---------------------------------------------------------------------------

func reduceSync(s *State, a meta) {
	sy := &s.Sync
	switch act := a.Action.(type) {
	case CurrentHeadChanged:
		h := act.Header
		sy.Head = Head{
			Hash:        h.Hash,
			Level:       h.Level,
			Round:       h.PayloadRound,
			Predecessor: h.Predecessor,
			Timestamp:   h.Timestamp,
			ReceivedAt:  a.Time,
		}
		sy.HeadChanges++
	case CurrentHeadMetadataReceived:
		if act.Params.Level != sy.Head.Level {
			return
		}
		m := act.Metadata
		sy.Metadata = &m
	case NetworkConstantsReceived:
		c := act.Constants
		sy.Constants = &c
	case BestRemoteLevelReceived:
		sy.BestRemoteLevel = nil
		if act.Level != nil {
			l := *act.Level
			sy.BestRemoteLevel = &l
		}
	case IncomingTransferReceived:
		t := act.Transfer
		sy.Transfer = &t
		sy.TransferRates = appendBounded(sy.TransferRates, t.CurrentRate)
	case BlockStatusReceived:
		sy.Blocks = act.Blocks
	case BlockApplicationStatusReceived:
		st := act.Status
		sy.Application = &st
	case ChainStatusReceived:
		sy.Chain = act.Status.Chain
	case PeersMetricsReceived:
		sy.Peers = peerMetricRows(act.Peers)
	}
}

// ---------------------------------------------------------------------------
// Endorsements
// ---------------------------------------------------------------------------

func reduceEndorsements(s *State, a meta) {
	e := &s.Endorsements
	switch act := a.Action.(type) {
	case CurrentHeadChanged:
		e.Level = act.Header.Level
		e.Hash = act.Header.Hash
		e.Statuses = nil
	case EndorsementRightsReceived:
		if act.Params.Level != e.Level {
			return
		}
		e.Rights = act.Rights
	case EndorsementStatusesReceived:
		if act.Params.Block != e.Hash {
			return
		}
		e.Statuses = act.Statuses
	default:
		return
	}
	e.Rows = endorsementRows(e.Level, e.Rights, e.Statuses, s.UI.Settings.Baker)
	e.Summary = summarize(e.Rows)
}

// ---------------------------------------------------------------------------
// Baking
// ---------------------------------------------------------------------------

func reduceBaking(s *State, a meta) {
	b := &s.Baking
	switch act := a.Action.(type) {
	case CurrentHeadChanged:
		b.Level = act.Header.Level
		b.Hash = act.Header.Hash
		b.Timestamp = act.Header.Timestamp
		b.Reference = act.Header.Timestamp.UnixNano()
		b.Application = nil
		b.Peers = nil
		b.NextRight = nextRight(b.Rights, b.Level, s.UI.Settings.Baker)
	case BakingRightsReceived:
		if act.Params.Level != b.Level || act.Params.Delegate != s.UI.Settings.Baker {
			return
		}
		b.Rights = act.Rights
		b.NextRight = nextRight(b.Rights, b.Level, s.UI.Settings.Baker)
	case ApplicationStatsReceived:
		if act.Params.Level != b.Level {
			return
		}
		b.Application = applicationRows(act.Stats)
		for _, st := range act.Stats {
			if st.BlockHash == b.Hash {
				b.Reference = st.ReceiveTimestamp
			}
		}
		for i := range b.Peers {
			b.Peers[i].Ref = b.Reference
		}
	case PeerStatsReceived:
		if act.Params.Level != b.Level {
			return
		}
		b.Peers = peerStatRows(act.Stats, b.Reference)
	}
}

// nextRight picks the earliest right above level, restricted to baker when
// one is configured.
func nextRight(rights rpc.BakingRightsList, level int32, baker string) *rpc.BakingRight {
	var best *rpc.BakingRight
	for i := range rights {
		r := rights[i]
		if r.Level <= level || (baker != "" && r.Delegate != baker) {
			continue
		}
		if best == nil || r.Level < best.Level || (r.Level == best.Level && r.Round < best.Round) {
			best = &r
		}
	}
	return best
}

// ---------------------------------------------------------------------------
// Mempool
// ---------------------------------------------------------------------------

func reduceOperations(s *State, a meta) {
	if act, ok := a.Action.(OperationsStatsReceived); ok {
		s.Operations.Rows = operationRows(act.Stats)
		s.Operations.UpdatedAt = a.Time
	}
}

// ---------------------------------------------------------------------------
// Host
// ---------------------------------------------------------------------------

func reduceHost(s *State, a meta) {
	h := &s.Host
	switch act := a.Action.(type) {
	case HostSampleRequested:
		h.Pending = true
		h.RequestedAt = a.Time
	case HostStatsReceived:
		// Only the answer to the outstanding request counts.
		if !h.Pending || !act.RequestedAt.Equal(h.RequestedAt) {
			return
		}
		h.Pending = false
		if act.Err != "" {
			h.LastError = act.Err
			return
		}
		sample := act.Sample
		h.Sample = &sample
		h.LastError = ""
		h.CPUHistory = appendBounded(h.CPUHistory, sample.CPUPercent)
	}
}

// ---------------------------------------------------------------------------
// UI
// ---------------------------------------------------------------------------

func reduceUI(s *State, a meta) {
	ui := &s.UI
	t := &ui.Tables
	switch act := a.Action.(type) {
	case Init:
		ui.Settings = act.Settings
		ui.Initialized = true
		ui.Mouse = act.Settings.Mouse
	case Quit:
		ui.Quitting = true
	case Resize:
		ui.Width, ui.Height = act.Width, act.Height
		resizeTables(s)
	case ChangeScreen:
		ui.Screen = act.Screen
		ui.Focus = 0
	case NextScreen:
		ui.Screen = (ui.Screen + 1) % screenCount
		ui.Focus = 0
	case SwitchFocus:
		ui.Focus = (ui.Focus + 1) % focusCount(ui.Screen)
	case ColumnNext:
		table, _ := activeTable(s)
		table.Next()
	case ColumnPrevious:
		table, _ := activeTable(s)
		table.Previous()
	case SelectColumn:
		table, _ := activeTable(s)
		table.SelectColumn(act.Column)
	case CycleSort:
		table, _ := activeTable(s)
		table.CycleSort()
	case RowNext:
		table, n := activeTable(s)
		table.Rows().Next(n)
	case RowPrevious:
		table, n := activeTable(s)
		table.Rows().Previous(n)
	case ToggleDelta:
		ui.Delta = !ui.Delta
	case ToggleMouse:
		ui.Mouse = !ui.Mouse
	case ToggleHelp:
		ui.Help = !ui.Help
	case PeersMetricsReceived:
		t.Peers.Rows().Clamp(len(s.Sync.Peers))
	case CurrentHeadChanged:
		t.Endorsements.Rows().Clamp(len(s.Endorsements.Rows))
		t.Application.Rows().Clamp(len(s.Baking.Application))
		t.PeerStats.Rows().Clamp(len(s.Baking.Peers))
	case EndorsementRightsReceived, EndorsementStatusesReceived:
		t.Endorsements.Rows().Clamp(len(s.Endorsements.Rows))
	case ApplicationStatsReceived:
		t.Application.Rows().Clamp(len(s.Baking.Application))
	case PeerStatsReceived:
		t.PeerStats.Rows().Clamp(len(s.Baking.Peers))
	case OperationsStatsReceived:
		t.Operations.Rows().Clamp(len(s.Operations.Rows))
	}
}

func resizeTables(s *State) {
	vp := Layout(s.UI.Width, s.UI.Height)
	t := &s.UI.Tables
	size := func(table navigable, v Viewport, n int) {
		table.SetWidth(v.Width)
		table.Rows().SetHeight(v.Rows)
		table.Rows().Clamp(n)
	}
	size(&t.Peers, vp.Peers, len(s.Sync.Peers))
	size(&t.Endorsements, vp.Endorsements, len(s.Endorsements.Rows))
	size(&t.Application, vp.Application, len(s.Baking.Application))
	size(&t.PeerStats, vp.PeerStats, len(s.Baking.Peers))
	size(&t.Operations, vp.Operations, len(s.Operations.Rows))
}

// activeTable returns the focused table and its row count.
func activeTable(s *State) (navigable, int) {
	t := &s.UI.Tables
	switch s.UI.Screen {
	case ScreenEndorsements:
		return &t.Endorsements, len(s.Endorsements.Rows)
	case ScreenBaking:
		if s.UI.Focus == 1 {
			return &t.PeerStats, len(s.Baking.Peers)
		}
		return &t.Application, len(s.Baking.Application)
	case ScreenMempool:
		return &t.Operations, len(s.Operations.Rows)
	}
	return &t.Peers, len(s.Sync.Peers)
}

func focusCount(screen Screen) int {
	if screen == ScreenBaking {
		return 2
	}
	return 1
}
