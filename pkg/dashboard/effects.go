package dashboard

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/automaton"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/hoststats"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/terminal"
)

// Store is the dashboard's automaton.
type Store = automaton.Store[State, Action]

// requestNamespace seeds correlation ids. Ids are derived from the
// dispatching action so a replayed log produces the same ids as the
// recorded session.
var requestNamespace = uuid.MustParse("6f1c8a52-3d0e-4b8f-9a27-5c4e1d7b2f90")

// headFanOut are the targets requested independently on every head change.
var headFanOut = []rpc.Target{
	rpc.EndorsementRights,
	rpc.EndorsementStatuses,
	rpc.BakingRights,
	rpc.ApplicationStats,
	rpc.PeerStats,
	rpc.CurrentHeadMetadata,
}

type effects struct {
	svc    Service
	logger *slog.Logger
}

// Effects returns the effect chain in registration order.
func Effects(svc Service, logger *slog.Logger) []automaton.Effect[State, Action] {
	e := &effects{svc: svc, logger: logger}
	return []automaton.Effect[State, Action]{
		e.effectInit,
		e.effectTick,
		e.effectRPCRequest,
		e.effectHead,
		e.effectHeadChanged,
		e.effectHostSample,
		e.effectTerminal,
	}
}

func (e *effects) effectInit(store *Store, a meta) {
	act, ok := a.Action.(Init)
	if !ok {
		return
	}
	if act.Settings.AltScreen {
		e.terminal(terminal.EnterAltScreen)
	}
	if act.Settings.Mouse {
		e.terminal(terminal.EnableMouse)
	}
	for _, t := range []rpc.Target{rpc.NetworkConstants, rpc.BestRemoteLevel, rpc.CurrentHeadHeader} {
		request(store, a.Meta, t, rpc.Params{})
	}
}

func (e *effects) effectTick(store *Store, a meta) {
	if _, ok := a.Action.(Tick); !ok {
		return
	}
	s := store.State()
	for _, t := range rpc.Targets() {
		params, ok := paramsFor(t, s)
		if !ok {
			continue
		}
		if due(s.RPC.Targets[t], params, interval(t, s.UI.Settings), a.Time) {
			request(store, a.Meta, t, params)
		}
	}

	h := s.Host
	every := s.UI.Settings.HostInterval
	if every > 0 && !h.Pending && (h.RequestedAt.IsZero() || a.Time.Sub(h.RequestedAt) >= every) {
		store.Dispatch(HostSampleRequested{})
	}
}

func (e *effects) effectRPCRequest(store *Store, a meta) {
	act, ok := a.Action.(RPCRequested)
	if !ok {
		return
	}
	err := e.svc.SendRPC(rpc.Request{ID: act.ID, Target: act.Target, Params: act.Params})
	if err == nil {
		return
	}
	e.logger.Warn("rpc request not queued",
		"target", act.Target,
		"correlation_id", act.ID,
		"error", err,
	)
	store.Dispatch(RequestFailed{Target: act.Target, ID: act.ID, Reason: err.Error(), Channel: true})
}

func (e *effects) effectHead(store *Store, a meta) {
	if act, ok := a.Action.(CurrentHeadHeaderReceived); ok {
		store.Dispatch(CurrentHeadChanged{Header: act.Header})
	}
}

func (e *effects) effectHeadChanged(store *Store, a meta) {
	act, ok := a.Action.(CurrentHeadChanged)
	if !ok {
		return
	}
	e.logger.Debug("head changed", "level", act.Header.Level, "hash", act.Header.Hash)
	for _, t := range headFanOut {
		if params, ok := paramsFor(t, store.State()); ok {
			request(store, a.Meta, t, params)
		}
	}
}

func (e *effects) effectHostSample(store *Store, a meta) {
	if _, ok := a.Action.(HostSampleRequested); !ok {
		return
	}
	if err := e.svc.SampleHost(hoststats.Request{RequestedAt: a.Time}); err != nil {
		e.logger.Warn("host sample not queued", "error", err)
		store.Dispatch(HostStatsReceived{RequestedAt: a.Time, Err: err.Error()})
	}
}

func (e *effects) effectTerminal(store *Store, a meta) {
	ui := store.State().UI
	switch a.Action.(type) {
	case Quit:
		if ui.Mouse {
			e.terminal(terminal.DisableMouse)
		}
		if ui.Settings.AltScreen {
			e.terminal(terminal.LeaveAltScreen)
		}
		e.terminal(terminal.Quit)
	case ToggleMouse:
		if ui.Mouse {
			e.terminal(terminal.EnableMouse)
		} else {
			e.terminal(terminal.DisableMouse)
		}
	}
}

func (e *effects) terminal(cmd terminal.Command) {
	if err := e.svc.Terminal(cmd); err != nil {
		e.logger.Warn("terminal command dropped", "command", cmd, "error", err)
	}
}

func request(store *Store, parent automaton.Meta, target rpc.Target, params rpc.Params) {
	store.Dispatch(RPCRequested{Target: target, ID: requestID(parent, target), Params: params})
}

func requestID(parent automaton.Meta, target rpc.Target) uuid.UUID {
	return uuid.NewSHA1(requestNamespace, fmt.Appendf(nil, "%d/%d/%s", parent.Time.UnixNano(), parent.ID, target))
}

// paramsFor returns the parameters target needs against the current state.
// Head-scoped targets are not ready until a head is known; their params
// include the level so a head change makes earlier data stale.
func paramsFor(target rpc.Target, s *State) (rpc.Params, bool) {
	head := s.Sync.Head
	switch target {
	case rpc.EndorsementRights, rpc.ApplicationStats, rpc.PeerStats, rpc.CurrentHeadMetadata:
		return rpc.Params{Level: head.Level}, head.Known()
	case rpc.EndorsementStatuses:
		return rpc.Params{Block: head.Hash}, head.Known()
	case rpc.BakingRights:
		return rpc.Params{Level: head.Level, Delegate: s.UI.Settings.Baker}, head.Known()
	}
	return rpc.Params{}, true
}

// interval is the polling period of target, 0 for targets fetched only when
// their params change.
func interval(target rpc.Target, st Settings) time.Duration {
	switch target {
	case rpc.CurrentHeadHeader:
		return st.HeadInterval
	case rpc.OperationsStats:
		return st.OperationsInterval
	case rpc.EndorsementStatuses:
		return st.EndorsementsInterval
	case rpc.BestRemoteLevel:
		return st.BestRemoteInterval
	}
	return 0
}

// due reports whether a target should be requested now: failed targets wait
// out their backoff, others are fetched when never fetched, when their params
// moved on, or when their polling period elapsed.
func due(st TargetStatus, params rpc.Params, every time.Duration, now time.Time) bool {
	switch {
	case st.Pending:
		return false
	case st.Failing():
		return !now.Before(st.RetryAfter)
	case st.RequestedAt.IsZero(), st.LastParams != params:
		return true
	}
	return every > 0 && now.Sub(st.RequestedAt) >= every
}
