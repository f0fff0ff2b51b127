package dashboard

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/actionlog"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/automaton"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/hoststats"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/wsfeed"
)

// session drives a store through a representative run.
func session(t *testing.T, store *Store, svc *fakeService, clk *clock) {
	t.Helper()
	store.Dispatch(Init{Settings: testSettings()})
	store.Dispatch(Resize{Width: 140, Height: 45})
	respondHead(t, store, svc, header(100, "BLhead100"))

	clk.Advance(300 * time.Millisecond)
	rights := svc.last(t, rpc.EndorsementRights)
	store.Dispatch(EndorsementRightsReceived{ID: rights.ID, Params: rights.Params, Rights: rpc.EndorsingRights{{
		Level: 100,
		Delegates: []rpc.DelegateRight{
			{Delegate: "tz1baker", FirstSlot: 0, EndorsingPower: 20},
			{Delegate: "tz1other", FirstSlot: 20, EndorsingPower: 7},
		},
	}}})
	statuses := svc.last(t, rpc.EndorsementStatuses)
	store.Dispatch(EndorsementStatusesReceived{ID: statuses.ID, Params: statuses.Params, Statuses: rpc.EndorsementStatusMap{
		"20": {State: StateDecoded, ReceivedTime: ptr(int64(2_500_000)), DecodedTime: ptr(int64(2_900_000))},
	}})

	feed := wsfeed.Batch{Received: clk.now, Messages: []wsfeed.Message{
		{Type: "incomingTransfer", Payload: wsfeed.IncomingTransfer{CurrentBlockCount: 100, DownloadedBlocks: 90, CurrentRate: 12.5}},
		{Type: "peersMetrics", Payload: []wsfeed.PeerMetric{
			{ID: "idq", IPAddress: "10.0.0.9", TransferredBytes: 4096, CurrentHeadLevel: ptr(int32(100))},
			{ID: "idp", IPAddress: "10.0.0.3", ConnectedSeconds: ptr(61.5)},
		}},
		{Type: "chainStatus", Payload: wsfeed.ChainStatus{Chain: []wsfeed.CycleStatus{{Cycle: 3, Downloaded: 5, BlockCount: 8}}}},
	}}
	for _, a := range FromFeed(feed) {
		store.Dispatch(a)
	}

	clk.Advance(time.Second)
	store.Dispatch(Tick{})
	ops := svc.last(t, rpc.OperationsStats)
	store.Dispatch(OperationsStatsReceived{ID: ops.ID, Stats: rpc.OperationStatsMap{
		"ooHash1": {Kind: "endorsement", MinTime: ptr(int64(10)), ValidationResult: &rpc.ValidationResult{Time: 40, Result: "applied"}},
	}})
	store.Dispatch(HostStatsReceived{RequestedAt: svc.samples[0].RequestedAt, Sample: hoststats.Sample{At: clk.now, CPUPercent: 12.5}})
	store.Dispatch(RequestFailed{Target: rpc.BakingRights, ID: svc.last(t, rpc.BakingRights).ID, Reason: "protocol: status 500"})

	store.Dispatch(ChangeScreen{Screen: ScreenEndorsements})
	store.Dispatch(ColumnNext{})
	store.Dispatch(CycleSort{})
	store.Dispatch(RowNext{})
	store.Dispatch(ToggleDelta{})
	store.Dispatch(SwitchFocus{}) // disabled outside Baking
	clk.Advance(6 * time.Second)
	store.Dispatch(Tick{})
	store.Dispatch(Quit{})
}

func TestReplayIsDeterministic(t *testing.T) {
	var buf bytes.Buffer
	rec := actionlog.NewWriter[Action](&buf, Codec{})
	live, liveSvc, clk := newTestStore(t, automaton.WithRecorder[State, Action](rec))
	session(t, live, liveSvc, clk)
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	log, err := actionlog.Read[Action](&buf, Codec{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(log) != rec.Count() {
		t.Fatalf("read %d records, wrote %d", len(log), rec.Count())
	}

	replayed, replaySvc, _ := newTestStore(t)
	actionlog.Replay(replayed, log)

	if diff := cmp.Diff(*live.State(), *replayed.State(), stateOpts); diff != "" {
		t.Errorf("replayed state differs (-live +replay):\n%s", diff)
	}
	if diff := cmp.Diff(liveSvc.requests, replaySvc.requests); diff != "" {
		t.Errorf("replayed requests differ (-live +replay):\n%s", diff)
	}
	if diff := cmp.Diff(liveSvc.commands, replaySvc.commands); diff != "" {
		t.Errorf("replayed terminal commands differ (-live +replay):\n%s", diff)
	}
	if live.Stats() != replayed.Stats() {
		t.Errorf("stats: live %+v, replay %+v", live.Stats(), replayed.Stats())
	}
}

func TestReplaySameSessionTwice(t *testing.T) {
	a, svcA, clkA := newTestStore(t)
	b, svcB, clkB := newTestStore(t)
	session(t, a, svcA, clkA)
	session(t, b, svcB, clkB)
	if diff := cmp.Diff(*a.State(), *b.State(), stateOpts); diff != "" {
		t.Errorf("same stimulus, different state:\n%s", diff)
	}
}
