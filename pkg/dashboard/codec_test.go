package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/hoststats"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/wsfeed"
)

func sampleActions() []Action {
	id := uuid.MustParse("0b8e4a4e-8c1a-4f56-9d61-2b0d3c1e7a10")
	return []Action{
		Init{Settings: testSettings()},
		Tick{},
		Quit{},
		Resize{Width: 80, Height: 24},
		ChangeScreen{Screen: ScreenBaking},
		NextScreen{},
		ColumnNext{},
		ColumnPrevious{},
		SelectColumn{Column: 3},
		RowNext{},
		RowPrevious{},
		CycleSort{},
		ToggleDelta{},
		SwitchFocus{},
		ToggleMouse{},
		ToggleHelp{},
		RPCRequested{Target: rpc.PeerStats, ID: id, Params: rpc.Params{Level: 7}},
		RequestFailed{Target: rpc.PeerStats, ID: id, Reason: "boom", Channel: true},
		CurrentHeadHeaderReceived{ID: id, Header: header(7, "BLseven")},
		CurrentHeadChanged{Header: header(7, "BLseven")},
		EndorsementRightsReceived{ID: id, Params: rpc.Params{Level: 7}, Rights: rpc.EndorsingRights{{Level: 7, Delegates: []rpc.DelegateRight{{Delegate: "tz1", EndorsingPower: 2}}}}},
		EndorsementStatusesReceived{ID: id, Params: rpc.Params{Block: "BLseven"}, Statuses: rpc.EndorsementStatusMap{"0": {State: StateApplied, AppliedTime: ptr(int64(9))}}},
		OperationsStatsReceived{ID: id, Stats: rpc.OperationStatsMap{"oo": {Kind: "transaction", Nodes: map[string]rpc.OperationNodeStats{"n": {Received: []int64{1}}}}}},
		BakingRightsReceived{ID: id, Params: rpc.Params{Delegate: "tz1"}, Rights: rpc.BakingRightsList{{Level: 8, Delegate: "tz1", EstimatedTime: ptr(t0)}}},
		ApplicationStatsReceived{ID: id, Params: rpc.Params{Level: 7}, Stats: rpc.ApplicationStatsList{{BlockHash: "BLseven", BakerPriority: ptr(1), SendEnd: ptr(int64(99))}}},
		PeerStatsReceived{ID: id, Params: rpc.Params{Level: 7}, Stats: rpc.PeerStatsMap{"1.1.1.1:9732": {NodeID: "x", HeadRecv: ptr(int64(3))}}},
		NetworkConstantsReceived{ID: id, Constants: rpc.Constants{BlocksPerCycle: 8192, MinimalBlockDelay: 15, DelayIncrementPerRound: 8}},
		CurrentHeadMetadataReceived{ID: id, Metadata: rpc.HeadMetadata{Protocol: "Pt", LevelInfo: rpc.LevelInfo{Level: 7, Cycle: 1, CyclePosition: 3}}},
		BestRemoteLevelReceived{ID: id, Level: ptr(int32(9))},
		IncomingTransferReceived{Transfer: wsfeed.IncomingTransfer{Eta: ptr(3.5), CurrentRate: 1.5}},
		BlockStatusReceived{Blocks: []wsfeed.BlockStatus{{Group: 1, NumberOfBlocks: 4}}},
		BlockApplicationStatusReceived{Status: wsfeed.BlockApplicationStatus{LastAppliedBlock: &wsfeed.BlockRef{Hash: "BL", Level: 3}}},
		ChainStatusReceived{Status: wsfeed.ChainStatus{Chain: []wsfeed.CycleStatus{{Cycle: 1, IsCompleted: true}}}},
		PeersMetricsReceived{Peers: []wsfeed.PeerMetric{{ID: "p", CurrentHeadLevel: ptr(int32(5))}}},
		HostSampleRequested{},
		HostStatsReceived{RequestedAt: t0, Sample: hoststats.Sample{At: t0, CPUPercent: 50, Uptime: time.Hour}, Err: ""},
	}
}

func TestCodecRoundTripsEveryKind(t *testing.T) {
	actions := sampleActions()
	seen := map[Kind]bool{}
	for _, a := range actions {
		seen[a.Kind()] = true
	}
	if len(seen) != len(decoders) {
		t.Fatalf("samples cover %d kinds, codec knows %d", len(seen), len(decoders))
	}

	var c Codec
	for _, a := range actions {
		kind, payload, err := c.Encode(a)
		if err != nil {
			t.Fatalf("Encode(%s): %v", a.Kind(), err)
		}
		got, err := c.Decode(kind, payload)
		if err != nil {
			t.Fatalf("Decode(%s): %v", kind, err)
		}
		if diff := cmp.Diff(a, got); diff != "" {
			t.Errorf("%s round trip (-want +got):\n%s", kind, diff)
		}
	}
}

func TestCodecUnknownKind(t *testing.T) {
	if _, err := (Codec{}).Decode("teleport", []byte(`{}`)); err == nil {
		t.Fatal("unknown kind decoded")
	}
	if _, err := (Codec{}).Decode(string(KindResize), []byte(`{"width":"wide"}`)); err == nil {
		t.Fatal("malformed payload decoded")
	}
}

func TestFromRPC(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name string
		resp rpc.Response
		want Action
	}{
		{
			name: "header",
			resp: rpc.Response{ID: id, Target: rpc.CurrentHeadHeader, Payload: header(5, "BL5")},
			want: CurrentHeadHeaderReceived{ID: id, Header: header(5, "BL5")},
		},
		{
			name: "params carried",
			resp: rpc.Response{ID: id, Target: rpc.PeerStats, Params: rpc.Params{Level: 5}, Payload: rpc.PeerStatsMap{}},
			want: PeerStatsReceived{ID: id, Params: rpc.Params{Level: 5}, Stats: rpc.PeerStatsMap{}},
		},
		{
			name: "remote level",
			resp: rpc.Response{ID: id, Target: rpc.BestRemoteLevel, Payload: rpc.RemoteLevel{Level: ptr(int32(8))}},
			want: BestRemoteLevelReceived{ID: id, Level: ptr(int32(8))},
		},
		{
			name: "error",
			resp: rpc.Response{ID: id, Target: rpc.PeerStats, Err: errors.New("transport: refused")},
			want: RequestFailed{Target: rpc.PeerStats, ID: id, Reason: "transport: refused"},
		},
		{
			name: "unexpected payload",
			resp: rpc.Response{ID: id, Target: rpc.PeerStats, Payload: 42},
			want: RequestFailed{Target: rpc.PeerStats, ID: id, Reason: "unexpected payload int"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, FromRPC(tt.resp)); diff != "" {
				t.Errorf("FromRPC (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromHost(t *testing.T) {
	got := FromHost(hoststats.Response{RequestedAt: t0, Err: hoststats.ErrNoData})
	want := HostStatsReceived{RequestedAt: t0, Err: hoststats.ErrNoData.Error()}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromHost (-want +got):\n%s", diff)
	}
}
