package dashboard

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/hoststats"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/wsfeed"
)

// Kind names an action for logs and the action log.
type Kind string

const (
	KindInit                   Kind = "init"
	KindTick                   Kind = "tick"
	KindQuit                   Kind = "quit"
	KindResize                 Kind = "resize"
	KindChangeScreen           Kind = "change_screen"
	KindNextScreen             Kind = "next_screen"
	KindColumnNext             Kind = "column_next"
	KindColumnPrevious         Kind = "column_previous"
	KindSelectColumn           Kind = "select_column"
	KindRowNext                Kind = "row_next"
	KindRowPrevious            Kind = "row_previous"
	KindCycleSort              Kind = "cycle_sort"
	KindToggleDelta            Kind = "toggle_delta"
	KindSwitchFocus            Kind = "switch_focus"
	KindToggleMouse            Kind = "toggle_mouse"
	KindToggleHelp             Kind = "toggle_help"
	KindRPCRequested           Kind = "rpc_requested"
	KindRequestFailed          Kind = "request_failed"
	KindHeadHeaderReceived     Kind = "current_head_header_received"
	KindHeadChanged            Kind = "current_head_changed"
	KindEndorsementRights      Kind = "endorsement_rights_received"
	KindEndorsementStatuses    Kind = "endorsement_statuses_received"
	KindOperationsStats        Kind = "operations_stats_received"
	KindBakingRights           Kind = "baking_rights_received"
	KindApplicationStats       Kind = "application_stats_received"
	KindPeerStats              Kind = "peer_stats_received"
	KindNetworkConstants       Kind = "network_constants_received"
	KindHeadMetadata           Kind = "current_head_metadata_received"
	KindBestRemoteLevel        Kind = "best_remote_level_received"
	KindIncomingTransfer       Kind = "incoming_transfer_received"
	KindBlockStatus            Kind = "block_status_received"
	KindBlockApplicationStatus Kind = "block_application_status_received"
	KindChainStatus            Kind = "chain_status_received"
	KindPeersMetrics           Kind = "peers_metrics_received"
	KindHostSampleRequested    Kind = "host_sample_requested"
	KindHostStats              Kind = "host_stats_received"
)

// Action is the closed set of things that can happen to the dashboard.
type Action interface {
	Kind() Kind
	isAction()
}

// KindOf is the Store's kind function.
func KindOf(a Action) string { return string(a.Kind()) }

// ---------------------------------------------------------------------------
// Lifecycle and UI
// ---------------------------------------------------------------------------

// Init starts the dashboard with the given settings.
type Init struct {
	Settings Settings `json:"settings"`
}

// Tick is the periodic heartbeat driving polling and retries.
type Tick struct{}

// Quit begins shutdown.
type Quit struct{}

// Resize reports the terminal size.
type Resize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ChangeScreen switches to Screen.
type ChangeScreen struct {
	Screen Screen `json:"screen"`
}

// NextScreen cycles to the next screen.
type NextScreen struct{}

// ColumnNext moves the column cursor of the focused table right.
type ColumnNext struct{}

// ColumnPrevious moves the column cursor of the focused table left.
type ColumnPrevious struct{}

// SelectColumn puts the column cursor of the focused table on Column.
type SelectColumn struct {
	Column int `json:"column"`
}

// RowNext moves the row cursor of the focused table down.
type RowNext struct{}

// RowPrevious moves the row cursor of the focused table up.
type RowPrevious struct{}

// CycleSort cycles the sort order of the selected column.
type CycleSort struct{}

// ToggleDelta switches between absolute and phase-relative times.
type ToggleDelta struct{}

// SwitchFocus moves focus between tables on the current screen.
type SwitchFocus struct{}

// ToggleMouse toggles mouse capture.
type ToggleMouse struct{}

// ToggleHelp toggles the full help view.
type ToggleHelp struct{}

// ---------------------------------------------------------------------------
// RPC
// ---------------------------------------------------------------------------

// RPCRequested marks Target pending and sends the request.
type RPCRequested struct {
	Target rpc.Target `json:"target"`
	ID     uuid.UUID  `json:"id"`
	Params rpc.Params `json:"params"`
}

// RequestFailed records a failed request. ID is the correlation id of the
// request that failed. Channel is set when the request never left the
// process because the worker channel refused it.
type RequestFailed struct {
	Target  rpc.Target `json:"target"`
	ID      uuid.UUID  `json:"id"`
	Reason  string     `json:"reason"`
	Channel bool       `json:"channel,omitempty"`
}

// CurrentHeadHeaderReceived carries the head header.
type CurrentHeadHeaderReceived struct {
	ID     uuid.UUID       `json:"id"`
	Header rpc.BlockHeader `json:"header"`
}

// CurrentHeadChanged announces a new head. Dispatched by effects only.
type CurrentHeadChanged struct {
	Header rpc.BlockHeader `json:"header"`
}

// EndorsementRightsReceived carries endorsing rights for Params.Level.
type EndorsementRightsReceived struct {
	ID     uuid.UUID           `json:"id"`
	Params rpc.Params          `json:"params"`
	Rights rpc.EndorsingRights `json:"rights"`
}

// EndorsementStatusesReceived carries statuses for Params.Block.
type EndorsementStatusesReceived struct {
	ID       uuid.UUID                `json:"id"`
	Params   rpc.Params               `json:"params"`
	Statuses rpc.EndorsementStatusMap `json:"statuses"`
}

// OperationsStatsReceived carries mempool statistics.
type OperationsStatsReceived struct {
	ID    uuid.UUID             `json:"id"`
	Stats rpc.OperationStatsMap `json:"stats"`
}

// BakingRightsReceived carries baking rights.
type BakingRightsReceived struct {
	ID     uuid.UUID            `json:"id"`
	Params rpc.Params           `json:"params"`
	Rights rpc.BakingRightsList `json:"rights"`
}

// ApplicationStatsReceived carries block application timings for
// Params.Level.
type ApplicationStatsReceived struct {
	ID     uuid.UUID                `json:"id"`
	Params rpc.Params               `json:"params"`
	Stats  rpc.ApplicationStatsList `json:"stats"`
}

// PeerStatsReceived carries per-peer head timings for Params.Level.
type PeerStatsReceived struct {
	ID     uuid.UUID        `json:"id"`
	Params rpc.Params       `json:"params"`
	Stats  rpc.PeerStatsMap `json:"stats"`
}

// NetworkConstantsReceived carries the protocol constants.
type NetworkConstantsReceived struct {
	ID        uuid.UUID     `json:"id"`
	Constants rpc.Constants `json:"constants"`
}

// CurrentHeadMetadataReceived carries head metadata.
type CurrentHeadMetadataReceived struct {
	ID       uuid.UUID        `json:"id"`
	Params   rpc.Params       `json:"params"`
	Metadata rpc.HeadMetadata `json:"metadata"`
}

// BestRemoteLevelReceived carries the best level advertised by peers.
type BestRemoteLevelReceived struct {
	ID    uuid.UUID `json:"id"`
	Level *int32    `json:"level"`
}

// ---------------------------------------------------------------------------
// WebSocket feed
// ---------------------------------------------------------------------------

type IncomingTransferReceived struct {
	Transfer wsfeed.IncomingTransfer `json:"transfer"`
}

type BlockStatusReceived struct {
	Blocks []wsfeed.BlockStatus `json:"blocks"`
}

type BlockApplicationStatusReceived struct {
	Status wsfeed.BlockApplicationStatus `json:"status"`
}

type ChainStatusReceived struct {
	Status wsfeed.ChainStatus `json:"status"`
}

type PeersMetricsReceived struct {
	Peers []wsfeed.PeerMetric `json:"peers"`
}

// ---------------------------------------------------------------------------
// Host
// ---------------------------------------------------------------------------

// HostSampleRequested asks the host sampler for a sample.
type HostSampleRequested struct{}

// HostStatsReceived carries a host sample, or Err when sampling failed.
type HostStatsReceived struct {
	RequestedAt time.Time        `json:"requested_at"`
	Sample      hoststats.Sample `json:"sample"`
	Err         string           `json:"err,omitempty"`
}

func (Init) Kind() Kind                           { return KindInit }
func (Tick) Kind() Kind                           { return KindTick }
func (Quit) Kind() Kind                           { return KindQuit }
func (Resize) Kind() Kind                         { return KindResize }
func (ChangeScreen) Kind() Kind                   { return KindChangeScreen }
func (NextScreen) Kind() Kind                     { return KindNextScreen }
func (ColumnNext) Kind() Kind                     { return KindColumnNext }
func (ColumnPrevious) Kind() Kind                 { return KindColumnPrevious }
func (SelectColumn) Kind() Kind                   { return KindSelectColumn }
func (RowNext) Kind() Kind                        { return KindRowNext }
func (RowPrevious) Kind() Kind                    { return KindRowPrevious }
func (CycleSort) Kind() Kind                      { return KindCycleSort }
func (ToggleDelta) Kind() Kind                    { return KindToggleDelta }
func (SwitchFocus) Kind() Kind                    { return KindSwitchFocus }
func (ToggleMouse) Kind() Kind                    { return KindToggleMouse }
func (ToggleHelp) Kind() Kind                     { return KindToggleHelp }
func (RPCRequested) Kind() Kind                   { return KindRPCRequested }
func (RequestFailed) Kind() Kind                  { return KindRequestFailed }
func (CurrentHeadHeaderReceived) Kind() Kind      { return KindHeadHeaderReceived }
func (CurrentHeadChanged) Kind() Kind             { return KindHeadChanged }
func (EndorsementRightsReceived) Kind() Kind      { return KindEndorsementRights }
func (EndorsementStatusesReceived) Kind() Kind    { return KindEndorsementStatuses }
func (OperationsStatsReceived) Kind() Kind        { return KindOperationsStats }
func (BakingRightsReceived) Kind() Kind           { return KindBakingRights }
func (ApplicationStatsReceived) Kind() Kind       { return KindApplicationStats }
func (PeerStatsReceived) Kind() Kind              { return KindPeerStats }
func (NetworkConstantsReceived) Kind() Kind       { return KindNetworkConstants }
func (CurrentHeadMetadataReceived) Kind() Kind    { return KindHeadMetadata }
func (BestRemoteLevelReceived) Kind() Kind        { return KindBestRemoteLevel }
func (IncomingTransferReceived) Kind() Kind       { return KindIncomingTransfer }
func (BlockStatusReceived) Kind() Kind            { return KindBlockStatus }
func (BlockApplicationStatusReceived) Kind() Kind { return KindBlockApplicationStatus }
func (ChainStatusReceived) Kind() Kind            { return KindChainStatus }
func (PeersMetricsReceived) Kind() Kind           { return KindPeersMetrics }
func (HostSampleRequested) Kind() Kind            { return KindHostSampleRequested }
func (HostStatsReceived) Kind() Kind              { return KindHostStats }

func (Init) isAction()                           {}
func (Tick) isAction()                           {}
func (Quit) isAction()                           {}
func (Resize) isAction()                         {}
func (ChangeScreen) isAction()                   {}
func (NextScreen) isAction()                     {}
func (ColumnNext) isAction()                     {}
func (ColumnPrevious) isAction()                 {}
func (SelectColumn) isAction()                   {}
func (RowNext) isAction()                        {}
func (RowPrevious) isAction()                    {}
func (CycleSort) isAction()                      {}
func (ToggleDelta) isAction()                    {}
func (SwitchFocus) isAction()                    {}
func (ToggleMouse) isAction()                    {}
func (ToggleHelp) isAction()                     {}
func (RPCRequested) isAction()                   {}
func (RequestFailed) isAction()                  {}
func (CurrentHeadHeaderReceived) isAction()      {}
func (CurrentHeadChanged) isAction()             {}
func (EndorsementRightsReceived) isAction()      {}
func (EndorsementStatusesReceived) isAction()    {}
func (OperationsStatsReceived) isAction()        {}
func (BakingRightsReceived) isAction()           {}
func (ApplicationStatsReceived) isAction()       {}
func (PeerStatsReceived) isAction()              {}
func (NetworkConstantsReceived) isAction()       {}
func (CurrentHeadMetadataReceived) isAction()    {}
func (BestRemoteLevelReceived) isAction()        {}
func (IncomingTransferReceived) isAction()       {}
func (BlockStatusReceived) isAction()            {}
func (BlockApplicationStatusReceived) isAction() {}
func (ChainStatusReceived) isAction()            {}
func (PeersMetricsReceived) isAction()           {}
func (HostSampleRequested) isAction()            {}
func (HostStatsReceived) isAction()              {}

// ---------------------------------------------------------------------------
// Stimulus translation
// ---------------------------------------------------------------------------

// FromRPC turns a worker response into the matching action. Failed
// responses, and payloads of an unexpected type, become RequestFailed.
func FromRPC(resp rpc.Response) Action {
	if resp.Err != nil {
		return RequestFailed{Target: resp.Target, ID: resp.ID, Reason: resp.Err.Error()}
	}
	switch p := resp.Payload.(type) {
	case rpc.BlockHeader:
		return CurrentHeadHeaderReceived{ID: resp.ID, Header: p}
	case rpc.EndorsingRights:
		return EndorsementRightsReceived{ID: resp.ID, Params: resp.Params, Rights: p}
	case rpc.EndorsementStatusMap:
		return EndorsementStatusesReceived{ID: resp.ID, Params: resp.Params, Statuses: p}
	case rpc.OperationStatsMap:
		return OperationsStatsReceived{ID: resp.ID, Stats: p}
	case rpc.BakingRightsList:
		return BakingRightsReceived{ID: resp.ID, Params: resp.Params, Rights: p}
	case rpc.ApplicationStatsList:
		return ApplicationStatsReceived{ID: resp.ID, Params: resp.Params, Stats: p}
	case rpc.PeerStatsMap:
		return PeerStatsReceived{ID: resp.ID, Params: resp.Params, Stats: p}
	case rpc.Constants:
		return NetworkConstantsReceived{ID: resp.ID, Constants: p}
	case rpc.HeadMetadata:
		return CurrentHeadMetadataReceived{ID: resp.ID, Params: resp.Params, Metadata: p}
	case rpc.RemoteLevel:
		return BestRemoteLevelReceived{ID: resp.ID, Level: p.Level}
	}
	return RequestFailed{
		Target: resp.Target,
		ID:     resp.ID,
		Reason: fmt.Sprintf("unexpected payload %T", resp.Payload),
	}
}

// FromFeed turns a WebSocket batch into actions, in message order.
func FromFeed(batch wsfeed.Batch) []Action {
	actions := make([]Action, 0, len(batch.Messages))
	for _, m := range batch.Messages {
		switch p := m.Payload.(type) {
		case wsfeed.IncomingTransfer:
			actions = append(actions, IncomingTransferReceived{Transfer: p})
		case []wsfeed.BlockStatus:
			actions = append(actions, BlockStatusReceived{Blocks: p})
		case wsfeed.BlockApplicationStatus:
			actions = append(actions, BlockApplicationStatusReceived{Status: p})
		case wsfeed.ChainStatus:
			actions = append(actions, ChainStatusReceived{Status: p})
		case []wsfeed.PeerMetric:
			actions = append(actions, PeersMetricsReceived{Peers: p})
		}
	}
	return actions
}

// FromHost turns a host sampler response into an action.
func FromHost(resp hoststats.Response) Action {
	a := HostStatsReceived{RequestedAt: resp.RequestedAt, Sample: resp.Sample}
	if resp.Err != nil {
		a.Err = resp.Err.Error()
	}
	return a
}
