// Package dashboard is the domain of the node dashboard: the aggregate
// State, the Action sum type, and the reducer and effect chains that the
// automaton Store runs.
package dashboard

import (
	"time"

	"github.com/google/uuid"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/components"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/hoststats"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/wsfeed"
)

// historyLen bounds the sparkline series kept in State.
const historyLen = 120

// Screen is one page of the dashboard.
type Screen int

const (
	ScreenSync Screen = iota
	ScreenEndorsements
	ScreenBaking
	ScreenMempool

	screenCount
)

// Screens lists every screen in tab order.
func Screens() []Screen {
	return []Screen{ScreenSync, ScreenEndorsements, ScreenBaking, ScreenMempool}
}

func (s Screen) String() string {
	switch s {
	case ScreenSync:
		return "Synchronization"
	case ScreenEndorsements:
		return "Endorsements"
	case ScreenBaking:
		return "Baking"
	case ScreenMempool:
		return "Mempool"
	}
	return "Unknown"
}

// Settings are the run-time knobs carried by the Init action, so a replayed
// log runs with the settings of the recorded session.
type Settings struct {
	Baker                string        `json:"baker,omitempty"`
	HeadInterval         time.Duration `json:"head_interval"`
	OperationsInterval   time.Duration `json:"operations_interval"`
	EndorsementsInterval time.Duration `json:"endorsements_interval"`
	BestRemoteInterval   time.Duration `json:"best_remote_interval"`
	HostInterval         time.Duration `json:"host_interval"`
	RetryBackoff         time.Duration `json:"retry_backoff"`
	AltScreen            bool          `json:"alt_screen"`
	Mouse                bool          `json:"mouse"`
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		HeadInterval:         time.Second,
		OperationsInterval:   time.Second,
		EndorsementsInterval: time.Second,
		BestRemoteInterval:   5 * time.Second,
		HostInterval:         2 * time.Second,
		RetryBackoff:         5 * time.Second,
		AltScreen:            true,
		Mouse:                true,
	}
}

// State is the aggregate root owned by the Store.
type State struct {
	Sync         Sync
	Endorsements Endorsements
	Baking       Baking
	Operations   Operations
	RPC          RPCStatus
	Host         Host
	UI           UI
}

// NewState returns the empty state with every table constructed.
func NewState() State {
	return State{
		RPC: RPCStatus{Targets: map[rpc.Target]TargetStatus{}},
		UI: UI{
			Tables: Tables{
				Peers:        components.NewExtendedTable[PeerMetricRow](peerMetricHeaders, peerMetricWidths, 1),
				Endorsements: components.NewExtendedTable[EndorsementRow](endorsementHeaders, endorsementWidths, 2),
				Application:  components.NewExtendedTable[ApplicationRow](applicationHeaders, applicationWidths, 1),
				PeerStats:    components.NewExtendedTable[PeerStatRow](peerStatHeaders, peerStatWidths, 1),
				Operations:   components.NewExtendedTable[OperationRow](operationHeaders, operationWidths, 1),
			},
		},
	}
}

// Head is the current head as the dashboard knows it.
type Head struct {
	Hash        string
	Level       int32
	Round       int
	Predecessor string
	Timestamp   time.Time
	// ReceivedAt is when the dashboard first saw this head.
	ReceivedAt time.Time
}

// Known reports whether any head has been seen.
func (h Head) Known() bool { return h.Hash != "" }

// Sync is the synchronization sub-state.
type Sync struct {
	Head            Head
	Metadata        *rpc.HeadMetadata
	Constants       *rpc.Constants
	BestRemoteLevel *int32
	Transfer        *wsfeed.IncomingTransfer
	TransferRates   []float64
	Blocks          []wsfeed.BlockStatus
	Application     *wsfeed.BlockApplicationStatus
	Chain           []wsfeed.CycleStatus
	Peers           []PeerMetricRow
	// HeadChanges counts accepted head changes.
	HeadChanges int
}

// Endorsements is the endorsement sub-state for the current head.
type Endorsements struct {
	Level    int32
	Hash     string
	Rights   rpc.EndorsingRights
	Statuses rpc.EndorsementStatusMap
	Rows     []EndorsementRow
	Summary  EndorsementSummary
}

// EndorsementSummary counts endorsers by their furthest phase.
type EndorsementSummary struct {
	Missing    int
	Received   int
	Decoded    int
	Prechecked int
	Applied    int
	Broadcast  int
	Power      int
	// PowerSeen is the endorsing power that reached at least Received.
	PowerSeen int
}

// Baking is the baking sub-state.
type Baking struct {
	Level       int32
	Hash        string
	Timestamp   time.Time
	Rights      rpc.BakingRightsList
	NextRight   *rpc.BakingRight
	Application []ApplicationRow
	Peers       []PeerStatRow
	// Reference is the receive time (ns) of the current head, the zero point
	// for per-peer timings.
	Reference int64
}

// Operations is the mempool sub-state.
type Operations struct {
	Rows      []OperationRow
	UpdatedAt time.Time
}

// TargetStatus tracks one RPC target. At most one request per target is in
// flight; PendingID is its correlation id.
type TargetStatus struct {
	Pending     bool
	PendingID   uuid.UUID
	RequestedAt time.Time
	LastParams  rpc.Params
	LastSuccess time.Time
	LastFailure time.Time
	LastError   string
	Failures    int
	RetryAfter  time.Time
	Requests    uint64
	Responses   uint64
	Stale       uint64
}

// Failing reports whether the last attempt failed.
func (t TargetStatus) Failing() bool { return t.Failures > 0 }

// RPCStatus is the rpc-status sub-state.
type RPCStatus struct {
	Targets map[rpc.Target]TargetStatus
	Dropped uint64
}

// Status returns the status of target, zero if never requested.
func (r RPCStatus) Status(target rpc.Target) TargetStatus {
	return r.Targets[target]
}

// FailingTargets lists targets whose last attempt failed, in target order.
func (r RPCStatus) FailingTargets() []rpc.Target {
	var out []rpc.Target
	for _, t := range rpc.Targets() {
		if r.Targets[t].Failing() {
			out = append(out, t)
		}
	}
	return out
}

// Host is the host-sampler sub-state.
type Host struct {
	Pending     bool
	RequestedAt time.Time
	Sample      *hoststats.Sample
	LastError   string
	CPUHistory  []float64
}

// Tables holds every ExtendedTable, constructed once.
type Tables struct {
	Peers        components.ExtendedTable[PeerMetricRow]
	Endorsements components.ExtendedTable[EndorsementRow]
	Application  components.ExtendedTable[ApplicationRow]
	PeerStats    components.ExtendedTable[PeerStatRow]
	Operations   components.ExtendedTable[OperationRow]
}

// UI is the view sub-state.
type UI struct {
	Settings    Settings
	Initialized bool
	Screen      Screen
	// Focus selects the table on screens with more than one.
	Focus    int
	Delta    bool
	Mouse    bool
	Help     bool
	Quitting bool
	Width    int
	Height   int
	Tables   Tables
}

func appendBounded(series []float64, v float64) []float64 {
	series = append(series, v)
	if len(series) > historyLen {
		series = append(series[:0:0], series[len(series)-historyLen:]...)
	}
	return series
}
