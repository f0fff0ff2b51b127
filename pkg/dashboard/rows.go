package dashboard

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/components"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/wsfeed"
)

// ---------------------------------------------------------------------------
// Peers metrics (Synchronization screen)
// ---------------------------------------------------------------------------

var (
	peerMetricHeaders = []string{"Address", "Peer ID", "Head", "Transferred", "Avg speed", "Speed", "Connected"}
	peerMetricWidths  = []int{21, 14, 9, 12, 11, 11, 10}
)

// PeerMetricRow is one connected peer from the peersMetrics feed.
type PeerMetricRow struct {
	Metric wsfeed.PeerMetric
}

func (r PeerMetricRow) Cells(bool) []components.Cell {
	m := r.Metric
	connected := components.Missing()
	if m.ConnectedSeconds != nil {
		d := time.Duration(*m.ConnectedSeconds * float64(time.Second)).Truncate(time.Second)
		connected = components.Cell{Text: d.String()}
	}
	return []components.Cell{
		textCell(m.IPAddress),
		{Text: ShortHash(m.ID), Style: components.StyleMuted},
		intCell(m.CurrentHeadLevel),
		{Text: FormatBytes(float64(m.TransferredBytes))},
		{Text: FormatBytes(m.AverageTransferSpeed) + "/s"},
		{Text: FormatBytes(m.CurrentTransferSpeed) + "/s"},
		connected,
	}
}

func (r PeerMetricRow) SortKey(column int, _ bool) components.Key {
	m := r.Metric
	switch column {
	case 0:
		return components.StringKey(m.IPAddress)
	case 1:
		return components.StringKey(m.ID)
	case 2:
		return components.OptionalKey(m.CurrentHeadLevel)
	case 3:
		return components.NumberKey(float64(m.TransferredBytes))
	case 4:
		return components.NumberKey(m.AverageTransferSpeed)
	case 5:
		return components.NumberKey(m.CurrentTransferSpeed)
	case 6:
		return components.OptionalKey(m.ConnectedSeconds)
	}
	return components.MissingKey()
}

func peerMetricRows(peers []wsfeed.PeerMetric) []PeerMetricRow {
	rows := make([]PeerMetricRow, 0, len(peers))
	for _, p := range peers {
		rows = append(rows, PeerMetricRow{Metric: p})
	}
	slices.SortStableFunc(rows, func(a, b PeerMetricRow) int {
		return strings.Compare(a.Metric.IPAddress, b.Metric.IPAddress)
	})
	return rows
}

// ---------------------------------------------------------------------------
// Endorsements
// ---------------------------------------------------------------------------

var (
	endorsementHeaders = []string{"Slot", "Baker", "Power", "Status", "Received", "Decoded", "Prechecked", "Applied", "Broadcast"}
	endorsementWidths  = []int{5, 14, 6, 11, 10, 10, 11, 10, 10}
)

// Endorsement states reported by the node, in pipeline order.
const (
	StateMissing    = "missing"
	StateReceived   = "received"
	StateDecoded    = "decoded"
	StatePrechecked = "prechecked"
	StateApplied    = "applied"
	StateBroadcast  = "broadcast"
)

// EndorsementRow joins one delegate's endorsing right with the status of its
// endorsement. Times are already relative to the block receive time.
type EndorsementRow struct {
	Slot       int
	Delegate   string
	Power      int
	Own        bool
	State      string
	Received   *int64
	Decoded    *int64
	Prechecked *int64
	Applied    *int64
	Broadcast  *int64
}

func (r EndorsementRow) times(delta bool) []*int64 {
	return timeline(0, delta, r.Received, r.Decoded, r.Prechecked, r.Applied, r.Broadcast)
}

func (r EndorsementRow) Cells(delta bool) []components.Cell {
	baker := components.Cell{Text: ShortHash(r.Delegate)}
	if r.Own {
		baker.Style = components.StyleAccent
	}
	cells := []components.Cell{
		{Text: strconv.Itoa(r.Slot)},
		baker,
		{Text: strconv.Itoa(r.Power)},
		{Text: r.State, Style: stateStyle(r.State)},
	}
	for _, t := range r.times(delta) {
		cells = append(cells, timingCell(t))
	}
	return cells
}

func (r EndorsementRow) SortKey(column int, delta bool) components.Key {
	switch column {
	case 0:
		return components.NumberKey(float64(r.Slot))
	case 1:
		return components.StringKey(r.Delegate)
	case 2:
		return components.NumberKey(float64(r.Power))
	case 3:
		return components.NumberKey(float64(stateRank(r.State)))
	}
	if times := r.times(delta); column-4 < len(times) {
		return components.OptionalKey(times[column-4])
	}
	return components.MissingKey()
}

func stateRank(s string) int {
	switch s {
	case StateReceived:
		return 1
	case StateDecoded:
		return 2
	case StatePrechecked:
		return 3
	case StateApplied:
		return 4
	case StateBroadcast:
		return 5
	}
	return 0
}

func stateStyle(s string) components.CellStyle {
	switch stateRank(s) {
	case 0:
		return components.StyleBad
	case 4, 5:
		return components.StyleGood
	}
	return components.StyleWarn
}

// endorsementRows joins rights at level with statuses. Rights at other
// levels are ignored; statuses without a right are dropped.
func endorsementRows(level int32, rights rpc.EndorsingRights, statuses rpc.EndorsementStatusMap, baker string) []EndorsementRow {
	var rows []EndorsementRow
	for _, lr := range rights {
		if lr.Level != level {
			continue
		}
		for _, d := range lr.Delegates {
			row := EndorsementRow{
				Slot:     d.FirstSlot,
				Delegate: d.Delegate,
				Power:    d.EndorsingPower,
				Own:      baker != "" && d.Delegate == baker,
				State:    StateMissing,
			}
			if st, ok := statuses[strconv.Itoa(d.FirstSlot)]; ok {
				if st.State != "" {
					row.State = st.State
				}
				row.Received = st.ReceivedTime
				row.Decoded = st.DecodedTime
				row.Prechecked = st.PrecheckedTime
				row.Applied = st.AppliedTime
				row.Broadcast = st.BroadcastTime
			}
			rows = append(rows, row)
		}
	}
	slices.SortStableFunc(rows, func(a, b EndorsementRow) int { return a.Slot - b.Slot })
	return rows
}

func summarize(rows []EndorsementRow) EndorsementSummary {
	var s EndorsementSummary
	for _, r := range rows {
		s.Power += r.Power
		switch r.State {
		case StateReceived:
			s.Received++
		case StateDecoded:
			s.Decoded++
		case StatePrechecked:
			s.Prechecked++
		case StateApplied:
			s.Applied++
		case StateBroadcast:
			s.Broadcast++
		default:
			s.Missing++
		}
		if stateRank(r.State) > 0 {
			s.PowerSeen += r.Power
		}
	}
	return s
}

// ---------------------------------------------------------------------------
// Block application (Baking screen)
// ---------------------------------------------------------------------------

var (
	applicationHeaders = []string{"Block", "Baker", "Round", "Received", "Download", "Load", "Apply", "Store", "Send"}
	applicationWidths  = []int{14, 14, 6, 10, 10, 10, 10, 10, 10}
)

// ApplicationRow is the node's application timing of one block. Phase times
// are relative to the receive timestamp.
type ApplicationRow struct {
	Stat rpc.BlockApplication
}

func (r ApplicationRow) times(delta bool) []*int64 {
	s := r.Stat
	return timeline(s.ReceiveTimestamp, delta, s.DownloadDataEnd, s.LoadDataEnd, s.ApplyBlockEnd, s.StoreResultEnd, s.SendEnd)
}

func (r ApplicationRow) latency() int64 {
	return r.Stat.ReceiveTimestamp - r.Stat.BlockTimestamp
}

func (r ApplicationRow) Cells(delta bool) []components.Cell {
	latency := r.latency()
	cells := []components.Cell{
		{Text: ShortHash(r.Stat.BlockHash)},
		textCell(ShortHash(r.Stat.Baker)),
		intCell(r.Stat.BakerPriority),
		timingCell(&latency),
	}
	for _, t := range r.times(delta) {
		cells = append(cells, timingCell(t))
	}
	return cells
}

func (r ApplicationRow) SortKey(column int, delta bool) components.Key {
	switch column {
	case 0:
		return components.StringKey(r.Stat.BlockHash)
	case 1:
		return components.StringKey(r.Stat.Baker)
	case 2:
		return components.OptionalKey(r.Stat.BakerPriority)
	case 3:
		return components.NumberKey(float64(r.latency()))
	}
	if times := r.times(delta); column-4 < len(times) {
		return components.OptionalKey(times[column-4])
	}
	return components.MissingKey()
}

func applicationRows(stats rpc.ApplicationStatsList) []ApplicationRow {
	rows := make([]ApplicationRow, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, ApplicationRow{Stat: s})
	}
	slices.SortStableFunc(rows, func(a, b ApplicationRow) int {
		return strings.Compare(a.Stat.BlockHash, b.Stat.BlockHash)
	})
	return rows
}

// ---------------------------------------------------------------------------
// Per-peer head exchange (Baking screen)
// ---------------------------------------------------------------------------

var (
	peerStatHeaders = []string{"Address", "Node", "Head recv", "Send start", "Send end", "Get ops", "Ops start", "Ops end"}
	peerStatWidths  = []int{21, 14, 10, 11, 10, 10, 10, 10}
)

// PeerStatRow is the head exchange timing with one peer. Ref is the zero
// point for absolute display.
type PeerStatRow struct {
	Address string
	Ref     int64
	Stats   rpc.PeerBlockStats
}

func (r PeerStatRow) times(delta bool) []*int64 {
	s := r.Stats
	return timeline(r.Ref, delta, s.HeadRecv, s.HeadSendStart, s.HeadSendEnd, s.GetOpsRecv, s.OpsSendStart, s.OpsSendEnd)
}

func (r PeerStatRow) Cells(delta bool) []components.Cell {
	cells := []components.Cell{
		textCell(r.Address),
		{Text: ShortHash(r.Stats.NodeID), Style: components.StyleMuted},
	}
	for _, t := range r.times(delta) {
		cells = append(cells, timingCell(t))
	}
	return cells
}

func (r PeerStatRow) SortKey(column int, delta bool) components.Key {
	switch column {
	case 0:
		return components.StringKey(r.Address)
	case 1:
		return components.StringKey(r.Stats.NodeID)
	}
	if times := r.times(delta); column >= 2 && column-2 < len(times) {
		return components.OptionalKey(times[column-2])
	}
	return components.MissingKey()
}

func peerStatRows(stats rpc.PeerStatsMap, ref int64) []PeerStatRow {
	rows := make([]PeerStatRow, 0, len(stats))
	for addr, s := range stats {
		rows = append(rows, PeerStatRow{Address: addr, Ref: ref, Stats: s})
	}
	slices.SortFunc(rows, func(a, b PeerStatRow) int { return strings.Compare(a.Address, b.Address) })
	return rows
}

// ---------------------------------------------------------------------------
// Mempool operations
// ---------------------------------------------------------------------------

var (
	operationHeaders = []string{"Hash", "Kind", "First seen", "Validation", "Validated", "Result", "From", "To"}
	operationWidths  = []int{14, 12, 11, 11, 10, 12, 5, 5}
)

// OperationRow is one mempool operation. Times are relative to the block the
// operation was first seen on top of, or to its first sighting.
type OperationRow struct {
	Hash string
	Stat rpc.OperationStat
}

func (r OperationRow) times(delta bool) []*int64 {
	s := r.Stat
	ref := s.FirstBlockTimestamp
	if ref == nil {
		ref = s.MinTime
	}
	if ref == nil {
		return make([]*int64, 3)
	}
	var validated *int64
	if s.ValidationResult != nil {
		validated = &s.ValidationResult.Time
	}
	return timeline(*ref, delta, s.MinTime, s.ValidationStarted, validated)
}

func (r OperationRow) peers() (from, to int) {
	for _, n := range r.Stat.Nodes {
		if len(n.Received) > 0 {
			from++
		}
		if len(n.Sent) > 0 {
			to++
		}
	}
	return from, to
}

func (r OperationRow) result() string {
	if r.Stat.ValidationResult == nil {
		return ""
	}
	return r.Stat.ValidationResult.Result
}

func (r OperationRow) Cells(delta bool) []components.Cell {
	cells := []components.Cell{
		{Text: ShortHash(r.Hash)},
		textCell(r.Stat.Kind),
	}
	for _, t := range r.times(delta) {
		cells = append(cells, timingCell(t))
	}
	result := textCell(r.result())
	switch result.Text {
	case "applied":
		result.Style = components.StyleGood
	case "refused", "branch_refused", "branch_delayed":
		result.Style = components.StyleBad
	}
	from, to := r.peers()
	return append(cells, result,
		components.Cell{Text: strconv.Itoa(from), Align: components.AlignRight},
		components.Cell{Text: strconv.Itoa(to), Align: components.AlignRight},
	)
}

func (r OperationRow) SortKey(column int, delta bool) components.Key {
	from, to := r.peers()
	switch column {
	case 0:
		return components.StringKey(r.Hash)
	case 1:
		return components.StringKey(r.Stat.Kind)
	case 2, 3, 4:
		return components.OptionalKey(r.times(delta)[column-2])
	case 5:
		if res := r.result(); res != "" {
			return components.StringKey(res)
		}
	case 6:
		return components.NumberKey(float64(from))
	case 7:
		return components.NumberKey(float64(to))
	}
	return components.MissingKey()
}

func operationRows(stats rpc.OperationStatsMap) []OperationRow {
	rows := make([]OperationRow, 0, len(stats))
	for hash, s := range stats {
		rows = append(rows, OperationRow{Hash: hash, Stat: s})
	}
	slices.SortFunc(rows, func(a, b OperationRow) int { return strings.Compare(a.Hash, b.Hash) })
	return rows
}
