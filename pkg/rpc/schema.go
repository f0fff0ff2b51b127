package rpc

import "time"

// BlockHeader is the head header. Only the fields the dashboard reads are
// decoded.
type BlockHeader struct {
	Hash         string    `json:"hash"`
	Level        int32     `json:"level"`
	Proto        int       `json:"proto"`
	Predecessor  string    `json:"predecessor"`
	Timestamp    time.Time `json:"timestamp"`
	PayloadRound int       `json:"payload_round"`
}

// DelegateRight is one delegate's endorsing slot allocation at a level.
type DelegateRight struct {
	Delegate       string `json:"delegate"`
	FirstSlot      int    `json:"first_slot"`
	EndorsingPower int    `json:"endorsing_power"`
}

// LevelRights groups endorsing rights by level.
type LevelRights struct {
	Level     int32           `json:"level"`
	Delegates []DelegateRight `json:"delegates"`
}

// EndorsingRights is the endorsing_rights answer.
type EndorsingRights []LevelRights

// EndorsementStatus is the node's view of one endorsement, keyed by slot.
// Times are nanoseconds relative to the block receive time; nil means the
// phase was not reached.
type EndorsementStatus struct {
	Kind                 string `json:"kind"`
	State                string `json:"state"`
	Branch               string `json:"branch"`
	Level                int32  `json:"level"`
	Round                int    `json:"round"`
	BlockTimestamp       int64  `json:"block_timestamp"`
	ReceivedTime         *int64 `json:"received_time"`
	ReceivedContentsTime *int64 `json:"received_contents_time"`
	DecodedTime          *int64 `json:"decoded_time"`
	PrecheckedTime       *int64 `json:"prechecked_time"`
	AppliedTime          *int64 `json:"applied_time"`
	BroadcastTime        *int64 `json:"broadcast_time"`
}

// EndorsementStatusMap maps first slot (as a decimal string) to status.
type EndorsementStatusMap map[string]EndorsementStatus

// ValidationResult is the mempool classification of an operation.
type ValidationResult struct {
	Time                  int64  `json:"time"`
	Result                string `json:"result"`
	PrevalidationDuration *int64 `json:"prevalidation_duration"`
	ValidationDuration    *int64 `json:"validation_duration"`
}

// OperationNodeStats summarises one peer's traffic for an operation.
type OperationNodeStats struct {
	Received []int64 `json:"received"`
	Sent     []int64 `json:"sent"`
}

// OperationStat is one mempool operation. Times are absolute nanoseconds.
type OperationStat struct {
	Kind                string                        `json:"kind"`
	MinTime             *int64                        `json:"min_time"`
	FirstBlockTimestamp *int64                        `json:"first_block_timestamp"`
	ValidationStarted   *int64                        `json:"validation_started"`
	ValidationResult    *ValidationResult             `json:"validation_result"`
	Nodes               map[string]OperationNodeStats `json:"nodes"`
}

// OperationStatsMap maps operation hash to statistics.
type OperationStatsMap map[string]OperationStat

// BakingRight is one baking slot.
type BakingRight struct {
	Level         int32      `json:"level"`
	Delegate      string     `json:"delegate"`
	Round         int        `json:"round"`
	EstimatedTime *time.Time `json:"estimated_time"`
}

// BakingRightsList is the baking_rights answer.
type BakingRightsList []BakingRight

// BlockApplication is the node's timing for applying one block. Phase times
// are absolute nanoseconds; nil means the phase was not reached.
type BlockApplication struct {
	BlockHash         string `json:"block_hash"`
	BlockTimestamp    int64  `json:"block_timestamp"`
	ReceiveTimestamp  int64  `json:"receive_timestamp"`
	Baker             string `json:"baker"`
	BakerPriority     *int   `json:"baker_priority"`
	DownloadDataStart *int64 `json:"download_data_start"`
	DownloadDataEnd   *int64 `json:"download_data_end"`
	LoadDataStart     *int64 `json:"load_data_start"`
	LoadDataEnd       *int64 `json:"load_data_end"`
	ApplyBlockStart   *int64 `json:"apply_block_start"`
	ApplyBlockEnd     *int64 `json:"apply_block_end"`
	StoreResultStart  *int64 `json:"store_result_start"`
	StoreResultEnd    *int64 `json:"store_result_end"`
	SendStart         *int64 `json:"send_start"`
	SendEnd           *int64 `json:"send_end"`
}

// ApplicationStatsList is the application statistics answer.
type ApplicationStatsList []BlockApplication

// PeerBlockStats is the head exchange timing with one peer. Times are
// absolute nanoseconds.
type PeerBlockStats struct {
	NodeID        string `json:"node_id"`
	HeadRecv      *int64 `json:"head_recv"`
	HeadSendStart *int64 `json:"head_send_start"`
	HeadSendEnd   *int64 `json:"head_send_end"`
	GetOpsRecv    *int64 `json:"get_ops_recv"`
	OpsSendStart  *int64 `json:"ops_send_start"`
	OpsSendEnd    *int64 `json:"ops_send_end"`
}

// PeerStatsMap maps peer address to head exchange timing.
type PeerStatsMap map[string]PeerBlockStats

// Constants are the protocol parameters the dashboard needs.
type Constants struct {
	PreservedCycles        int   `json:"preserved_cycles"`
	BlocksPerCycle         int32 `json:"blocks_per_cycle"`
	ConsensusCommitteeSize int   `json:"consensus_committee_size"`
	MinimalBlockDelay      int64 `json:"minimal_block_delay,string"`
	DelayIncrementPerRound int64 `json:"delay_increment_per_round,string"`
	ConsensusThreshold     int   `json:"consensus_threshold"`
}

// LevelInfo places a block inside its cycle.
type LevelInfo struct {
	Level              int32 `json:"level"`
	Cycle              int32 `json:"cycle"`
	CyclePosition      int32 `json:"cycle_position"`
	ExpectedCommitment bool  `json:"expected_commitment"`
}

// HeadMetadata is the subset of head metadata the dashboard reads.
type HeadMetadata struct {
	Protocol     string    `json:"protocol"`
	NextProtocol string    `json:"next_protocol"`
	LevelInfo    LevelInfo `json:"level_info"`
}

// RemoteLevel is the best level advertised by peers. Nil when no peer has
// reported yet.
type RemoteLevel struct {
	Level *int32
}
