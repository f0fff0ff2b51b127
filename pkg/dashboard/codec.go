package dashboard

import (
	"encoding/json"
	"fmt"
)

// Codec encodes actions for the action log. Every Kind round-trips.
type Codec struct{}

func (Codec) Encode(a Action) (string, []byte, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", a.Kind(), err)
	}
	return string(a.Kind()), payload, nil
}

func (Codec) Decode(kind string, payload []byte) (Action, error) {
	dec, ok := decoders[Kind(kind)]
	if !ok {
		return nil, fmt.Errorf("unknown action kind %q", kind)
	}
	a, err := dec(payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return a, nil
}

func decodeAs[T Action](payload []byte) (Action, error) {
	var v T
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

var decoders = map[Kind]func([]byte) (Action, error){
	KindInit:                   decodeAs[Init],
	KindTick:                   decodeAs[Tick],
	KindQuit:                   decodeAs[Quit],
	KindResize:                 decodeAs[Resize],
	KindChangeScreen:           decodeAs[ChangeScreen],
	KindNextScreen:             decodeAs[NextScreen],
	KindColumnNext:             decodeAs[ColumnNext],
	KindColumnPrevious:         decodeAs[ColumnPrevious],
	KindSelectColumn:           decodeAs[SelectColumn],
	KindRowNext:                decodeAs[RowNext],
	KindRowPrevious:            decodeAs[RowPrevious],
	KindCycleSort:              decodeAs[CycleSort],
	KindToggleDelta:            decodeAs[ToggleDelta],
	KindSwitchFocus:            decodeAs[SwitchFocus],
	KindToggleMouse:            decodeAs[ToggleMouse],
	KindToggleHelp:             decodeAs[ToggleHelp],
	KindRPCRequested:           decodeAs[RPCRequested],
	KindRequestFailed:          decodeAs[RequestFailed],
	KindHeadHeaderReceived:     decodeAs[CurrentHeadHeaderReceived],
	KindHeadChanged:            decodeAs[CurrentHeadChanged],
	KindEndorsementRights:      decodeAs[EndorsementRightsReceived],
	KindEndorsementStatuses:    decodeAs[EndorsementStatusesReceived],
	KindOperationsStats:        decodeAs[OperationsStatsReceived],
	KindBakingRights:           decodeAs[BakingRightsReceived],
	KindApplicationStats:       decodeAs[ApplicationStatsReceived],
	KindPeerStats:              decodeAs[PeerStatsReceived],
	KindNetworkConstants:       decodeAs[NetworkConstantsReceived],
	KindHeadMetadata:           decodeAs[CurrentHeadMetadataReceived],
	KindBestRemoteLevel:        decodeAs[BestRemoteLevelReceived],
	KindIncomingTransfer:       decodeAs[IncomingTransferReceived],
	KindBlockStatus:            decodeAs[BlockStatusReceived],
	KindBlockApplicationStatus: decodeAs[BlockApplicationStatusReceived],
	KindChainStatus:            decodeAs[ChainStatusReceived],
	KindPeersMetrics:           decodeAs[PeersMetricsReceived],
	KindHostSampleRequested:    decodeAs[HostSampleRequested],
	KindHostStats:              decodeAs[HostStatsReceived],
}
