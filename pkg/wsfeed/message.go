// Package wsfeed reads the node's monitoring WebSocket and turns its frames
// into typed metric messages.
package wsfeed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope types understood by Decode.
const (
	TypeIncomingTransfer       = "incomingTransfer"
	TypeBlockStatus            = "blockStatus"
	TypeBlockApplicationStatus = "blockApplicationStatus"
	TypeChainStatus            = "chainStatus"
	TypePeersMetrics           = "peersMetrics"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// IncomingTransfer is the bootstrap download progress.
type IncomingTransfer struct {
	Eta                  *float64 `json:"eta"`
	CurrentBlockCount    int64    `json:"currentBlockCount"`
	DownloadedBlocks     int64    `json:"downloadedBlocks"`
	RemoteBestKnownLevel int64    `json:"remoteBestKnownBlockLevel"`
	CurrentRate          float64  `json:"currentBlocksPerSecond"`
	AverageRate          float64  `json:"averageBlocksPerSecond"`
}

// BlockStatus is one group of blocks in the download pipeline.
type BlockStatus struct {
	Group            int      `json:"group"`
	NumberOfBlocks   int      `json:"numbersOfBlocks"`
	FinishedBlocks   int      `json:"finishedBlocks"`
	AppliedBlocks    int      `json:"appliedBlocks"`
	DownloadDuration *float64 `json:"downloadDuration"`
}

// BlockRef identifies a block.
type BlockRef struct {
	Hash  string `json:"hash"`
	Level int32  `json:"level"`
}

// BlockApplicationStatus is the block application throughput.
type BlockApplicationStatus struct {
	CurrentApplicationSpeed float64   `json:"currentApplicationSpeed"`
	AverageApplicationSpeed float64   `json:"averageApplicationSpeed"`
	LastAppliedBlock        *BlockRef `json:"lastAppliedBlock"`
}

// CycleStatus is the download progress of one cycle.
type CycleStatus struct {
	Cycle       int32 `json:"cycle"`
	Downloaded  int   `json:"downloaded"`
	Applied     int   `json:"applied"`
	BlockCount  int   `json:"blockCount"`
	IsCompleted bool  `json:"isCompleted"`
}

// ChainStatus is the per-cycle progress of the whole chain.
type ChainStatus struct {
	Chain []CycleStatus `json:"chain"`
}

// PeerMetric is the transfer state of one connected peer.
type PeerMetric struct {
	ID                   string   `json:"id"`
	IPAddress            string   `json:"ipAddress"`
	TransferredBytes     int64    `json:"transferredBytes"`
	AverageTransferSpeed float64  `json:"averageTransferSpeed"`
	CurrentTransferSpeed float64  `json:"currentTransferSpeed"`
	CurrentHeadLevel     *int32   `json:"currentHeadLevel"`
	ConnectedSeconds     *float64 `json:"connectedSeconds"`
}

// Message is one decoded envelope. Payload is one of IncomingTransfer,
// []BlockStatus, BlockApplicationStatus, ChainStatus or []PeerMetric.
type Message struct {
	Type    string
	Payload any
}

// Decode splits a frame into messages. A frame is either a JSON array of
// envelopes or a single envelope. Envelopes of unknown type are returned in
// skipped rather than as an error. A malformed element of an array is left
// out and reported in err while the other elements are still returned; a
// frame that is not JSON at all yields no messages.
func Decode(frame []byte) (msgs []Message, skipped []string, err error) {
	frame = bytes.TrimSpace(frame)
	var raws []json.RawMessage
	if len(frame) > 0 && frame[0] == '[' {
		if err := json.Unmarshal(frame, &raws); err != nil {
			return nil, nil, fmt.Errorf("decode frame: %w", err)
		}
	} else {
		raws = []json.RawMessage{frame}
	}

	var errs []error
	for i, raw := range raws {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			if len(raws) == 1 {
				return nil, nil, fmt.Errorf("decode frame: %w", err)
			}
			errs = append(errs, fmt.Errorf("element %d: %w", i, err))
			continue
		}
		payload, known, err := decodePayload(env)
		if err != nil {
			errs = append(errs, fmt.Errorf("element %d: decode %s: %w", i, env.Type, err))
			continue
		}
		if !known {
			skipped = append(skipped, env.Type)
			continue
		}
		msgs = append(msgs, Message{Type: env.Type, Payload: payload})
	}
	return msgs, skipped, errors.Join(errs...)
}

func decodePayload(env envelope) (any, bool, error) {
	var (
		v   any
		err error
	)
	switch env.Type {
	case TypeIncomingTransfer:
		v, err = unmarshal[IncomingTransfer](env.Payload)
	case TypeBlockStatus:
		v, err = unmarshal[[]BlockStatus](env.Payload)
	case TypeBlockApplicationStatus:
		v, err = unmarshal[BlockApplicationStatus](env.Payload)
	case TypeChainStatus:
		v, err = unmarshal[ChainStatus](env.Payload)
	case TypePeersMetrics:
		v, err = unmarshal[[]PeerMetric](env.Payload)
	default:
		return nil, false, nil
	}
	return v, true, err
}

func unmarshal[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}
