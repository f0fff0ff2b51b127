package rpc

import (
	"net/url"
	"strconv"
)

// Target names one RPC endpoint the dashboard polls.
type Target int

const (
	CurrentHeadHeader Target = iota
	EndorsementRights
	EndorsementStatuses
	OperationsStats
	BakingRights
	ApplicationStats
	PeerStats
	NetworkConstants
	CurrentHeadMetadata
	BestRemoteLevel

	targetCount
)

var targetNames = [targetCount]string{
	CurrentHeadHeader:   "current_head_header",
	EndorsementRights:   "endorsement_rights",
	EndorsementStatuses: "endorsement_statuses",
	OperationsStats:     "operations_stats",
	BakingRights:        "baking_rights",
	ApplicationStats:    "application_stats",
	PeerStats:           "peer_stats",
	NetworkConstants:    "network_constants",
	CurrentHeadMetadata: "current_head_metadata",
	BestRemoteLevel:     "best_remote_level",
}

var targetPaths = [targetCount]string{
	CurrentHeadHeader:   "/chains/main/blocks/head/header",
	EndorsementRights:   "/chains/main/blocks/head/helpers/endorsing_rights",
	EndorsementStatuses: "/dev/shell/automaton/endorsements_status",
	OperationsStats:     "/dev/shell/automaton/mempool/operation_stats",
	BakingRights:        "/chains/main/blocks/head/helpers/baking_rights",
	ApplicationStats:    "/dev/shell/automaton/stats/current_head/application",
	PeerStats:           "/dev/shell/automaton/stats/current_head/peers",
	NetworkConstants:    "/chains/main/blocks/head/context/constants",
	CurrentHeadMetadata: "/chains/main/blocks/head/metadata",
	BestRemoteLevel:     "/dev/shell/automaton/best_remote_level",
}

// Targets lists every target in declaration order.
func Targets() []Target {
	out := make([]Target, 0, targetCount)
	for t := Target(0); t < targetCount; t++ {
		out = append(out, t)
	}
	return out
}

// ParseTarget is the inverse of Target.String.
func ParseTarget(s string) (Target, bool) {
	for t, name := range targetNames {
		if name == s {
			return Target(t), true
		}
	}
	return 0, false
}

func (t Target) String() string {
	if t < 0 || t >= targetCount {
		return "target(" + strconv.Itoa(int(t)) + ")"
	}
	return targetNames[t]
}

// MarshalText encodes the target by name so logs stay readable.
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Target) UnmarshalText(b []byte) error {
	v, ok := ParseTarget(string(b))
	if !ok {
		return &Error{Kind: KindProtocol, Target: -1, Err: errUnknownTarget(string(b))}
	}
	*t = v
	return nil
}

// Params carries the query inputs a target may need. Unused fields are
// ignored by targets that do not take them.
type Params struct {
	Level    int32  `json:"level,omitempty"`
	Block    string `json:"block,omitempty"`
	Delegate string `json:"delegate,omitempty"`
}

// Path returns the request path and query for t.
func (t Target) Path(p Params) string {
	if t < 0 || t >= targetCount {
		return ""
	}
	q := url.Values{}
	switch t {
	case EndorsementRights:
		q.Set("level", strconv.FormatInt(int64(p.Level), 10))
		if p.Delegate != "" {
			q.Set("delegate", p.Delegate)
		}
	case EndorsementStatuses:
		q.Set("block", p.Block)
	case BakingRights:
		q.Set("max_round", "2")
		if p.Delegate != "" {
			q.Set("delegate", p.Delegate)
		}
	case ApplicationStats, PeerStats:
		q.Set("level", strconv.FormatInt(int64(p.Level), 10))
	}
	if len(q) == 0 {
		return targetPaths[t]
	}
	return targetPaths[t] + "?" + q.Encode()
}
