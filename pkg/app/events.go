// Package app hosts the dashboard Store inside a bubbletea program. Terminal
// input, worker responses and the tick timer become dashboard actions; the
// terminal commands the Store emits become bubbletea commands.
package app

import (
	"time"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/hoststats"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/wsfeed"
)

// TickEvent is sent periodically to drive polling.
type TickEvent struct {
	Time time.Time
}

// RPCResponseEvent carries one RPC worker response into the update loop.
type RPCResponseEvent struct {
	Response rpc.Response
}

// HostSampleEvent carries one host sampler response.
type HostSampleEvent struct {
	Response hoststats.Response
}

// FeedBatchEvent carries one decoded WebSocket frame.
type FeedBatchEvent struct {
	Batch wsfeed.Batch
}

// ChannelClosedEvent reports that a worker closed its side of a channel.
// Its waiter is not re-armed.
type ChannelClosedEvent struct {
	Source string
}
