package dashboard

import (
	"gitlab.com/tinyland/lab/chain-pulse/pkg/hoststats"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/terminal"
)

// Service is everything effects may ask of the outside world. Every method
// is non-blocking and fails with worker.ErrFull or worker.ErrDisconnected
// instead of waiting.
type Service interface {
	SendRPC(req rpc.Request) error
	SampleHost(req hoststats.Request) error
	Terminal(cmd terminal.Command) error
}
