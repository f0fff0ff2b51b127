// Package service bundles the worker channels the automaton talks to and
// owns the goroutines on the other end of them.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/hoststats"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/terminal"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/worker"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/wsfeed"
)

// Capacities sizes every channel. Zero values take the defaults.
type Capacities struct {
	RPC      int
	Terminal int
	WS       int
	Host     int
}

// DefaultCapacities are the queue bounds used when none are configured.
var DefaultCapacities = Capacities{RPC: 4096, Terminal: 100, WS: 256, Host: 16}

func (c Capacities) withDefaults() Capacities {
	if c.RPC <= 0 {
		c.RPC = DefaultCapacities.RPC
	}
	if c.Terminal <= 0 {
		c.Terminal = DefaultCapacities.Terminal
	}
	if c.WS <= 0 {
		c.WS = DefaultCapacities.WS
	}
	if c.Host <= 0 {
		c.Host = DefaultCapacities.Host
	}
	return c
}

// Service holds the requester halves used by effects and the responder
// halves handed to workers.
type Service struct {
	rpc        *worker.Requester[rpc.Request, rpc.Response]
	rpcWorker  *worker.Responder[rpc.Request, rpc.Response]
	host       *worker.Requester[hoststats.Request, hoststats.Response]
	hostWorker *worker.Responder[hoststats.Request, hoststats.Response]
	ws         *worker.Queue[wsfeed.Batch]
	terminal   *worker.Queue[terminal.Command]

	registry *Registry
	logger   *slog.Logger
	now      func() time.Time
}

// New creates every channel with the given capacities.
func New(caps Capacities, logger *slog.Logger) *Service {
	caps = caps.withDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{
		ws:       worker.NewQueue[wsfeed.Batch](caps.WS),
		terminal: worker.NewQueue[terminal.Command](caps.Terminal),
		registry: NewRegistry(),
		logger:   logger,
		now:      time.Now,
	}
	s.rpc, s.rpcWorker = worker.NewChannel[rpc.Request, rpc.Response](caps.RPC, caps.RPC)
	s.host, s.hostWorker = worker.NewChannel[hoststats.Request, hoststats.Response](caps.Host, caps.Host)
	return s
}

// SendRPC enqueues an RPC request without blocking.
func (s *Service) SendRPC(req rpc.Request) error {
	return s.rpc.TrySend(req)
}

// SampleHost enqueues a host sample request without blocking.
func (s *Service) SampleHost(req hoststats.Request) error {
	return s.host.TrySend(req)
}

// Terminal enqueues a terminal mode command without blocking.
func (s *Service) Terminal(cmd terminal.Command) error {
	return s.terminal.TrySend(cmd)
}

// RPC is the requester half read by the UI loop.
func (s *Service) RPC() *worker.Requester[rpc.Request, rpc.Response] { return s.rpc }

// RPCResponder is the half served by the RPC fetcher.
func (s *Service) RPCResponder() *worker.Responder[rpc.Request, rpc.Response] { return s.rpcWorker }

// Host is the requester half read by the UI loop.
func (s *Service) Host() *worker.Requester[hoststats.Request, hoststats.Response] { return s.host }

// HostResponder is the half served by the host sampler.
func (s *Service) HostResponder() *worker.Responder[hoststats.Request, hoststats.Response] {
	return s.hostWorker
}

// WS is the queue the WebSocket reader fills.
func (s *Service) WS() *worker.Queue[wsfeed.Batch] { return s.ws }

// TerminalCommands is the queue the UI host drains.
func (s *Service) TerminalCommands() *worker.Queue[terminal.Command] { return s.terminal }

// Registry exposes worker statuses.
func (s *Service) Registry() *Registry { return s.registry }

// Register adds a worker to be started by Run.
func (s *Service) Register(w Worker) error {
	return s.registry.Register(w)
}

// Run starts every registered worker and blocks until all have returned. The
// first worker error cancels the others.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range s.registry.List() {
		w, _ := s.registry.Get(name)
		g.Go(func() error {
			s.registry.updateStatus(name, func(st *WorkerStatus) {
				st.Running = true
				st.Started = s.now()
				st.Err = nil
			})
			s.logger.Info("worker started", "worker", name)

			err := w.Run(ctx)
			if errors.Is(err, context.Canceled) {
				err = nil
			}

			s.registry.updateStatus(name, func(st *WorkerStatus) {
				st.Running = false
				st.Stopped = s.now()
				st.Err = err
			})
			if err != nil {
				s.logger.Error("worker failed", "worker", name, "error", err)
				return err
			}
			s.logger.Info("worker stopped", "worker", name)
			return nil
		})
	}
	return g.Wait()
}

// Close drops the requester halves and queues, which ends every worker loop.
func (s *Service) Close() {
	s.rpc.Close()
	s.host.Close()
	s.ws.Close()
	s.terminal.Close()
}
