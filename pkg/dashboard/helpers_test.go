package dashboard

import (
	"maps"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/automaton"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/hoststats"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/terminal"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// stateOpts compares whole States, unexported table fields included.
var stateOpts = cmp.Options{
	cmp.Exporter(func(reflect.Type) bool { return true }),
	cmpopts.EquateEmpty(),
}

type fakeService struct {
	rpcErr      error
	hostErr     error
	terminalErr error

	requests []rpc.Request
	samples  []hoststats.Request
	commands []terminal.Command
}

func (f *fakeService) SendRPC(req rpc.Request) error {
	if f.rpcErr != nil {
		return f.rpcErr
	}
	f.requests = append(f.requests, req)
	return nil
}

func (f *fakeService) SampleHost(req hoststats.Request) error {
	if f.hostErr != nil {
		return f.hostErr
	}
	f.samples = append(f.samples, req)
	return nil
}

func (f *fakeService) Terminal(cmd terminal.Command) error {
	if f.terminalErr != nil {
		return f.terminalErr
	}
	f.commands = append(f.commands, cmd)
	return nil
}

// last returns the most recent request for target.
func (f *fakeService) last(t *testing.T, target rpc.Target) rpc.Request {
	t.Helper()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].Target == target {
			return f.requests[i]
		}
	}
	t.Fatalf("no %s request sent", target)
	return rpc.Request{}
}

func (f *fakeService) count(target rpc.Target) int {
	n := 0
	for _, r := range f.requests {
		if r.Target == target {
			n++
		}
	}
	return n
}

// clock is a manual clock for the Store.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testSettings() Settings {
	s := DefaultSettings()
	s.Baker = "tz1baker"
	return s
}

func newTestStore(t *testing.T, opts ...automaton.Option[State, Action]) (*Store, *fakeService, *clock) {
	t.Helper()
	svc := &fakeService{}
	clk := &clock{now: t0}
	opts = append([]automaton.Option[State, Action]{automaton.WithClock[State, Action](clk.Now)}, opts...)
	return NewStore(svc, nil, opts...), svc, clk
}

// started returns a store that has processed Init.
func started(t *testing.T, opts ...automaton.Option[State, Action]) (*Store, *fakeService, *clock) {
	t.Helper()
	store, svc, clk := newTestStore(t, opts...)
	if !store.Dispatch(Init{Settings: testSettings()}) {
		t.Fatal("Init disabled")
	}
	return store, svc, clk
}

// snapshot copies a State deeply enough that later reductions cannot alias
// it.
func snapshot(s *State) State {
	c := *s
	c.RPC.Targets = maps.Clone(s.RPC.Targets)
	return c
}

func header(level int32, hash string) rpc.BlockHeader {
	return rpc.BlockHeader{
		Hash:        hash,
		Level:       level,
		Predecessor: "BLpred",
		Timestamp:   t0.Add(-2 * time.Second),
	}
}

// respondHead answers the outstanding head request with h.
func respondHead(t *testing.T, store *Store, svc *fakeService, h rpc.BlockHeader) {
	t.Helper()
	req := svc.last(t, rpc.CurrentHeadHeader)
	store.Dispatch(CurrentHeadHeaderReceived{ID: req.ID, Header: h})
}

func ptr[T any](v T) *T { return &v }
