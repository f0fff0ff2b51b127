package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/hoststats"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/rpc"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/terminal"
	"gitlab.com/tinyland/lab/chain-pulse/pkg/worker"
)

// --- Registry Tests ---

func idle(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewWorker("rpc", idle)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	got, ok := r.Get("rpc")
	if !ok || got.Name() != "rpc" {
		t.Fatalf("Get(rpc) = %v, %v", got, ok)
	}
	st, ok := r.Status("rpc")
	if !ok || st.Running {
		t.Errorf("Status(rpc) = %+v, %v", st, ok)
	}
}

func TestRegistryDuplicateNameError(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(NewWorker("dup", idle))
	if err := r.Register(NewWorker("dup", idle)); err == nil {
		t.Fatal("second Register should have returned an error for duplicate name")
	}
}

func TestRegistryListSorted(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"ws", "host", "rpc"} {
		_ = r.Register(NewWorker(n, idle))
	}
	names := r.List()
	want := []string{"host", "rpc", "ws"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("List() = %v, want %v", names, want)
		}
	}
	if len(r.AllStatus()) != 3 {
		t.Errorf("AllStatus has %d entries, want 3", len(r.AllStatus()))
	}
}

func TestRegistryStatusMissing(t *testing.T) {
	if _, ok := NewRegistry().Status("missing"); ok {
		t.Fatal("Status should return false for an unregistered worker")
	}
}

// --- Service Tests ---

func TestCapacityDefaults(t *testing.T) {
	s := New(Capacities{}, nil)
	if got := s.RPC().Cap(); got != 4096 {
		t.Errorf("RPC capacity = %d, want 4096", got)
	}
	if got := s.Host().Cap(); got != 16 {
		t.Errorf("host capacity = %d, want 16", got)
	}
}

func TestSendRPCBackpressure(t *testing.T) {
	s := New(Capacities{RPC: 2}, nil)
	for i := 0; i < 2; i++ {
		if err := s.SendRPC(rpc.NewRequest(rpc.OperationsStats, rpc.Params{})); err != nil {
			t.Fatalf("SendRPC %d: %v", i, err)
		}
	}
	if err := s.SendRPC(rpc.NewRequest(rpc.OperationsStats, rpc.Params{})); !errors.Is(err, worker.ErrFull) {
		t.Errorf("third SendRPC err = %v, want ErrFull", err)
	}
}

func TestTerminalQueueOrder(t *testing.T) {
	s := New(Capacities{}, nil)
	cmds := []terminal.Command{terminal.DisableMouse, terminal.LeaveAltScreen, terminal.Quit}
	for _, c := range cmds {
		if err := s.Terminal(c); err != nil {
			t.Fatalf("Terminal(%v): %v", c, err)
		}
	}
	got := s.TerminalCommands().Drain()
	if len(got) != len(cmds) {
		t.Fatalf("drained %d commands, want %d", len(got), len(cmds))
	}
	for i := range cmds {
		if got[i] != cmds[i] {
			t.Errorf("command %d = %v, want %v", i, got[i], cmds[i])
		}
	}
}

func TestRunTracksWorkerLifecycle(t *testing.T) {
	s := New(Capacities{}, nil)
	started := make(chan struct{})
	_ = s.Register(NewWorker("host", func(ctx context.Context) error {
		close(started)
		for {
			req, err := s.HostResponder().Recv(ctx)
			if err != nil {
				return nil
			}
			_ = s.HostResponder().Send(ctx, hoststats.Response{RequestedAt: req.RequestedAt})
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	<-started
	if err := s.SampleHost(hoststats.Request{RequestedAt: time.Unix(5, 0)}); err != nil {
		t.Fatalf("SampleHost: %v", err)
	}
	select {
	case resp := <-s.Host().Responses():
		if resp.RequestedAt.Unix() != 5 {
			t.Errorf("RequestedAt = %v", resp.RequestedAt)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no host response")
	}
	if st, _ := s.Registry().Status("host"); !st.Running {
		t.Error("worker not marked running")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if st, _ := s.Registry().Status("host"); st.Running || st.Stopped.IsZero() {
		t.Errorf("status after stop = %+v", st)
	}
}

func TestRunFirstErrorCancelsOthers(t *testing.T) {
	s := New(Capacities{}, nil)
	boom := errors.New("boom")
	_ = s.Register(NewWorker("failing", func(context.Context) error { return boom }))
	_ = s.Register(NewWorker("idle", idle))

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Errorf("Run err = %v, want boom", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	if st, _ := s.Registry().Status("failing"); !errors.Is(st.Err, boom) {
		t.Errorf("failing status err = %v", st.Err)
	}
	if st, _ := s.Registry().Status("idle"); st.Err != nil {
		t.Errorf("idle worker err = %v, want nil after cancellation", st.Err)
	}
}

func TestCloseEndsWorkers(t *testing.T) {
	s := New(Capacities{}, nil)
	_ = s.Register(NewWorker("rpc", func(ctx context.Context) error {
		_, err := s.RPCResponder().Recv(ctx)
		if errors.Is(err, worker.ErrDisconnected) {
			return nil
		}
		return err
	}))
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	s.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not stop after Close")
	}
}
