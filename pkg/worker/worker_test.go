package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// --- Channel Tests ---

func TestChannelRoundTrip(t *testing.T) {
	rq, rs := NewChannel[int, string](4, 4)
	ctx := context.Background()

	if err := rq.TrySend(7); err != nil {
		t.Fatalf("TrySend: %v", err)
	}

	req, err := rs.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if req != 7 {
		t.Errorf("Recv = %d, want 7", req)
	}

	if err := rs.Send(ctx, "seven"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	resp, ok, err := rq.TryRecv()
	if err != nil || !ok {
		t.Fatalf("TryRecv = (%q, %v, %v), want a response", resp, ok, err)
	}
	if resp != "seven" {
		t.Errorf("TryRecv = %q, want %q", resp, "seven")
	}
}

func TestTryRecvEmpty(t *testing.T) {
	rq, _ := NewChannel[int, int](1, 1)
	_, ok, err := rq.TryRecv()
	if ok || err != nil {
		t.Errorf("TryRecv on empty channel = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestTrySendBackpressure(t *testing.T) {
	const capacity = 8
	rq, _ := NewChannel[int, int](capacity, 1)

	done := make(chan struct{})
	var sent, full int
	go func() {
		defer close(done)
		for i := 0; i < capacity*3; i++ {
			switch err := rq.TrySend(i); {
			case err == nil:
				sent++
			case errors.Is(err, ErrFull):
				full++
			default:
				t.Errorf("TrySend(%d) unexpected error: %v", i, err)
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("TrySend blocked on a full channel")
	}

	if sent != capacity {
		t.Errorf("sent = %d, want %d", sent, capacity)
	}
	if full != capacity*2 {
		t.Errorf("full = %d, want %d", full, capacity*2)
	}
	if rq.Pending() != capacity {
		t.Errorf("Pending = %d, want %d", rq.Pending(), capacity)
	}
}

func TestRequesterCloseEndsWorkerLoop(t *testing.T) {
	rq, rs := NewChannel[int, int](4, 4)
	_ = rq.TrySend(1)
	rq.Close()

	// Buffered requests are still delivered.
	if v, err := rs.Recv(context.Background()); err != nil || v != 1 {
		t.Fatalf("Recv = (%d, %v), want (1, nil)", v, err)
	}
	if _, err := rs.Recv(context.Background()); !errors.Is(err, ErrDisconnected) {
		t.Errorf("Recv after close = %v, want ErrDisconnected", err)
	}
	if err := rs.Send(context.Background(), 1); !errors.Is(err, ErrDisconnected) {
		t.Errorf("Send after requester close = %v, want ErrDisconnected", err)
	}
	if err := rq.TrySend(2); !errors.Is(err, ErrDisconnected) {
		t.Errorf("TrySend after close = %v, want ErrDisconnected", err)
	}

	// Close is idempotent.
	rq.Close()
}

func TestResponderCloseDisconnectsRequester(t *testing.T) {
	rq, rs := NewChannel[int, int](4, 4)
	if err := rs.Send(context.Background(), 9); err != nil {
		t.Fatalf("Send: %v", err)
	}
	rs.Close()

	if err := rq.TrySend(1); !errors.Is(err, ErrDisconnected) {
		t.Errorf("TrySend after worker close = %v, want ErrDisconnected", err)
	}

	v, ok, err := rq.TryRecv()
	if !ok || err != nil || v != 9 {
		t.Fatalf("TryRecv = (%d, %v, %v), want buffered 9", v, ok, err)
	}
	if _, _, err := rq.TryRecv(); !errors.Is(err, ErrDisconnected) {
		t.Errorf("TryRecv after drain = %v, want ErrDisconnected", err)
	}
}

func TestRecvHonorsContext(t *testing.T) {
	_, rs := NewChannel[int, int](1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := rs.Recv(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Recv = %v, want context.DeadlineExceeded", err)
	}
}

func TestSendBlocksUntilDrained(t *testing.T) {
	rq, rs := NewChannel[int, int](1, 1)
	ctx := context.Background()
	if err := rs.Send(ctx, 1); err != nil {
		t.Fatalf("first Send: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	sendErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		sendErr <- rs.Send(ctx, 2)
	}()

	select {
	case err := <-sendErr:
		t.Fatalf("second Send returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	if v, ok, _ := rq.TryRecv(); !ok || v != 1 {
		t.Fatalf("TryRecv = (%d, %v), want 1", v, ok)
	}
	wg.Wait()
	if err := <-sendErr; err != nil {
		t.Errorf("second Send: %v", err)
	}
}

func TestCapacityFloor(t *testing.T) {
	rq, _ := NewChannel[int, int](0, -1)
	if rq.Cap() != 1 {
		t.Errorf("Cap = %d, want 1", rq.Cap())
	}
}

// --- Queue Tests ---

func TestQueueBackpressure(t *testing.T) {
	q := NewQueue[string](2)
	if err := q.TrySend("a"); err != nil {
		t.Fatalf("TrySend a: %v", err)
	}
	if err := q.TrySend("b"); err != nil {
		t.Fatalf("TrySend b: %v", err)
	}
	if err := q.TrySend("c"); !errors.Is(err, ErrFull) {
		t.Errorf("TrySend c = %v, want ErrFull", err)
	}

	got := q.Drain()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Drain = %v, want [a b]", got)
	}
	if q.Len() != 0 {
		t.Errorf("Len after drain = %d, want 0", q.Len())
	}
}

func TestQueueClose(t *testing.T) {
	q := NewQueue[int](4)
	_ = q.TrySend(1)
	q.Close()
	q.Close()

	if err := q.TrySend(2); !errors.Is(err, ErrDisconnected) {
		t.Errorf("TrySend after close = %v, want ErrDisconnected", err)
	}
	if v, ok, err := q.TryRecv(); !ok || err != nil || v != 1 {
		t.Errorf("TryRecv = (%d, %v, %v), want buffered 1", v, ok, err)
	}
	if _, _, err := q.TryRecv(); !errors.Is(err, ErrDisconnected) {
		t.Errorf("TryRecv after drain = %v, want ErrDisconnected", err)
	}
}
