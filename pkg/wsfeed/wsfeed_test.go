package wsfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/go-cmp/cmp"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/worker"
)

func TestDecodeArrayFrame(t *testing.T) {
	frame := `[
		{"type":"incomingTransfer","payload":{"eta":12.5,"currentBlockCount":900,"downloadedBlocks":450,"remoteBestKnownBlockLevel":1000}},
		{"type":"somethingNew","payload":{}},
		{"type":"peersMetrics","payload":[{"id":"idA","ipAddress":"10.0.0.1","transferredBytes":2048,"currentHeadLevel":990}]}
	]`
	msgs, skipped, err := Decode([]byte(frame))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff([]string{"somethingNew"}, skipped); diff != "" {
		t.Errorf("skipped (-want +got):\n%s", diff)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}

	transfer, ok := msgs[0].Payload.(IncomingTransfer)
	if !ok {
		t.Fatalf("first payload is %T", msgs[0].Payload)
	}
	if transfer.Eta == nil || *transfer.Eta != 12.5 || transfer.DownloadedBlocks != 450 {
		t.Errorf("transfer = %+v", transfer)
	}

	peers, ok := msgs[1].Payload.([]PeerMetric)
	if !ok {
		t.Fatalf("second payload is %T", msgs[1].Payload)
	}
	if len(peers) != 1 || peers[0].IPAddress != "10.0.0.1" || *peers[0].CurrentHeadLevel != 990 {
		t.Errorf("peers = %+v", peers)
	}
}

func TestDecodeSingleEnvelope(t *testing.T) {
	msgs, _, err := Decode([]byte(`{"type":"blockApplicationStatus","payload":{"currentApplicationSpeed":3.5,"lastAppliedBlock":{"hash":"BLa","level":77}}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []Message{{
		Type: TypeBlockApplicationStatus,
		Payload: BlockApplicationStatus{
			CurrentApplicationSpeed: 3.5,
			LastAppliedBlock:        &BlockRef{Hash: "BLa", Level: 77},
		},
	}}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, frame := range []string{
		`not json`,
		`[{"type":"blockStatus","payload":{"group":1}}]`,
	} {
		if _, _, err := Decode([]byte(frame)); err == nil {
			t.Errorf("Decode(%q) returned no error", frame)
		}
	}
}

func TestDecodeKeepsValidElements(t *testing.T) {
	frame := `[{"type":"chainStatus","payload":{"chain":[]}},` +
		`{"type":"blockStatus","payload":{"group":1}},` +
		`42,` +
		`{"type":"incomingTransfer","payload":{"currentBlockHeight":9}}]`
	msgs, skipped, err := Decode([]byte(frame))
	if err == nil {
		t.Fatal("Decode reported no error for malformed elements")
	}
	if !strings.Contains(err.Error(), "element 1") || !strings.Contains(err.Error(), "element 2") {
		t.Errorf("err = %v, want both bad elements named", err)
	}
	if len(skipped) != 0 {
		t.Errorf("skipped = %v", skipped)
	}
	var types []string
	for _, m := range msgs {
		types = append(types, m.Type)
	}
	if diff := cmp.Diff([]string{TypeChainStatus, TypeIncomingTransfer}, types); diff != "" {
		t.Errorf("kept types (-want +got):\n%s", diff)
	}
}

func TestReaderDeliversBatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		ctx := r.Context()
		conn.Write(ctx, websocket.MessageText, []byte(`[{"type":"chainStatus","payload":{"chain":[{"cycle":4,"downloaded":10,"applied":5,"blockCount":16}]}}]`))
		conn.Write(ctx, websocket.MessageText, []byte(`{"type":"unknown","payload":null}`))
		conn.Write(ctx, websocket.MessageText, []byte(`{"type":"blockStatus","payload":[{"group":1,"numbersOfBlocks":8,"finishedBlocks":8,"appliedBlocks":3}]}`))
		<-ctx.Done()
	}))
	defer srv.Close()

	out := worker.NewQueue[Batch](8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	reader := NewReader("ws"+strings.TrimPrefix(srv.URL, "http"), WithReconnectDelay(10*time.Millisecond))
	go func() { done <- reader.Run(ctx, out) }()

	var got []Message
	deadline := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case b := <-out.C():
			got = append(got, b.Messages...)
		case <-deadline:
			t.Fatalf("timed out with %d messages", len(got))
		}
	}
	if got[0].Type != TypeChainStatus || got[1].Type != TypeBlockStatus {
		t.Errorf("message types = %q, %q", got[0].Type, got[1].Type)
	}
	if cs := got[0].Payload.(ChainStatus); len(cs.Chain) != 1 || cs.Chain[0].Cycle != 4 {
		t.Errorf("chain status = %+v", cs)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestReaderStopsWhenQueueClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		for r.Context().Err() == nil {
			if err := conn.Write(r.Context(), websocket.MessageText, []byte(`{"type":"chainStatus","payload":{"chain":[]}}`)); err != nil {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}))
	defer srv.Close()

	out := worker.NewQueue[Batch](1)
	out.Close()

	done := make(chan error, 1)
	start := time.Now()
	go func() {
		done <- NewReader("ws"+strings.TrimPrefix(srv.URL, "http")).Run(context.Background(), out)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
		// A close handshake with a peer that keeps streaming would take the
		// library's full close timeout.
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("Run took %v to stop after the queue closed", elapsed)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop after the queue closed")
	}
}
