package wsfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/worker"
)

// DefaultReconnectDelay is the wait between a dropped connection and the
// next dial.
const DefaultReconnectDelay = 5 * time.Second

// Batch is the set of messages decoded from one frame.
type Batch struct {
	Received time.Time
	Messages []Message
}

// Reader streams frames from one WebSocket URL into a queue.
type Reader struct {
	url       string
	reconnect time.Duration
	readLimit int64
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Reader.
type Option func(*Reader)

// WithReconnectDelay sets the wait between connection attempts.
func WithReconnectDelay(d time.Duration) Option {
	return func(r *Reader) {
		if d > 0 {
			r.reconnect = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReader returns a Reader for url.
func NewReader(url string, opts ...Option) *Reader {
	r := &Reader{
		url:       url,
		reconnect: DefaultReconnectDelay,
		readLimit: 8 << 20,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run dials, reads and redials until ctx is done or out is closed. Batches
// that do not fit in out are dropped with a warning.
func (r *Reader) Run(ctx context.Context, out *worker.Queue[Batch]) error {
	for {
		err := r.session(ctx, out)
		switch {
		case ctx.Err() != nil, errors.Is(err, worker.ErrDisconnected):
			return nil
		case err != nil:
			r.logger.Warn("websocket session ended", "url", r.url, "error", err, "retry_in", r.reconnect)
		}

		t := time.NewTimer(r.reconnect)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

func (r *Reader) session(ctx context.Context, out *worker.Queue[Batch]) error {
	conn, _, err := websocket.Dial(ctx, r.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(r.readLimit)
	r.logger.Info("websocket connected", "url", r.url)

	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		msgs, skipped, err := Decode(frame)
		if err != nil {
			r.logger.Warn("websocket messages dropped", "error", err, "kept", len(msgs))
		}
		for _, typ := range skipped {
			r.logger.Debug("websocket message type skipped", "type", typ)
		}
		if len(msgs) == 0 {
			continue
		}
		switch err := out.TrySend(Batch{Received: r.now(), Messages: msgs}); {
		case errors.Is(err, worker.ErrDisconnected):
			// The deferred CloseNow drops the socket without a close handshake.
			return err
		case errors.Is(err, worker.ErrFull):
			r.logger.Warn("websocket batch dropped, queue full", "messages", len(msgs))
		}
	}
}
