// Package actionlog persists externally dispatched actions as JSON lines so a
// session can be replayed against a fresh Store.
package actionlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/automaton"
)

// maxLineSize bounds a single record. RPC payloads such as endorsement rights
// for a full cycle can be large.
const maxLineSize = 16 << 20

// Record is one line of the log.
type Record struct {
	ID      uint64          `json:"id"`
	Time    time.Time       `json:"time"`
	Depth   int             `json:"depth"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Codec converts actions to and from their logged form.
type Codec[A any] interface {
	Encode(action A) (kind string, payload []byte, err error)
	Decode(kind string, payload []byte) (A, error)
}

// Writer appends records to an io.Writer. It satisfies automaton.Recorder.
type Writer[A any] struct {
	mu    sync.Mutex
	w     *bufio.Writer
	c     io.Closer
	codec Codec[A]
	count int
}

// NewWriter wraps w. If w is an io.Closer, Close closes it.
func NewWriter[A any](w io.Writer, codec Codec[A]) *Writer[A] {
	lw := &Writer[A]{w: bufio.NewWriter(w), codec: codec}
	if c, ok := w.(io.Closer); ok {
		lw.c = c
	}
	return lw
}

// Create opens path for writing, truncating any previous log.
func Create[A any](path string, codec Codec[A]) (*Writer[A], error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create action log dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create action log: %w", err)
	}
	return NewWriter[A](f, codec), nil
}

// Record encodes one action and flushes it so a crash loses at most the
// action being written.
func (l *Writer[A]) Record(action automaton.ActionWithMeta[A]) error {
	kind, payload, err := l.codec.Encode(action.Action)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	b, err := json.Marshal(Record{
		ID:      action.ID,
		Time:    action.Time.UTC(),
		Depth:   action.Depth,
		Kind:    kind,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.w.Write(append(b, '\n')); err != nil {
		return err
	}
	l.count++
	return l.w.Flush()
}

// Count reports how many records were written.
func (l *Writer[A]) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Close flushes buffered output and closes the underlying writer.
func (l *Writer[A]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.w.Flush()
	if l.c != nil {
		err = errors.Join(err, l.c.Close())
	}
	return err
}

// Read decodes every record in r. Blank lines are skipped. A malformed line
// fails the whole read with its line number.
func Read[A any](r io.Reader, codec Codec[A]) ([]automaton.ActionWithMeta[A], error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var out []automaton.ActionWithMeta[A]
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		action, err := codec.Decode(rec.Kind, rec.Payload)
		if err != nil {
			return nil, fmt.Errorf("line %d: decode %s: %w", line, rec.Kind, err)
		}
		out = append(out, automaton.ActionWithMeta[A]{
			Action: action,
			Meta:   automaton.Meta{ID: rec.ID, Time: rec.Time, Depth: rec.Depth},
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read action log: %w", err)
	}
	return out, nil
}

// ReadFile is Read on a file path.
func ReadFile[A any](path string, codec Codec[A]) ([]automaton.ActionWithMeta[A], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open action log: %w", err)
	}
	defer f.Close()
	return Read(f, codec)
}

// Replay dispatches the root actions of log into store with their recorded
// timestamps and returns how many were reduced. Nested records are skipped:
// the effect chain regenerates them.
func Replay[S, A any](store *automaton.Store[S, A], log []automaton.ActionWithMeta[A]) int {
	reduced := 0
	for _, entry := range log {
		if entry.Depth != 0 {
			continue
		}
		if store.DispatchAt(entry.Action, entry.Time) {
			reduced++
		}
	}
	return reduced
}
