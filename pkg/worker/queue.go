package worker

import "sync"

// Queue is a bounded one-way channel. Producers use TrySend and never block;
// the consumer either drains with TryRecv or blocks on C.
type Queue[T any] struct {
	ch chan T

	mu     sync.Mutex
	closed bool
}

// NewQueue creates a queue holding at most capacity items (minimum 1).
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{ch: make(chan T, capacity)}
}

// TrySend enqueues v, failing with ErrFull at capacity or ErrDisconnected
// after Close.
func (q *Queue[T]) TrySend(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrDisconnected
	}
	select {
	case q.ch <- v:
		return nil
	default:
		return ErrFull
	}
}

// TryRecv returns the next item without blocking. err is ErrDisconnected once
// the queue is closed and drained.
func (q *Queue[T]) TryRecv() (v T, ok bool, err error) {
	select {
	case item, open := <-q.ch:
		if !open {
			return v, false, ErrDisconnected
		}
		return item, true, nil
	default:
		return v, false, nil
	}
}

// Drain returns every item currently buffered.
func (q *Queue[T]) Drain() []T {
	var out []T
	for {
		v, ok, _ := q.TryRecv()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// C exposes the receive side for blocking consumers.
func (q *Queue[T]) C() <-chan T {
	return q.ch
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Close stops the queue. Buffered items remain readable. Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}
