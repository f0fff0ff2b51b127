// Package worker provides the bounded channels that connect the dispatch loop
// to background I/O goroutines. A Channel is a duplex pair: the Requester half
// stays with the dispatch loop and never blocks, the Responder half belongs to
// a worker goroutine that performs the slow work. A Queue is the one-way
// variant used for unsolicited streams.
package worker

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrFull is returned by non-blocking sends when the queue is at capacity.
	ErrFull = errors.New("worker: channel full")

	// ErrDisconnected is returned once the peer half has been closed.
	ErrDisconnected = errors.New("worker: channel disconnected")
)

// Requester is the dispatch-loop half of a Channel. All of its methods are
// non-blocking.
type Requester[Req, Resp any] struct {
	requests   chan Req
	responses  chan Resp
	workerGone <-chan struct{}

	mu     sync.Mutex
	closed bool
	gone   chan struct{}
}

// Responder is the worker half of a Channel.
type Responder[Req, Resp any] struct {
	requests      chan Req
	responses     chan Resp
	requesterGone <-chan struct{}

	mu     sync.Mutex
	closed bool
	gone   chan struct{}
}

// NewChannel creates a connected Requester/Responder pair. reqCap and
// respCap bound the two directions and are hard limits; values below 1 are
// raised to 1.
func NewChannel[Req, Resp any](reqCap, respCap int) (*Requester[Req, Resp], *Responder[Req, Resp]) {
	if reqCap < 1 {
		reqCap = 1
	}
	if respCap < 1 {
		respCap = 1
	}
	requests := make(chan Req, reqCap)
	responses := make(chan Resp, respCap)
	requesterGone := make(chan struct{})
	workerGone := make(chan struct{})

	rq := &Requester[Req, Resp]{
		requests:   requests,
		responses:  responses,
		workerGone: workerGone,
		gone:       requesterGone,
	}
	rs := &Responder[Req, Resp]{
		requests:      requests,
		responses:     responses,
		requesterGone: requesterGone,
		gone:          workerGone,
	}
	return rq, rs
}

// TrySend enqueues req without blocking. It returns ErrFull when the request
// queue is at capacity and ErrDisconnected when either half has been closed.
func (r *Requester[Req, Resp]) TrySend(req Req) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrDisconnected
	}
	select {
	case <-r.workerGone:
		return ErrDisconnected
	default:
	}
	select {
	case r.requests <- req:
		return nil
	default:
		return ErrFull
	}
}

// TryRecv returns the next buffered response, if any. ok is false when the
// queue is empty. Once the worker has closed its half and every buffered
// response has been drained, TryRecv returns ErrDisconnected.
func (r *Requester[Req, Resp]) TryRecv() (resp Resp, ok bool, err error) {
	select {
	case v, open := <-r.responses:
		if !open {
			return resp, false, ErrDisconnected
		}
		return v, true, nil
	default:
		return resp, false, nil
	}
}

// Responses exposes the receive side so a waiter goroutine can block on the
// next response. The channel is closed when the worker closes its half.
func (r *Requester[Req, Resp]) Responses() <-chan Resp {
	return r.responses
}

// Pending returns the number of requests not yet picked up by the worker.
func (r *Requester[Req, Resp]) Pending() int {
	return len(r.requests)
}

// Cap returns the request queue capacity.
func (r *Requester[Req, Resp]) Cap() int {
	return cap(r.requests)
}

// Close drops the requester half. The worker's Recv returns ErrDisconnected
// once the buffered requests are drained. Close is idempotent.
func (r *Requester[Req, Resp]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.gone)
	close(r.requests)
}

// Recv blocks until a request is available, ctx is done, or the requester
// half is closed.
func (r *Responder[Req, Resp]) Recv(ctx context.Context) (Req, error) {
	var zero Req
	select {
	case req, open := <-r.requests:
		if !open {
			return zero, ErrDisconnected
		}
		return req, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// TryRecv returns a buffered request without blocking.
func (r *Responder[Req, Resp]) TryRecv() (Req, bool) {
	var zero Req
	select {
	case req, open := <-r.requests:
		if !open {
			return zero, false
		}
		return req, true
	default:
		return zero, false
	}
}

// Send pushes one response, blocking while the response queue is full.
func (r *Responder[Req, Resp]) Send(ctx context.Context, resp Resp) error {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return ErrDisconnected
	}
	select {
	case <-r.requesterGone:
		return ErrDisconnected
	default:
	}
	select {
	case r.responses <- resp:
		return nil
	case <-r.requesterGone:
		return ErrDisconnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drops the worker half. The requester observes ErrDisconnected on
// TrySend immediately and on TryRecv after draining. Close must only be
// called by the goroutine that calls Send.
func (r *Responder[Req, Resp]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.gone)
	close(r.responses)
}
