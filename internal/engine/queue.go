package engine

import (
	"sync"

	"github.com/roach88/sweep/internal/ir"
)

// Request is an action submitted through Enqueue.
type Request struct {
	URI  ir.ActionRef
	Args ir.Object

	// Reply, when set, is called on the Run goroutine with the result. A
	// request still queued when Run's context is cancelled gets an empty
	// outcome and an error wrapping the context's error.
	Reply func(ir.Outcome, error)
}

// requestQueue is an unbounded FIFO. Producers on any goroutine call
// Enqueue; the Run loop drains it with TryDequeue and blocks on Wait.
type requestQueue struct {
	mu       sync.Mutex
	requests []Request
	closed   bool
	signal   chan struct{} // buffered(1); closed on Close
}

func newRequestQueue() *requestQueue {
	return &requestQueue{
		requests: make([]Request, 0, 16),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue appends r. It returns false once the queue is closed.
func (q *requestQueue) Enqueue(r Request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.requests = append(q.requests, r)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue removes the front request without blocking.
func (q *requestQueue) TryDequeue() (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.requests) == 0 {
		return Request{}, false
	}
	r := q.requests[0]
	q.requests[0] = Request{} // release Args and Reply
	if len(q.requests) == 1 {
		q.requests = q.requests[:0]
	} else {
		q.requests = q.requests[1:]
	}
	return r, true
}

// Wait signals that requests may be available, or that the queue closed.
func (q *requestQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending requests.
func (q *requestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.requests)
}

// Drained reports whether the queue is closed and empty.
func (q *requestQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.requests) == 0
}

// Close stops accepting requests and wakes the Run loop. Pending requests
// are still drained.
func (q *requestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
