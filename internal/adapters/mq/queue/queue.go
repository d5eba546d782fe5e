// Package queue buffers audit entries between request handlers and the
// audit writers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/platefinder/internal/domain/model"
	"github.com/okian/platefinder/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10_000
)

// Entry is the payload type flowing through the queue.
type Entry = model.RequestLogEntry

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an entry. Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, e Entry) bool

	// Dequeue returns the channel entries are delivered on. It is closed,
	// after the remaining entries are drained, once the queue is closed.
	Dequeue() <-chan Entry

	// Len returns the current number of queued entries.
	Len() int

	// Close stops accepting entries.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	entries  chan Entry
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.entries = make(chan Entry, q.capacity)

	metrics.UpdateAuditQueueCapacity(q.capacity)
	metrics.UpdateAuditQueueSize(0)
	return q
}

// Enqueue adds an entry without blocking. It fails only when the queue is
// closed or full; caller cancellation does not reject an entry.
func (q *InMemoryQueue) Enqueue(_ context.Context, e Entry) bool { //nolint:gocritic // hugeParam: entries travel by value
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}
	select {
	case q.entries <- e:
		metrics.UpdateAuditQueueSize(len(q.entries))
		return true
	default:
		return false
	}
}

// Dequeue returns the delivery channel.
func (q *InMemoryQueue) Dequeue() <-chan Entry {
	return q.entries
}

// Len returns the current number of queued entries.
func (q *InMemoryQueue) Len() int {
	n := len(q.entries)
	metrics.UpdateAuditQueueSize(n)
	return n
}

// Capacity returns the queue bound.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close stops accepting entries. Queued entries remain readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.entries)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
