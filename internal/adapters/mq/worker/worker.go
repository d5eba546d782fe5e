// Package worker drains queued audit entries into the audit store.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/platefinder/internal/domain/model"
	"github.com/okian/platefinder/pkg/logger"
	"github.com/okian/platefinder/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWriteTimeout = 2 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Entry is what workers read off the queue.
type Entry = model.RequestLogEntry

// Writer persists one audit entry.
type Writer interface {
	AppendEntry(ctx context.Context, e model.RequestLogEntry) error
}

// Queue defines how workers receive entries.
type Queue interface {
	Dequeue() <-chan Entry
}

// InMemoryWorker writes entries until its queue channel is closed.
type InMemoryWorker struct {
	queue        Queue
	writer       Writer
	name         string
	writeTimeout time.Duration

	done chan struct{}

	written atomic.Int64
	failed  atomic.Int64

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, w Writer, opts ...Option) *InMemoryWorker {
	wk := &InMemoryWorker{
		queue:        q,
		writer:       w,
		name:         "audit-worker",
		writeTimeout: defaultWriteTimeout,
		done:         make(chan struct{}),
		logger:       logger.Get().Named("audit-worker"),
	}
	for _, opt := range opts {
		opt(wk)
	}
	return wk
}

// Run drains the queue. It returns when the queue channel is closed and
// empty, or when ctx is canceled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	entries := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-entries:
			if !ok {
				return
			}
			if err := w.write(ctx, e); err != nil {
				w.logger.Warn(ctx, "audit write failed",
					logger.String("worker", w.name),
					logger.String("endpoint", e.Endpoint),
					logger.String("id", e.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Written returns the number of entries successfully persisted.
func (w *InMemoryWorker) Written() int64 { return w.written.Load() }

// Failed returns the number of entries that could not be persisted.
func (w *InMemoryWorker) Failed() int64 { return w.failed.Load() }

func (w *InMemoryWorker) write(ctx context.Context, e Entry) error { //nolint:gocritic // hugeParam: entries travel by value
	// Entries already dequeued are written even while the parent shuts down.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.writeTimeout)
	defer cancel()

	if err := w.writer.AppendEntry(wctx, e); err != nil {
		w.failed.Add(1)
		metrics.RecordAuditFailure("store_error")
		return fmt.Errorf("append entry %s: %w", e.ID, err)
	}
	w.written.Add(1)
	metrics.RecordAuditAppend()
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a new worker pool. A non-positive count uses one worker
// per CPU.
func NewPool(workerCount int, q Queue, w Writer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("audit-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("audit-worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, w, wopts...)
	}

	metrics.UpdateAuditWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Written returns the total number of entries persisted by the pool.
func (p *Pool) Written() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Written()
	}
	return n
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("audit pool shutdown: %w", shutdownCtx.Err())
		}
	}
	metrics.UpdateAuditWorkerCount(0)
	return nil
}
