package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/platefinder/internal/adapters/repository"
	"github.com/okian/platefinder/internal/domain/model"
)

// Appender hands a built entry to storage.
type Appender interface {
	Append(ctx context.Context, e model.RequestLogEntry) error
}

// DirectAppender writes synchronously to an AuditStore.
type DirectAppender struct {
	store   repository.AuditStore
	timeout time.Duration
}

// NewDirectAppender returns an appender bounding each write by timeout.
func NewDirectAppender(store repository.AuditStore, timeout time.Duration) *DirectAppender {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &DirectAppender{store: store, timeout: timeout}
}

// Append writes e to the store.
func (a *DirectAppender) Append(ctx context.Context, e model.RequestLogEntry) error { //nolint:gocritic // hugeParam: entries travel by value
	wctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	if err := a.store.AppendEntry(wctx, e); err != nil {
		return fmt.Errorf("%w: %w", ErrAuditWriteFailed, err)
	}
	return nil
}

// Enqueuer is the producer side of a bounded entry queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, e model.RequestLogEntry) bool
}

// QueuedAppender hands entries to a queue drained by background writers.
type QueuedAppender struct {
	queue Enqueuer
}

// NewQueuedAppender returns an appender over q.
func NewQueuedAppender(q Enqueuer) *QueuedAppender {
	return &QueuedAppender{queue: q}
}

// Append enqueues e without blocking.
func (a *QueuedAppender) Append(ctx context.Context, e model.RequestLogEntry) error { //nolint:gocritic // hugeParam: entries travel by value
	if !a.queue.Enqueue(ctx, e) {
		return fmt.Errorf("%w: %w", ErrAuditWriteFailed, ErrQueueFull)
	}
	return nil
}
