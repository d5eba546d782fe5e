// Package audit records every served request as an append-only log entry.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/okian/platefinder/internal/domain/model"
	"github.com/okian/platefinder/pkg/logger"
	"github.com/okian/platefinder/pkg/metrics"
)

const defaultTimeout = 2 * time.Second

// Reader lists stored entries.
type Reader interface {
	ListEntries(ctx context.Context) ([]model.RequestLogEntry, error)
}

// Logger builds request log entries and hands them to an Appender.
type Logger struct {
	appender Appender
	reader   Reader
	now      func() time.Time
	newID    func() string
	logger   logger.Logger
}

// Option applies a configuration option to the Logger.
type Option func(*Logger)

// WithClock overrides the entry timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithIDGenerator overrides the entry id source.
func WithIDGenerator(fn func() string) Option {
	return func(l *Logger) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg logger.Logger) Option {
	return func(l *Logger) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// New creates an audit Logger writing through appender and reading through reader.
func New(appender Appender, reader Reader, opts ...Option) *Logger {
	l := &Logger{
		appender: appender,
		reader:   reader,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger.Get().Named("audit"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends an entry for a served request. Failures are logged and
// counted; the caller's response is never affected.
func (l *Logger) Record(ctx context.Context, endpoint string, params map[string][]string, payload any) {
	if params == nil {
		params = map[string][]string{}
	}
	e := model.RequestLogEntry{
		ID:        l.newID(),
		Endpoint:  endpoint,
		Request:   params,
		Response:  payload,
		Timestamp: l.now().UTC(),
	}

	// The entry outlives the request that produced it.
	if err := l.appender.Append(context.WithoutCancel(ctx), e); err != nil {
		reason := "store_error"
		if errors.Is(err, ErrQueueFull) {
			reason = "queue_full"
		}
		metrics.RecordAuditFailure(reason)
		l.logger.Warn(ctx, "audit entry dropped",
			logger.String("endpoint", endpoint),
			logger.String("id", e.ID),
			logger.Error(err),
		)
		return
	}
	if _, queued := l.appender.(*QueuedAppender); !queued {
		metrics.RecordAuditAppend()
	}
}

// List returns every stored entry grouped by endpoint.
func (l *Logger) List(ctx context.Context) ([]model.RequestLogEntry, error) {
	return l.reader.ListEntries(ctx)
}
