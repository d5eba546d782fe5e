package audit

import "errors"

var (
	// ErrAuditWriteFailed marks an entry that could not be handed to storage.
	// It is logged and counted, never returned to request handlers.
	ErrAuditWriteFailed = errors.New("audit write failed")
	// ErrQueueFull is returned by the queued appender when the queue rejects an entry.
	ErrQueueFull = errors.New("audit queue full")
)
