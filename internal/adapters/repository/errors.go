package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for store errors.
var (
	ErrInvalidRecord = errors.New("invalid record")
	ErrInvalidEntry  = errors.New("invalid audit entry")
	ErrClosed        = errors.New("store closed")
)

func invalidRecord(field string) error {
	return fmt.Errorf("%w: missing %s", ErrInvalidRecord, field)
}

func invalidEntry(field string) error {
	return fmt.Errorf("%w: missing %s", ErrInvalidEntry, field)
}
