package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrIncompleteData = errors.New("incomplete data")
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrInternal       = errors.New("internal server error")
)

// NewKind reports a sentinel kind for operation op.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind reports kind for op with cause attached.
func WrapKind(op string, kind, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, cause)
}
