package matching

import "errors"

var (
	// ErrNoCriteria is returned when Match is called with empty criteria.
	ErrNoCriteria = errors.New("no criteria to match")
	// ErrNoMatch is returned when no stored restaurant satisfies the criteria.
	ErrNoMatch = errors.New("no restaurant matches the criteria")
	// ErrStoreUnavailable wraps any failure or deadline from the record store.
	ErrStoreUnavailable = errors.New("record store unavailable")
)
