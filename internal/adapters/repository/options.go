package repository

import (
	"time"

	"github.com/google/uuid"
)

// Option configures a store backend.
type Option func(*options)

type options struct {
	newID func() string
	now   func() time.Time
}

func defaultOptions(opts []Option) options {
	o := options{
		newID: func() string { return uuid.NewString() },
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithIDGenerator sets the function used to assign record ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithClock sets the time source used for record creation stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
