package matching

import (
	"time"

	"github.com/okian/platefinder/pkg/logger"
)

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithTimeout bounds each store query.
func WithTimeout(d time.Duration) Option {
	return func(m *Matcher) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithLogger sets a custom logger for the matcher.
func WithLogger(l logger.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}
