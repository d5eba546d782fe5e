package api

// Default server configuration constants.
const (
	defaultRateLimit    = 100
	defaultRateBurst    = 200
	defaultMaxBodyBytes = 1 << 20
)

type serverOptions struct {
	rateLimit    float64
	rateBurst    int
	maxBodyBytes int64
}

func defaultServerOptions() serverOptions {
	return serverOptions{
		rateLimit:    defaultRateLimit,
		rateBurst:    defaultRateBurst,
		maxBodyBytes: defaultMaxBodyBytes,
	}
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

// WithRateLimit bounds GET /recommendations to rps requests per second with
// the given burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *serverOptions) {
		o.rateLimit = rps
		if burst > 0 {
			o.rateBurst = burst
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}
