// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load layers a YAML file, an optional .env file and PLATEFINDER_ env vars on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import "runtime"

// Storage drivers understood by the service.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the record encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the record and audit store backend (memory, sqlite).
	StoreDriver string `koanf:"store_driver"`

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `koanf:"sqlite_path"`

	// StoreTimeoutMS bounds every store call.
	StoreTimeoutMS int `koanf:"store_timeout_ms"`

	// AuditQueueSize bounds the in-memory audit queue.
	AuditQueueSize int `koanf:"audit_queue_size"`

	// AuditWorkerCount sets the number of audit writers; 0 writes synchronously.
	AuditWorkerCount int `koanf:"audit_worker_count"`

	// RateLimit and RateLimitBurst bound GET /recommendations (requests per second).
	RateLimit      float64 `koanf:"rate_limit"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// UsersFile lists principals provisioned at startup (YAML).
	UsersFile string `koanf:"users_file"`

	// SeedFile lists restaurants loaded at startup (YAML).
	SeedFile string `koanf:"seed_file"`

	// CreatorRole may POST /restaurants; ViewerRole may GET /requests.
	CreatorRole string `koanf:"creator_role"`
	ViewerRole  string `koanf:"viewer_role"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		StoreDriver:      DriverMemory,
		SQLitePath:       "data/platefinder.db",
		StoreTimeoutMS:   2000,
		AuditQueueSize:   10_000,
		AuditWorkerCount: runtime.NumCPU(),
		RateLimit:        100,
		RateLimitBurst:   200,
		CreatorRole:      "RestaurantCreator",
		ViewerRole:       "RequestViewer",
	}
}
