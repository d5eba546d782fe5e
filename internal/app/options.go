package service

import (
	"time"

	"github.com/okian/platefinder/internal/adapters/identity"
	"github.com/okian/platefinder/internal/adapters/repository"
	"github.com/okian/platefinder/internal/domain/criteria"
	"github.com/okian/platefinder/internal/domain/model"
	"github.com/okian/platefinder/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRecordStore sets the restaurant store. Defaults to an in-memory store.
func WithRecordStore(store repository.RecordStore) Option {
	return func(s *Service) {
		if store != nil {
			s.records = store
		}
	}
}

// WithAuditStore sets the request log store. Defaults to an in-memory store.
func WithAuditStore(store repository.AuditStore) Option {
	return func(s *Service) {
		if store != nil {
			s.auditStore = store
		}
	}
}

// WithParser sets the criteria parser.
func WithParser(p *criteria.Parser) Option {
	return func(s *Service) {
		if p != nil {
			s.parser = p
		}
	}
}

// WithDirectory sets the identity directory.
func WithDirectory(d *identity.Directory) Option {
	return func(s *Service) {
		if d != nil {
			s.directory = d
		}
	}
}

// WithUsers sets the principals provisioned on Start.
func WithUsers(users []identity.User) Option {
	return func(s *Service) {
		s.users = users
	}
}

// WithSeed sets the restaurants created on Start.
func WithSeed(restaurants []model.Restaurant) Option {
	return func(s *Service) {
		s.seed = restaurants
	}
}

// WithStoreTimeout bounds each store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithWorkerCount sets the number of audit writer goroutines. Zero makes
// audit writes synchronous.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count >= 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending audit entries.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRoles sets the role names allowed to create restaurants and to view requests.
func WithRoles(creator, viewer string) Option {
	return func(s *Service) {
		if creator != "" {
			s.creatorRole = creator
		}
		if viewer != "" {
			s.viewerRole = viewer
		}
	}
}

// WithClock overrides the audit timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
