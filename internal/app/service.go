// Package service wires the stores, parser, matcher, audit log and identity
// directory into the operations the HTTP API depends on.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/okian/platefinder/internal/adapters/identity"
	auditqueue "github.com/okian/platefinder/internal/adapters/mq/queue"
	auditworker "github.com/okian/platefinder/internal/adapters/mq/worker"
	"github.com/okian/platefinder/internal/adapters/repository"
	"github.com/okian/platefinder/internal/domain/audit"
	"github.com/okian/platefinder/internal/domain/criteria"
	"github.com/okian/platefinder/internal/domain/matching"
	"github.com/okian/platefinder/internal/domain/model"
	"github.com/okian/platefinder/pkg/logger"
	"github.com/okian/platefinder/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Default role names.
const (
	RoleRestaurantCreator = "RestaurantCreator"
	RoleRequestViewer     = "RequestViewer"
)

// EndpointRecommendations is the audit partition for recommendation lookups.
const EndpointRecommendations = "/recommendations"

// Service implements the API dependencies for the recommendation system.
type Service struct {
	mu sync.RWMutex

	// Core components
	records    repository.RecordStore
	auditStore repository.AuditStore
	parser     *criteria.Parser
	matcher    *matching.Matcher
	audit      *audit.Logger
	directory  *identity.Directory
	queue      *auditqueue.InMemoryQueue
	pool       *auditworker.Pool

	// Configuration
	users        []identity.User
	seed         []model.Restaurant
	storeTimeout time.Duration
	workerCount  int
	queueSize    int
	creatorRole  string
	viewerRole   string
	now          func() time.Time

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeTimeout: 2 * time.Second,
		workerCount:  runtime.NumCPU(),
		queueSize:    10_000,
		creatorRole:  RoleRestaurantCreator,
		viewerRole:   RoleRequestViewer,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the remaining components, provisions users and seeds
// restaurants.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting recommendation service...")

	if s.records == nil {
		s.records = repository.NewMemoryRecordStore()
	}
	if s.auditStore == nil {
		s.auditStore = repository.NewMemoryAuditStore()
	}
	if s.parser == nil {
		s.parser = criteria.NewParser()
	}
	if s.directory == nil {
		s.directory = identity.NewDirectory()
	}
	s.matcher = matching.New(s.records, matching.WithTimeout(s.storeTimeout))

	var appender audit.Appender
	if s.workerCount > 0 {
		s.queue = auditqueue.NewInMemoryQueue(auditqueue.WithCapacity(s.queueSize))
		s.pool = auditworker.NewPool(s.workerCount, s.queue, s.auditStore,
			auditworker.WithWriteTimeout(s.storeTimeout))
		// Workers outlive the start context; Stop drains them.
		s.pool.Start(context.WithoutCancel(ctx))
		appender = audit.NewQueuedAppender(s.queue)
	} else {
		appender = audit.NewDirectAppender(s.auditStore, s.storeTimeout)
	}
	s.audit = audit.New(appender, s.auditStore, audit.WithClock(s.now))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		created := s.directory.Provision(gctx, s.users)
		s.logger.Info(gctx, "users provisioned", logger.Int("count", len(created)))
		return nil
	})
	g.Go(func() error {
		return s.seedRestaurants(gctx)
	})
	if err := g.Wait(); err != nil {
		s.shutdown(ctx)
		return fmt.Errorf("start service: %w", err)
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "recommendation service started",
		logger.Int("auditWorkers", s.workerCount),
		logger.Int("auditQueueSize", s.queueSize),
		logger.Duration("storeTimeout", s.storeTimeout),
	)
	return nil
}

func (s *Service) seedRestaurants(ctx context.Context) error {
	seeded := 0
	for _, r := range s.seed {
		if _, err := s.records.CreateRecord(ctx, r); err != nil {
			if errors.Is(err, repository.ErrInvalidRecord) {
				s.logger.Warn(ctx, "seed restaurant skipped",
					logger.String("name", r.Name),
					logger.Error(err),
				)
				continue
			}
			return fmt.Errorf("seed restaurant %q: %w", r.Name, err)
		}
		seeded++
	}
	if len(s.seed) > 0 {
		s.logger.Info(ctx, "restaurants seeded", logger.Int("count", seeded))
	}
	return nil
}

// Stop drains pending audit entries and closes the stores.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping recommendation service...")
	s.shutdown(ctx)
	s.started = false
	s.logger.Info(ctx, "recommendation service stopped")
}

func (s *Service) shutdown(ctx context.Context) {
	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "audit pool did not drain", logger.Error(err))
		}
		s.pool = nil
	}
	closed := map[any]bool{}
	for _, store := range []any{s.records, s.auditStore} {
		c, ok := store.(io.Closer)
		if !ok || closed[store] {
			continue
		}
		closed[store] = true
		if err := c.Close(); err != nil {
			s.logger.Warn(ctx, "store close failed", logger.Error(err))
		}
	}
}

// ParseQuery returns the criteria read from a free-text query.
func (s *Service) ParseQuery(query string) *criteria.Criteria {
	if s.parser == nil {
		return criteria.Parse(query)
	}
	return s.parser.Parse(query)
}

// Recommend parses query, matches it against stored restaurants and records
// the lookup in the audit log. params are the raw request parameters kept
// with the audit entry.
func (s *Service) Recommend(ctx context.Context, query string, params map[string][]string) ([]model.Recommendation, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	if query == "" {
		metrics.RecordLookup("empty_query")
		return nil, ErrEmptyQuery
	}

	c := s.ParseQuery(query)
	if c.IsEmpty() {
		metrics.RecordLookup(matching.OutcomeNoCriteria)
		return nil, ErrNoCriteriaParsed
	}
	keys := c.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	metrics.RecordCriteria(names)

	recs, err := s.matcher.Match(ctx, c)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, EndpointRecommendations, params, recs)
	return recs, nil
}

// CreateRestaurant stores r and returns its id.
func (s *Service) CreateRestaurant(ctx context.Context, r model.Restaurant) (string, error) { //nolint:gocritic // hugeParam: request bodies are decoded by value
	if !s.isStarted() {
		return "", ErrNotStarted
	}
	cctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	id, err := s.records.CreateRecord(cctx, r)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidRecord) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", matching.ErrStoreUnavailable, err)
	}
	metrics.RecordRestaurantCreated()
	s.logger.Info(ctx, "restaurant created",
		logger.String("id", id),
		logger.String("name", r.Name),
		logger.String("style", r.Style),
	)
	return id, nil
}

// ListRequests returns every audit entry. An empty log yields ErrNoRequests.
func (s *Service) ListRequests(ctx context.Context) ([]model.RequestLogEntry, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	lctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	entries, err := s.audit.List(lctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", matching.ErrStoreUnavailable, err)
	}
	if len(entries) == 0 {
		return nil, ErrNoRequests
	}
	return entries, nil
}

// AuthorizeCreator checks an Authorization header for the creator role.
func (s *Service) AuthorizeCreator(ctx context.Context, header string) error {
	return s.authorize(ctx, header, s.creatorRole)
}

// AuthorizeViewer checks an Authorization header for the request viewer role.
func (s *Service) AuthorizeViewer(ctx context.Context, header string) error {
	return s.authorize(ctx, header, s.viewerRole)
}

func (s *Service) authorize(ctx context.Context, header, role string) error {
	if !s.isStarted() {
		return ErrNotStarted
	}
	cred, err := identity.ParseBasic(header)
	if err != nil {
		metrics.RecordAuthDecision("malformed")
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if !s.directory.IsAuthorized(ctx, cred, role) {
		return ErrUnauthorized
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"auditWorkers": s.workerCount,
		"auditQueue":   s.queueSize,
		"storeTimeout": s.storeTimeout.String(),
	}
	if !s.started {
		return stats
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.storeTimeout)
	defer cancel()
	if n, err := s.records.Count(ctx); err == nil {
		stats["restaurants"] = n
		metrics.UpdateRestaurantCount(n)
	}
	if s.queue != nil {
		stats["auditQueueLength"] = s.queue.Len()
	}
	if s.pool != nil {
		stats["auditWritten"] = s.pool.Written()
	}
	stats["users"] = s.directory.Len()
	stats["uptime"] = time.Since(s.startedAt).Round(time.Second).String()
	return stats
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
