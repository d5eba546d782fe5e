// Package matching finds stored restaurants satisfying parsed criteria.
package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/platefinder/internal/adapters/repository"
	"github.com/okian/platefinder/internal/domain/criteria"
	"github.com/okian/platefinder/internal/domain/model"
	"github.com/okian/platefinder/pkg/logger"
	"github.com/okian/platefinder/pkg/metrics"
)

const defaultTimeout = 2 * time.Second

// Lookup outcomes reported to metrics.
const (
	OutcomeMatch            = "match"
	OutcomeNoMatch          = "no_match"
	OutcomeNoCriteria       = "no_criteria"
	OutcomeStoreUnavailable = "store_unavailable"
)

// Matcher queries a RecordStore with a conjunctive predicate built from
// criteria. It holds no per-request state.
type Matcher struct {
	store   repository.RecordStore
	timeout time.Duration
	logger  logger.Logger
}

// New creates a Matcher over store.
func New(store repository.RecordStore, opts ...Option) *Matcher {
	m := &Matcher{
		store:   store,
		timeout: defaultTimeout,
		logger:  logger.Get().Named("matcher"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PredicateFor builds the store predicate for c, one equality condition per
// criterion in insertion order.
func PredicateFor(c *criteria.Criteria) repository.Predicate {
	p := make(repository.Predicate, 0, c.Len())
	c.Each(func(k criteria.Key, v criteria.Value) {
		p = append(p, repository.Condition{Field: string(k), Value: v.String()})
	})
	return p
}

// Match returns the recommendations whose records satisfy every criterion,
// in store order.
func (m *Matcher) Match(ctx context.Context, c *criteria.Criteria) ([]model.Recommendation, error) {
	if c.IsEmpty() {
		metrics.RecordLookup(OutcomeNoCriteria)
		return nil, ErrNoCriteria
	}

	p := PredicateFor(c)
	qctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	records, err := m.store.QueryRecords(qctx, p)
	if err != nil {
		metrics.RecordLookup(OutcomeStoreUnavailable)
		m.logger.Error(ctx, "record query failed",
			logger.String("predicate", p.String()),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	metrics.RecordMatches(len(records))
	if len(records) == 0 {
		metrics.RecordLookup(OutcomeNoMatch)
		return nil, ErrNoMatch
	}

	out := make([]model.Recommendation, len(records))
	for i := range records {
		out[i] = records[i].Recommend()
	}
	metrics.RecordLookup(OutcomeMatch)
	m.logger.Debug(ctx, "matched",
		logger.String("predicate", p.String()),
		logger.Int("count", len(out)),
	)
	return out, nil
}
