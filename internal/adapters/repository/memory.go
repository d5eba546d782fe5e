package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/platefinder/internal/domain/model"
	"github.com/okian/platefinder/pkg/metrics"
)

// MemoryRecordStore keeps restaurants as raw JSON documents grouped into
// per-style partitions.
type MemoryRecordStore struct {
	mu         sync.RWMutex
	partitions map[string][][]byte
	count      int
	eval       Evaluator
	opts       options
}

// NewMemoryRecordStore returns an empty in-memory record store.
func NewMemoryRecordStore(opts ...Option) *MemoryRecordStore {
	return &MemoryRecordStore{
		partitions: make(map[string][][]byte),
		opts:       defaultOptions(opts),
	}
}

// CreateRecord stores r in its style partition.
func (s *MemoryRecordStore) CreateRecord(ctx context.Context, r model.Restaurant) (string, error) {
	start := time.Now()
	defer observe("records", "create", start)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateRecord(&r); err != nil {
		return "", err
	}
	if r.ID == "" {
		r.ID = s.opts.newID()
	}
	doc, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}

	s.mu.Lock()
	s.partitions[r.Style] = append(s.partitions[r.Style], doc)
	s.count++
	n := s.count
	s.mu.Unlock()

	metrics.UpdateRestaurantCount(n)
	return r.ID, nil
}

// QueryRecords scans all partitions in style order.
func (s *MemoryRecordStore) QueryRecords(ctx context.Context, p Predicate) ([]model.Restaurant, error) {
	start := time.Now()
	defer observe("records", "query", start)

	s.mu.RLock()
	defer s.mu.RUnlock()

	styles := make([]string, 0, len(s.partitions))
	for style := range s.partitions {
		styles = append(styles, style)
	}
	sort.Strings(styles)

	var out []model.Restaurant
	for _, style := range styles {
		if err := ctx.Err(); err != nil {
			metrics.RecordStoreError("records", "query")
			return nil, err
		}
		for _, doc := range s.partitions[style] {
			ok, err := s.eval.Match(p, doc)
			if err != nil {
				metrics.RecordStoreError("records", "query")
				return nil, err
			}
			if !ok {
				continue
			}
			var r model.Restaurant
			if err := json.Unmarshal(doc, &r); err != nil {
				metrics.RecordStoreError("records", "query")
				return nil, fmt.Errorf("decode record: %w", err)
			}
			out = append(out, r)
		}
	}
	return out, nil
}

// Count returns the number of stored restaurants.
func (s *MemoryRecordStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count, nil
}

// MemoryAuditStore keeps request entries grouped by endpoint.
type MemoryAuditStore struct {
	mu      sync.RWMutex
	entries map[string][]model.RequestLogEntry
}

// NewMemoryAuditStore returns an empty in-memory audit store.
func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{entries: make(map[string][]model.RequestLogEntry)}
}

// AppendEntry appends e to its endpoint partition.
func (s *MemoryAuditStore) AppendEntry(ctx context.Context, e model.RequestLogEntry) error {
	start := time.Now()
	defer observe("audit", "append", start)

	if err := ctx.Err(); err != nil {
		metrics.RecordStoreError("audit", "append")
		return err
	}
	if err := validateEntry(&e); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[e.Endpoint] = append(s.entries[e.Endpoint], e)
	s.mu.Unlock()
	return nil
}

// ListEntries returns every entry, endpoint by endpoint, in append order.
func (s *MemoryAuditStore) ListEntries(ctx context.Context) ([]model.RequestLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	endpoints := make([]string, 0, len(s.entries))
	for ep := range s.entries {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	var out []model.RequestLogEntry
	for _, ep := range endpoints {
		out = append(out, s.entries[ep]...)
	}
	return out, nil
}

func observe(store, op string, start time.Time) {
	metrics.RecordStoreLatency(store, op, float64(time.Since(start).Microseconds())/1000)
}
