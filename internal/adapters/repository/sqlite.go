package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/okian/platefinder/internal/domain/model"
	"github.com/okian/platefinder/pkg/metrics"

	// sqlite driver
	_ "modernc.org/sqlite"
)

// SQLiteStore implements RecordStore and AuditStore on one SQLite database.
// Restaurants are stored as JSON documents with the style column as the
// partition; audit responses are zstd-compressed.
type SQLiteStore struct {
	db   *sql.DB
	path string
	eval Evaluator
	opts options
	enc  *zstd.Encoder
	dec  *zstd.Decoder

	mu     sync.RWMutex
	closed bool
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	s := &SQLiteStore{db: db, path: path, opts: defaultOptions(opts), enc: enc, dec: dec}
	if err := s.configure(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}
	if err := s.createSchema(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Close releases the database and codecs. Later calls on s return ErrClosed.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.dec.Close()
	_ = s.enc.Close()
	return s.db.Close()
}

// acquire holds s open until release is called.
func (s *SQLiteStore) acquire() (release func(), err error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	return s.mu.RUnlock, nil
}

func (s *SQLiteStore) configure(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS restaurants (
		id TEXT PRIMARY KEY,
		style TEXT NOT NULL,
		doc TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_restaurants_style ON restaurants(style);

	CREATE TABLE IF NOT EXISTS request_log (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		endpoint TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		request TEXT NOT NULL,
		response BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_request_log_endpoint ON request_log(endpoint);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// CreateRecord inserts r into its style partition.
func (s *SQLiteStore) CreateRecord(ctx context.Context, r model.Restaurant) (string, error) {
	start := time.Now()
	defer observe("records", "create", start)

	if err := validateRecord(&r); err != nil {
		return "", err
	}
	release, err := s.acquire()
	if err != nil {
		return "", err
	}
	defer release()
	if r.ID == "" {
		r.ID = s.opts.newID()
	}
	doc, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO restaurants (id, style, doc, created_at) VALUES (?, ?, ?, ?)`,
		r.ID, r.Style, string(doc), s.opts.now().UTC().Format(model.TimestampLayout))
	if err != nil {
		metrics.RecordStoreError("records", "create")
		return "", fmt.Errorf("insert restaurant: %w", err)
	}
	if n, err := s.count(ctx); err == nil {
		metrics.UpdateRestaurantCount(n)
	}
	return r.ID, nil
}

// QueryRecords scans every partition, or only the requested one when the
// predicate pins the style.
func (s *SQLiteStore) QueryRecords(ctx context.Context, p Predicate) ([]model.Restaurant, error) {
	start := time.Now()
	defer observe("records", "query", start)

	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	query := `SELECT doc FROM restaurants ORDER BY style, rowid`
	var args []any
	if style, ok := p.Value(partitionKey); ok {
		query = `SELECT doc FROM restaurants WHERE style = ? ORDER BY rowid`
		args = append(args, style)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordStoreError("records", "query")
		return nil, fmt.Errorf("query restaurants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Restaurant
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			metrics.RecordStoreError("records", "query")
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		ok, err := s.eval.Match(p, []byte(doc))
		if err != nil {
			metrics.RecordStoreError("records", "query")
			return nil, err
		}
		if !ok {
			continue
		}
		var r model.Restaurant
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			metrics.RecordStoreError("records", "query")
			return nil, fmt.Errorf("decode restaurant: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError("records", "query")
		return nil, fmt.Errorf("iterate restaurants: %w", err)
	}
	return out, nil
}

// Count returns the number of stored restaurants.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	release, err := s.acquire()
	if err != nil {
		return 0, err
	}
	defer release()
	return s.count(ctx)
}

func (s *SQLiteStore) count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM restaurants`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count restaurants: %w", err)
	}
	return n, nil
}

// AppendEntry inserts e; the response payload is stored compressed.
func (s *SQLiteStore) AppendEntry(ctx context.Context, e model.RequestLogEntry) error {
	start := time.Now()
	defer observe("audit", "append", start)

	if err := validateEntry(&e); err != nil {
		return err
	}
	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()
	if e.ID == "" {
		e.ID = s.opts.newID()
	}
	req, err := json.Marshal(e.Request)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	resp, err := json.Marshal(e.Response)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO request_log (id, endpoint, timestamp, request, response) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Endpoint, e.Timestamp.UTC().Format(model.TimestampLayout), string(req), s.enc.EncodeAll(resp, nil))
	if err != nil {
		metrics.RecordStoreError("audit", "append")
		return fmt.Errorf("insert request log: %w", err)
	}
	return nil
}

// ListEntries returns every entry, endpoint by endpoint, in append order.
func (s *SQLiteStore) ListEntries(ctx context.Context) ([]model.RequestLogEntry, error) {
	release, err := s.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, endpoint, timestamp, request, response FROM request_log ORDER BY endpoint, seq`)
	if err != nil {
		metrics.RecordStoreError("audit", "list")
		return nil, fmt.Errorf("query request log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.RequestLogEntry
	for rows.Next() {
		var (
			e        model.RequestLogEntry
			ts, req  string
			response []byte
		)
		if err := rows.Scan(&e.ID, &e.Endpoint, &ts, &req, &response); err != nil {
			return nil, fmt.Errorf("scan request log: %w", err)
		}
		if e.Timestamp, err = time.Parse(model.TimestampLayout, ts); err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		if err := json.Unmarshal([]byte(req), &e.Request); err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}
		raw, err := s.dec.DecodeAll(response, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress response: %w", err)
		}
		if err := json.Unmarshal(raw, &e.Response); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate request log: %w", err)
	}
	return out, nil
}
