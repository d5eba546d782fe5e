// Package repository defines the record and audit store contracts and their
// memory and SQLite backends.
package repository

import (
	"context"
	"strings"

	"github.com/okian/platefinder/internal/domain/model"
)

// Condition requires a document field to equal Value in its canonical
// string form.
type Condition struct {
	Field string
	Value string
}

// Predicate is a conjunction of conditions. The empty predicate matches
// every record.
type Predicate []Condition

// Value returns the required value for field, if any.
func (p Predicate) Value(field string) (string, bool) {
	for _, c := range p {
		if c.Field == field {
			return c.Value, true
		}
	}
	return "", false
}

func (p Predicate) String() string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.Field + "=" + c.Value
	}
	return strings.Join(parts, " AND ")
}

// RecordStore holds restaurants partitioned by style.
type RecordStore interface {
	// CreateRecord stores r and returns its id. A missing id is generated.
	CreateRecord(ctx context.Context, r model.Restaurant) (string, error)

	// QueryRecords scans every partition and returns the records matching p
	// in store order.
	QueryRecords(ctx context.Context, p Predicate) ([]model.Restaurant, error)

	// Count returns the number of stored restaurants.
	Count(ctx context.Context) (int, error)
}

// AuditStore is an append-only log of request entries partitioned by endpoint.
type AuditStore interface {
	AppendEntry(ctx context.Context, e model.RequestLogEntry) error
	ListEntries(ctx context.Context) ([]model.RequestLogEntry, error)
}

// partitionKey is the document field records are partitioned by.
const partitionKey = "style"

func validateRecord(r *model.Restaurant) error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return invalidRecord("name")
	case strings.TrimSpace(r.Style) == "":
		return invalidRecord("style")
	case strings.TrimSpace(r.Address) == "":
		return invalidRecord("address")
	}
	return nil
}

func validateEntry(e *model.RequestLogEntry) error {
	if strings.TrimSpace(e.Endpoint) == "" {
		return invalidEntry("endpoint")
	}
	return nil
}
