package model

import "time"

// RequestLogEntry is one immutable audit record. Endpoint is the partition key.
type RequestLogEntry struct {
	ID        string              `json:"id"`
	Endpoint  string              `json:"endpoint"`
	Request   map[string][]string `json:"request"`
	Response  any                 `json:"response"`
	Timestamp time.Time           `json:"timestamp"`
}

// TimestampLayout is the ISO-8601 form used when entries are serialized.
const TimestampLayout = time.RFC3339Nano
