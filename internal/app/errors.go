package service

import "errors"

var (
	// ErrEmptyQuery is returned when the recommendation query is blank.
	ErrEmptyQuery = errors.New("query parameters not provided")
	// ErrNoCriteriaParsed is returned when no criterion could be read from the query.
	ErrNoCriteriaParsed = errors.New("invalid query parameters")
	// ErrUnauthorized is returned when a caller lacks a permitted role.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoRequests is returned when the audit log is empty.
	ErrNoRequests = errors.New("no requests found")
	// ErrNotStarted is returned by operations invoked before Start.
	ErrNotStarted = errors.New("service not started")
)
