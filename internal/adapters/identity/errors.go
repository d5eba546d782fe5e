package identity

import "errors"

var (
	// ErrInvalidUser is returned when a user definition lacks a name or password.
	ErrInvalidUser = errors.New("invalid user")
	// ErrUserExists is returned when provisioning a name that is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrMalformedCredential is returned for an unparsable Basic credential.
	ErrMalformedCredential = errors.New("malformed credential")
)
