// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels shared by transport, cache and services.
var (
	// ErrNotFound indicates the requested entity does not exist on the server.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a missing or expired session (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrMissingID is returned by get-by-id queries given a zero identity.
	// No request is issued; callers must not confuse this with ErrNotFound.
	ErrMissingID = errors.New("missing id")

	// ErrValidation indicates local input validation failed before any request was sent.
	ErrValidation = errors.New("validation failed")
)
