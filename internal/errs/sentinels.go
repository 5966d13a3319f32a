// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across session/cache/query layers.
var (
	// ErrNotReady indicates a call was attempted before the remote binding
	// existed. Reads absorb it into neutral defaults; mutations surface it.
	ErrNotReady = errors.New("remote binding not ready")

	// ErrAlreadyAuthenticated indicates login was called while a capability
	// is already active; the caller must clear first.
	ErrAlreadyAuthenticated = errors.New("already authenticated")

	// ErrLoginInFlight indicates a concurrent login attempt was rejected.
	ErrLoginInFlight = errors.New("login already in flight")

	// ErrAuthenticationFailed indicates the identity provider did not
	// complete the login; session state is left idle.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrUnauthorized indicates the backend rejected the caller's identity
	// or role for the attempted operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation indicates required input was missing or malformed;
	// detected locally before any remote call is issued.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
)
