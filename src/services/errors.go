package services

import "errors"

// Sentinel errors for explicit error handling
// These errors allow callers to distinguish between different failure modes
// using errors.Is() instead of string matching

var (
	// ErrInvalidCredentials indicates authentication failed. It is returned
	// for unknown usernames, wrong passwords and disabled accounts alike so
	// the response never reveals which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation indicates malformed input
	ErrValidation = errors.New("validation failed")

	// ErrStoreUnavailable indicates the credential store could not be
	// reached. On read paths this fails closed; on the audit-write path it
	// is logged and swallowed.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = errors.New("not found")
)
