// Package store defines the persistence boundary shared by store
// implementations and their callers.
package store

import "errors"

// Sentinel errors returned by store implementations.
var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrUnavailable means the underlying database could not be reached
	// or the statement failed. Callers treat it as non-retryable within a
	// single request and propagate it.
	ErrUnavailable = errors.New("store: unavailable")
)
