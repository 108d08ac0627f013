package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog operations.
var (
	// ErrNotFound means the identifier does not resolve to a title.
	// Permanent for that identifier within a batch.
	ErrNotFound = errors.New("catalog: title not found")
	// ErrUnavailable covers network failures, timeouts, throttling, and
	// server errors. Transient; a later batch may succeed.
	ErrUnavailable = errors.New("catalog: unavailable")
	// ErrBadRequest means the request was malformed (e.g. empty bid).
	ErrBadRequest = errors.New("catalog: bad request")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "lookup"
	BID string
	Err error
}

func (e *Error) Error() string {
	if e.BID != "" {
		return fmt.Sprintf("catalog %s [%s]: %v", e.Op, e.BID, e.Err)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op, bid string, err error) error {
	return &Error{Op: op, BID: bid, Err: err}
}
