package store

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired indicates a mutation was attempted while the backend is configured
	// but nobody is signed in.
	ErrAuthRequired = errors.New("authentication required")
	// ErrNotFound indicates no item (or no owned row) matched the id.
	ErrNotFound = errors.New("item not found")
	// ErrPositionTaken indicates a requested roadmap position is held by another item of
	// the same sequence.
	ErrPositionTaken = errors.New("position already taken")
)

// RemoteError wraps a failure reported by the remote store.
type RemoteError struct {
	Entity string
	Op     string
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Entity, e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// PartialReorderError reports a reorder that stopped after persisting Applied of Total
// rows. Local items are left untouched, so they diverge from the remote store until the
// next fetch.
type PartialReorderError struct {
	Entity  string
	Applied int
	Total   int
	Err     error
}

func (e *PartialReorderError) Error() string {
	return fmt.Sprintf("%s reorder applied %d of %d: %v", e.Entity, e.Applied, e.Total, e.Err)
}

func (e *PartialReorderError) Unwrap() error { return e.Err }
