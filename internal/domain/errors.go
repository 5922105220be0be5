package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingIdentifier signals an absent doc id or query on a feedback call.
	ErrMissingIdentifier = errors.New("missing document id or query")
	// ErrInvalidVote signals an unknown relevance vote.
	ErrInvalidVote = errors.New("invalid vote")
	// ErrInvalidAction signals an unknown feedback action.
	ErrInvalidAction = errors.New("invalid action")
	// ErrInvalidQuery signals an empty or malformed search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrSearchFailed signals a non-success response from the search backend.
	ErrSearchFailed = errors.New("search failed")
	// ErrBackendUnavailable signals a transport-level failure talking to the backend.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrQueueFull signals a dropped feedback request.
	ErrQueueFull = errors.New("feedback queue full")
	// ErrDispatcherClosed signals a dispatch after shutdown.
	ErrDispatcherClosed = errors.New("feedback dispatcher closed")
)

// StatusError wraps ErrSearchFailed with the backend HTTP status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: backend returned status %d", ErrSearchFailed.Error(), e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrSearchFailed }

// NewStatusError creates a search failure carrying the backend status code.
func NewStatusError(status int) error {
	return &StatusError{StatusCode: status}
}
