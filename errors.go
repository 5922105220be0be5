package newsline

import "github.com/kailas-cloud/newsline/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery       = domain.ErrInvalidQuery
	ErrInvalidAction      = domain.ErrInvalidAction
	ErrSearchFailed       = domain.ErrSearchFailed
	ErrBackendUnavailable = domain.ErrBackendUnavailable
)

// StatusError carries the backend status of a failed search.
// It matches ErrSearchFailed.
type StatusError = domain.StatusError
