package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted         = errors.New("service not started")
	ErrMissingStore       = errors.New("rating source and audit store are required")
	ErrSubmissionInFlight = errors.New("a submission with this idempotency key is still in progress")
)
