package bonus

import "errors"

// Sentinel errors for bonus allocation.
var (
	ErrInvalidPool = errors.New("bonus pool must be greater than zero")
)
