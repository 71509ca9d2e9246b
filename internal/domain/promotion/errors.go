package promotion

import "errors"

// Sentinel errors for promotion ranking.
var (
	ErrInvalidSlots = errors.New("total slots must be greater than zero")
)
