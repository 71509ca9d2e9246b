package audit

import "errors"

// Sentinel errors for audit input validation.
var (
	ErrNoPromotions     = errors.New("at least one employee must be marked promoted")
	ErrInvalidAmount    = errors.New("human bonus amounts must be finite and non-negative")
	ErrInvalidDecision  = errors.New("promotion decisions must be 0 or 1")
	ErrFlagIrreversible = errors.New("audit flags cannot be cleared")
)
