package review

import "errors"

// Sentinel kinds for review errors.
var (
	ErrUnknownEntry = errors.New("entry is not part of the reviewed record")
	ErrMissingURL   = errors.New("base url is required")
)
