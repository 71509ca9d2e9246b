package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidLimit      = errors.New("invalid list limit")
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrDuplicateRecord   = errors.New("audit record already exists")
)
