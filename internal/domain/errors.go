package domain

import "errors"

// Storage-level error kinds. Repositories wrap these with %w so callers can
// branch with errors.Is regardless of the backend.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrUnavailable  = errors.New("storage unavailable")
)
