package cache

import "errors"

// Common errors.
var (
	ErrNotFound       = errors.New("descriptor not found in cache")
	ErrInvalidName    = errors.New("invalid dataset name")
	ErrUnknownBackend = errors.New("unknown cache backend")
)
