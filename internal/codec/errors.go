package codec

import "errors"

// Common errors.
var (
	ErrSizeMismatch       = errors.New("payload size does not match shape and data type")
	ErrChecksumMismatch   = errors.New("checksum mismatch: payload may be stale or corrupted")
	ErrUnsupportedDType   = errors.New("unsupported data type")
	ErrUnsupportedPayload = errors.New("unsupported array implementation")
)
