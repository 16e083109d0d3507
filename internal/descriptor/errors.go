package descriptor

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrUnsupportedVersion = errors.New("unsupported descriptor format version")
	ErrInvalidDescriptor  = errors.New("invalid descriptor")
	ErrMissingExtra       = errors.New("auxiliary value not present")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type    string // Type of error (e.g., "invalid_path", "size_mismatch")
	Field   string // Field or split involved, if any
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Field, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Unwrap lets errors.Is match ErrInvalidDescriptor.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidDescriptor
}
