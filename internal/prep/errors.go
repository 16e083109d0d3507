package prep

import "errors"

// Common errors.
var (
	ErrUnknownDataset   = errors.New("unknown dataset")
	ErrNotPrepared      = errors.New("dataset has not been prepared")
	ErrDuplicateDataset = errors.New("dataset already registered")
	ErrNilDescriptor    = errors.New("preparer returned no descriptor")
)
