// Package cache persists dataset descriptors so a prepared dataset can be reused without
// re-reading its sources.
//
// Two backends are provided. FileCache stores each descriptor as info.json next to the
// dataset's payload files. BadgerCache keeps all descriptors in an embedded catalog
// database keyed by dataset name, which makes listing cheap when many datasets share an
// output directory.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/born-ml/dataprep/internal/descriptor"
)

// Cache stores descriptors by dataset name.
type Cache interface {
	// Load returns the stored descriptor or ErrNotFound.
	Load(ctx context.Context, name string) (*descriptor.Descriptor, error)
	// Store persists d under d.Dataset, replacing any previous descriptor as a whole.
	Store(ctx context.Context, d *descriptor.Descriptor) error
	// Delete removes the descriptor. Deleting a missing entry is not an error.
	Delete(ctx context.Context, name string) error
	// Names lists stored dataset names in sorted order.
	Names(ctx context.Context) ([]string, error)
	Close() error
}

// Stager is implemented by caches that keep the descriptor inside the dataset directory
// rooted at Root. Stage writes the descriptor into a staging directory before it is
// renamed into place.
type Stager interface {
	Root() string
	Stage(stagingDir string, d *descriptor.Descriptor) error
}

// Markers of the temporary sibling directories used while a dataset is replaced.
const (
	StagingMarker = ".staging-"
	OldMarker     = ".old-"
)

// IsTransient reports whether a directory name is a staging or superseded dataset
// directory rather than a committed one.
func IsTransient(name string) bool {
	return strings.Contains(name, StagingMarker) || strings.Contains(name, OldMarker)
}

// Backend selects a Cache implementation.
type Backend string

// Supported backends.
const (
	BackendFile   Backend = "file"
	BackendBadger Backend = "badger"
)

// Options configures Open.
type Options struct {
	Backend   Backend
	OutputDir string // dataset root, used by the file backend
	BadgerDir string // catalog directory, used by the badger backend
	Logger    *slog.Logger
}

// Open returns the cache selected by opts.Backend.
func Open(opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileCache(opts.OutputDir), nil
	case BackendBadger:
		cfg := DefaultBadgerConfig()
		cfg.Path = opts.BadgerDir
		cfg.Logger = opts.Logger
		return OpenBadger(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// ValidateName rejects names that cannot be used as a directory or key.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name == "." || strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a separator", ErrInvalidName, name)
	}
	return nil
}
