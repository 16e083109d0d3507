package prep

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/born-ml/dataprep/internal/cache"
	"github.com/born-ml/dataprep/internal/descriptor"
)

// Preparer produces one named dataset.
type Preparer interface {
	// Name is the registry key and the dataset directory name.
	Name() string
	// ModelName is the model family tag recorded in the descriptor.
	ModelName() string
	// Prepare writes every split into ws and returns the populated descriptor.
	Prepare(ctx context.Context, ws *Workspace) (*descriptor.Descriptor, error)
}

// Registry maps dataset names to preparers. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	preparers map[string]Preparer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{preparers: make(map[string]Preparer)}
}

// Register adds p. Names must be unique and usable as a directory name.
func (r *Registry) Register(p Preparer) error {
	name := p.Name()
	if err := cache.ValidateName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.preparers[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateDataset, name)
	}
	r.preparers[name] = p
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(ps ...Preparer) {
	for _, p := range ps {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the preparer registered under name.
func (r *Registry) Lookup(name string) (Preparer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.preparers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return p, nil
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.preparers))
}
