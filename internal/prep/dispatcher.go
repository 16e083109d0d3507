package prep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/dataprep/internal/cache"
	"github.com/born-ml/dataprep/internal/descriptor"
	"github.com/born-ml/dataprep/internal/logging"
	"github.com/born-ml/dataprep/internal/metrics"
)

// Options configures a Dispatcher.
type Options struct {
	OutputDir string // prepared datasets, one subdirectory per name
	SourceDir string // raw inputs, one subdirectory per name

	// Seed drives synthetic datasets. Zero derives a seed from the clock once per
	// Dispatcher; the chosen value is logged and recorded in each descriptor.
	Seed uint64

	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Now stamps descriptors. Defaults to time.Now.
	Now func() time.Time
}

// Dispatcher prepares datasets by name.
type Dispatcher struct {
	registry *Registry
	cache    cache.Cache
	opts     Options
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDispatcher returns a dispatcher over reg that persists descriptors in c.
func NewDispatcher(reg *Registry, c cache.Cache, opts Options) *Dispatcher {
	opts.Logger = logging.OrNop(opts.Logger)
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(opts.Now().UnixNano())
		opts.Logger.Info("derived seed from clock", slog.Uint64("seed", opts.Seed))
	}
	return &Dispatcher{
		registry: reg,
		cache:    c,
		opts:     opts,
		logger:   opts.Logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Seed returns the seed used for synthetic datasets.
func (d *Dispatcher) Seed() uint64 {
	return d.opts.Seed
}

// DatasetDir returns the committed directory of a dataset.
func (d *Dispatcher) DatasetDir(name string) string {
	return filepath.Join(d.opts.OutputDir, name)
}

func (d *Dispatcher) lock(name string) func() {
	d.mu.Lock()
	l, ok := d.locks[name]
	if !ok {
		l = &sync.Mutex{}
		d.locks[name] = l
	}
	d.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Prepare returns the descriptor of the named dataset. With skip set it is read from the
// cache and no source is touched; otherwise the dataset is rebuilt from its sources.
func (d *Dispatcher) Prepare(ctx context.Context, name string, skip bool) (*descriptor.Descriptor, error) {
	p, err := d.registry.Lookup(name)
	if err != nil {
		return nil, err
	}

	unlock := d.lock(name)
	defer unlock()

	start := time.Now()
	logger := d.logger.With(slog.String("dataset", name))

	if skip {
		desc, err := d.loadCached(ctx, name)
		if err != nil {
			d.opts.Metrics.RecordPreparation(name, metrics.OutcomeError, time.Since(start))
			return nil, err
		}
		logger.Info("using cached descriptor", slog.String("run_id", desc.RunID))
		d.opts.Metrics.RecordPreparation(name, metrics.OutcomeCached, time.Since(start))
		return desc, nil
	}

	desc, err := d.build(ctx, p, logger)
	if err != nil {
		logger.Error("preparation failed", slog.String("error", err.Error()))
		d.opts.Metrics.RecordPreparation(name, metrics.OutcomeError, time.Since(start))
		return nil, err
	}

	logger.Info("dataset prepared",
		slog.String("run_id", desc.RunID),
		slog.String("model", desc.ModelName),
		slog.Int("splits", len(desc.Splits())),
		slog.Int64("bytes", desc.TotalBytes()),
		slog.Duration("elapsed", time.Since(start)))
	d.opts.Metrics.RecordPreparation(name, metrics.OutcomeSuccess, time.Since(start))
	return desc, nil
}

func (d *Dispatcher) loadCached(ctx context.Context, name string) (*descriptor.Descriptor, error) {
	desc, err := d.cache.Load(ctx, name)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotPrepared, name)
	}
	if err != nil {
		return nil, err
	}
	if err := desc.Validate(d.DatasetDir(name)); err != nil {
		return nil, fmt.Errorf("cached dataset %s is inconsistent: %w", name, err)
	}
	return desc, nil
}

func (d *Dispatcher) build(ctx context.Context, p Preparer, logger *slog.Logger) (*descriptor.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := p.Name()
	runID := uuid.NewString()
	logger = logger.With(slog.String("run_id", runID))

	ws, err := newWorkspace(d.opts.OutputDir, d.opts.SourceDir, name, runID, d.opts.Seed, logger, d.opts.Metrics)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			ws.discard()
		}
	}()

	desc, err := p.Prepare(ctx, ws)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s: %w", name, err)
	}
	if desc == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilDescriptor, name)
	}

	if desc.Dataset == "" {
		desc.Dataset = name
	}
	if desc.Dataset != name {
		return nil, fmt.Errorf("preparer %s returned descriptor for %q", name, desc.Dataset)
	}
	desc.FormatVersion = descriptor.FormatVersion
	desc.RunID = runID
	desc.PreparedAt = d.opts.Now().UTC()
	desc.Seed = 0
	if ws.seeded {
		desc.Seed = d.opts.Seed
	}

	if err := desc.Validate(ws.Dir()); err != nil {
		return nil, fmt.Errorf("prepared dataset %s is invalid: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s, ok := d.stager(); ok {
		if err := s.Stage(ws.Dir(), desc); err != nil {
			return nil, fmt.Errorf("failed to stage descriptor for %s: %w", name, err)
		}
		if err := ws.commit(); err != nil {
			return nil, err
		}
		committed = true
		return desc, nil
	}

	prev, err := d.cache.Load(ctx, name)
	switch {
	case errors.Is(err, cache.ErrNotFound):
		prev = nil
	case err != nil:
		logger.Warn("previous descriptor unreadable", slog.String("error", err.Error()))
		prev = nil
	}
	if err := d.cache.Delete(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to invalidate cached descriptor: %w", err)
	}
	if err := ws.commit(); err != nil {
		if prev != nil {
			if rerr := d.cache.Store(context.WithoutCancel(ctx), prev); rerr != nil {
				logger.Error("failed to restore previous descriptor", slog.String("error", rerr.Error()))
			}
		}
		return nil, err
	}
	committed = true

	if err := d.cache.Store(ctx, desc); err != nil {
		return nil, fmt.Errorf("failed to store descriptor for %s: %w", name, err)
	}
	return desc, nil
}

// stager returns the cache as a Stager when it keeps descriptors inside the dataset
// directories this dispatcher writes.
func (d *Dispatcher) stager() (cache.Stager, bool) {
	s, ok := d.cache.(cache.Stager)
	if !ok || filepath.Clean(s.Root()) != filepath.Clean(d.opts.OutputDir) {
		return nil, false
	}
	return s, true
}

// PrepareAll prepares the distinct names with at most parallelism running at once.
// Results are returned in the order of names. The first failure cancels the rest.
func (d *Dispatcher) PrepareAll(ctx context.Context, names []string, skip bool, parallelism int) ([]*descriptor.Descriptor, error) {
	for _, name := range names {
		if _, err := d.registry.Lookup(name); err != nil {
			return nil, err
		}
	}
	if parallelism < 1 {
		parallelism = 1
	}

	out := make([]*descriptor.Descriptor, len(names))
	first := make(map[string]int, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, name := range names {
		if _, dup := first[name]; dup {
			continue
		}
		first[name] = i
		g.Go(func() error {
			desc, err := d.Prepare(gctx, name, skip)
			if err != nil {
				return err
			}
			out[i] = desc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, name := range names {
		if out[i] == nil {
			out[i] = out[first[name]]
		}
	}
	return out, nil
}
