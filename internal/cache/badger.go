package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/born-ml/dataprep/internal/descriptor"
)

const keyPrefix = "descriptor/"

// BadgerConfig holds configuration for the catalog database.
type BadgerConfig struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal logs. If nil they are discarded.
	Logger *slog.Logger
}

// DefaultBadgerConfig returns durable settings for an on-disk catalog.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{SyncWrites: true}
}

// InMemoryBadgerConfig returns settings for tests.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// BadgerCache stores descriptors in an embedded BadgerDB under descriptor/<name>.
type BadgerCache struct {
	db *badger.DB
}

// OpenBadger opens (creating if needed) a catalog database.
func OpenBadger(cfg BadgerConfig) (*BadgerCache, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent catalog")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

func key(name string) []byte {
	return []byte(keyPrefix + name)
}

// Load reads the descriptor stored for name.
func (c *BadgerCache) Load(ctx context.Context, name string) (*descriptor.Descriptor, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog entry %s: %w", name, err)
	}

	d, err := descriptor.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load descriptor for %s: %w", name, err)
	}
	return d, nil
}

// Store writes the descriptor in a single transaction.
func (c *BadgerCache) Store(ctx context.Context, d *descriptor.Descriptor) error {
	if err := ValidateName(d.Dataset); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := descriptor.Marshal(d)
	if err != nil {
		return err
	}
	if err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(d.Dataset), data)
	}); err != nil {
		return fmt.Errorf("failed to write catalog entry %s: %w", d.Dataset, err)
	}
	return nil
}

// Delete removes the catalog entry for name.
func (c *BadgerCache) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(name))
	}); err != nil {
		return fmt.Errorf("failed to delete catalog entry %s: %w", name, err)
	}
	return nil
}

// Names lists catalog entries; badger iterates keys in sorted order.
func (c *BadgerCache) Names(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var names []string
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, string(it.Item().Key()[len(keyPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	return names, nil
}

// Close closes the catalog database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
