package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/born-ml/dataprep/internal/cache"
	"github.com/born-ml/dataprep/internal/config"
	"github.com/born-ml/dataprep/internal/logging"
	"github.com/born-ml/dataprep/internal/metrics"
	"github.com/born-ml/dataprep/internal/prep"
)

// rootOptions holds persistent flags.
type rootOptions struct {
	configPath string
	logLevel   string
	outputDir  string
	sourceDir  string
}

// app wires configuration, logging, cache and metrics for one command invocation.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	cache    cache.Cache
	registry *prep.Registry
	metrics  *metrics.Metrics
	gatherer *prometheus.Registry
	out      io.Writer

	// exportMetrics is set by commands that record metrics; only they rewrite the textfile.
	exportMetrics bool
}

func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	path := opts.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.outputDir != "" {
		if cfg.Cache.BadgerDir == filepath.Join(cfg.OutputDir, ".catalog") {
			cfg.Cache.BadgerDir = filepath.Join(opts.outputDir, ".catalog")
		}
		cfg.OutputDir = opts.outputDir
	}
	if opts.sourceDir != "" {
		cfg.SourceDir = opts.sourceDir
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.Config{
		Level:  level,
		JSON:   cfg.Log.JSON,
		Output: cmd.ErrOrStderr(),
	})

	c, err := cache.Open(cache.Options{
		Backend:   cache.Backend(cfg.Cache.Backend),
		OutputDir: cfg.OutputDir,
		BadgerDir: cfg.Cache.BadgerDir,
		Logger:    logger.With(slog.String("component", "catalog")),
	})
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	return &app{
		cfg:      cfg,
		logger:   logger,
		cache:    c,
		registry: prep.DefaultRegistry(),
		metrics:  metrics.New(reg),
		gatherer: reg,
		out:      cmd.OutOrStdout(),
	}, nil
}

func (a *app) dispatcher(seed uint64) *prep.Dispatcher {
	return prep.NewDispatcher(a.registry, a.cache, prep.Options{
		OutputDir: a.cfg.OutputDir,
		SourceDir: a.cfg.SourceDir,
		Seed:      seed,
		Logger:    a.logger,
		Metrics:   a.metrics,
	})
}

// close flushes metrics and releases the cache.
func (a *app) close() error {
	var firstErr error
	if a.exportMetrics && a.cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(a.gatherer, a.cfg.MetricsFile); err != nil {
			firstErr = err
		}
	}
	if err := a.cache.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close cache: %w", err)
	}
	return firstErr
}

// withApp runs fn with a fully wired app and closes it afterwards.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(*app) error) (err error) {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}
