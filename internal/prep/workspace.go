package prep

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/born-ml/dataprep/internal/cache"
	"github.com/born-ml/dataprep/internal/codec"
	"github.com/born-ml/dataprep/internal/descriptor"
	"github.com/born-ml/dataprep/internal/metrics"
	"github.com/born-ml/dataprep/internal/synth"
	"github.com/born-ml/dataprep/internal/tensor"
)

// rename is replaced in tests to simulate a failing commit.
var rename = os.Rename

// SplitFiles maps split names to payload file names.
var SplitFiles = map[string]string{
	descriptor.TrainInputs:  "X_tr.dat",
	descriptor.TrainOutputs: "y_tr.dat",
	descriptor.TestInputs:   "X_te.dat",
	descriptor.TestOutputs:  "y_te.dat",
}

// Workspace is the staging area of one preparation run.
type Workspace struct {
	name      string
	runID     string
	sourceDir string
	dir       string // staging directory
	final     string // committed dataset directory
	seeded    bool
	src       *rand.PCG

	logger  *slog.Logger
	metrics *metrics.Metrics
}

func newWorkspace(outputDir, sourceDir, name, runID string, seed uint64, logger *slog.Logger, m *metrics.Metrics) (*Workspace, error) {
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	dir := filepath.Join(outputDir, name+cache.StagingMarker+runID)
	if err := os.Mkdir(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &Workspace{
		name:      name,
		runID:     runID,
		sourceDir: sourceDir,
		dir:       dir,
		final:     filepath.Join(outputDir, name),
		src:       synth.NewSource(seed, name),
		logger:    logger,
		metrics:   m,
	}, nil
}

// Name returns the dataset being prepared.
func (w *Workspace) Name() string {
	return w.name
}

// Dir returns the staging directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Logger returns the run's logger.
func (w *Workspace) Logger() *slog.Logger {
	return w.logger
}

// SourcePath joins elem onto <source>/<name>.
func (w *Workspace) SourcePath(elem ...string) string {
	return filepath.Join(append([]string{w.sourceDir, w.name}, elem...)...)
}

// Rand returns the dataset's random source, derived from the run seed and the dataset
// name. Every call returns the same source, so successive draws continue one stream.
// Calling Rand marks the run as seeded, so the descriptor records the seed.
func (w *Workspace) Rand() rand.Source {
	w.seeded = true
	return w.src
}

// WriteSplit writes a into the staging directory under the split's file name and
// records the resulting split in d.
func (w *Workspace) WriteSplit(d *descriptor.Descriptor, split string, a tensor.Array) error {
	file, ok := SplitFiles[split]
	if !ok {
		return fmt.Errorf("unknown split %q", split)
	}

	written, err := codec.WriteFile(filepath.Join(w.dir, file), a)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", split, err)
	}

	s := &descriptor.Split{
		Path:     file,
		Shape:    a.Shape().Clone(),
		DType:    a.DType(),
		Checksum: written.Checksum,
	}
	if err := d.SetSplit(split, s); err != nil {
		return err
	}

	w.logger.Debug("split written",
		slog.String("split", split),
		slog.String("path", file),
		slog.String("shape", s.Shape.String()),
		slog.String("dtype", s.DType.String()),
		slog.Int64("bytes", written.Bytes))
	w.metrics.RecordSplit(w.name, split, written.Bytes)
	return nil
}

// commit replaces the dataset directory with the staging directory.
func (w *Workspace) commit() error {
	old := w.final + cache.OldMarker + w.runID
	moved := false
	if _, err := os.Stat(w.final); err == nil {
		if err := rename(w.final, old); err != nil {
			return fmt.Errorf("failed to move previous dataset aside: %w", err)
		}
		moved = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat dataset directory: %w", err)
	}

	if err := rename(w.dir, w.final); err != nil {
		if moved {
			if rerr := rename(old, w.final); rerr != nil {
				w.logger.Error("failed to restore previous dataset",
					slog.String("path", old), slog.String("error", rerr.Error()))
			}
		}
		return fmt.Errorf("failed to commit dataset: %w", err)
	}
	if moved {
		if err := os.RemoveAll(old); err != nil {
			w.logger.Warn("failed to remove previous dataset", slog.String("path", old), slog.String("error", err.Error()))
		}
	}
	return nil
}

// discard removes the staging directory.
func (w *Workspace) discard() {
	if err := os.RemoveAll(w.dir); err != nil {
		w.logger.Warn("failed to remove staging directory", slog.String("path", w.dir), slog.String("error", err.Error()))
	}
}
