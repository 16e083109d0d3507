package prep

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/dataprep/internal/cache"
	"github.com/born-ml/dataprep/internal/codec"
	"github.com/born-ml/dataprep/internal/descriptor"
	"github.com/born-ml/dataprep/internal/metrics"
	"github.com/born-ml/dataprep/internal/tensor"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	out    string
	src    string
	cache  cache.Cache
	disp   *Dispatcher
	reg    *Registry
	metric *metrics.Metrics
}

func newFixture(t *testing.T, reg *Registry, c cache.Cache, m *metrics.Metrics) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		out:    filepath.Join(root, "data"),
		src:    filepath.Join(root, "raw"),
		reg:    reg,
		metric: m,
	}
	if c == nil {
		c = cache.NewFileCache(f.out)
	}
	f.cache = c
	f.disp = NewDispatcher(reg, c, Options{
		OutputDir: f.out,
		SourceDir: f.src,
		Seed:      42,
		Metrics:   m,
		Now:       func() time.Time { return fixedNow },
	})
	return f
}

func writeIDX(t *testing.T, path string, magic uint32, dims []uint32, payload []byte) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, magic))
	for _, d := range dims {
		require.NoError(t, binary.Write(&buf, binary.BigEndian, d))
	}
	buf.Write(payload)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

// writeMNIST creates a miniature MNIST source: 4 train and 3 test images of 2x2 pixels.
func writeMNIST(t *testing.T, dir string) {
	t.Helper()
	seq := func(n, start int) []byte {
		out := make([]byte, n)
		for i := range out {
			out[i] = byte(start + i)
		}
		return out
	}
	writeIDX(t, filepath.Join(dir, "train-images-idx3-ubyte"), 2051, []uint32{4, 2, 2}, seq(16, 0))
	writeIDX(t, filepath.Join(dir, "t10k-images-idx3-ubyte"), 2051, []uint32{3, 2, 2}, seq(12, 100))
	writeIDX(t, filepath.Join(dir, "train-labels-idx1-ubyte"), 2049, []uint32{4}, []byte{7, 2, 1, 0})
	writeIDX(t, filepath.Join(dir, "t10k-labels-idx1-ubyte"), 2049, []uint32{3}, []byte{4, 1, 9})
}

func readSplit(t *testing.T, dir string, s *descriptor.Split) tensor.Array {
	t.Helper()
	require.NotNil(t, s)
	a, err := codec.ReadFile(filepath.Join(dir, s.Path), s.Shape, s.DType)
	require.NoError(t, err)
	return a
}

// stagingLeft lists entries of dir other than committed dataset directories.
func stagingLeft(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)

	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	var left []string
	for _, e := range entries {
		if !keep[e.Name()] {
			left = append(left, e.Name())
		}
	}
	return left
}

// funcPreparer adapts a function to Preparer for tests.
type funcPreparer struct {
	name string
	fn   func(ctx context.Context, ws *Workspace) (*descriptor.Descriptor, error)
}

func (p funcPreparer) Name() string      { return p.name }
func (p funcPreparer) ModelName() string { return "Test" }
func (p funcPreparer) Prepare(ctx context.Context, ws *Workspace) (*descriptor.Descriptor, error) {
	return p.fn(ctx, ws)
}
