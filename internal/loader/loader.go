package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/born-ml/dataprep/internal/cache"
	"github.com/born-ml/dataprep/internal/codec"
	"github.com/born-ml/dataprep/internal/descriptor"
	"github.com/born-ml/dataprep/internal/tensor"
)

// ErrMissingSplit is returned when a required split is absent from a descriptor.
var ErrMissingSplit = errors.New("split not present in dataset")

// TrainTestDataset holds every split of a prepared dataset. Absent splits are nil.
type TrainTestDataset struct {
	Descriptor *descriptor.Descriptor

	TrainInputs  tensor.Array
	TrainOutputs tensor.Array
	TestInputs   tensor.Array
	TestOutputs  tensor.Array
}

// Options controls loading.
type Options struct {
	// SkipChecksum disables payload checksum verification.
	SkipChecksum bool
}

// Load reads every split of d from dir.
func Load(dir string, d *descriptor.Descriptor, opts Options) (*TrainTestDataset, error) {
	if err := d.Validate(""); err != nil {
		return nil, err
	}

	ds := &TrainTestDataset{Descriptor: d}
	targets := map[string]*tensor.Array{
		descriptor.TrainInputs:  &ds.TrainInputs,
		descriptor.TrainOutputs: &ds.TrainOutputs,
		descriptor.TestInputs:   &ds.TestInputs,
		descriptor.TestOutputs:  &ds.TestOutputs,
	}
	for _, ns := range d.Splits() {
		a, err := LoadSplit(dir, ns.Split, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s of %s: %w", ns.Name, d.Dataset, err)
		}
		*targets[ns.Name] = a
	}
	return ds, nil
}

// LoadSplit reads one split from dir.
func LoadSplit(dir string, s *descriptor.Split, opts Options) (tensor.Array, error) {
	if s == nil {
		return nil, ErrMissingSplit
	}
	checksum := s.Checksum
	if opts.SkipChecksum {
		checksum = ""
	}
	return codec.ReadFileVerified(filepath.Join(dir, s.Path), s.Shape, s.DType, checksum)
}

// Open reads the descriptor of name from a file cache rooted at outputDir, then loads
// the dataset.
func Open(ctx context.Context, outputDir, name string, opts Options) (*TrainTestDataset, error) {
	d, err := cache.NewFileCache(outputDir).Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return Load(filepath.Join(outputDir, name), d, opts)
}

// Float64Inputs returns the training and test inputs as float64 arrays, widening
// integer payloads such as MNIST pixels.
func (ds *TrainTestDataset) Float64Inputs() (train, test *tensor.Float64Array, err error) {
	train, err = asFloat64(descriptor.TrainInputs, ds.TrainInputs)
	if err != nil {
		return nil, nil, err
	}
	if ds.TestInputs == nil {
		return train, nil, nil
	}
	test, err = asFloat64(descriptor.TestInputs, ds.TestInputs)
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

func asFloat64(name string, a tensor.Array) (*tensor.Float64Array, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingSplit, name)
	}
	f, err := tensor.ToFloat64(a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}
