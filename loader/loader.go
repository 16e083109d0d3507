// Package loader loads prepared datasets for training code.
//
// This package wraps the internal loader and exports a small public API for reading
// the payloads written by dataprep.
//
// Example usage:
//
//	import "github.com/born-ml/dataprep/loader"
//
//	ds, err := loader.Open(ctx, "data", "toyReg", loader.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(ds.Descriptor.ModelName, ds.TrainInputs.Shape())
package loader

import (
	"context"

	"github.com/born-ml/dataprep/internal/descriptor"
	"github.com/born-ml/dataprep/internal/loader"
)

// Descriptor is the metadata record of a prepared dataset.
type Descriptor = descriptor.Descriptor

// Split locates one payload file.
type Split = descriptor.Split

// Value is an auxiliary descriptor value (scalar, integer or tensor).
type Value = descriptor.Value

// TrainTestDataset holds the decoded splits of a dataset. Absent splits are nil.
type TrainTestDataset = loader.TrainTestDataset

// Options controls loading.
type Options = loader.Options

// ErrMissingSplit is returned when a required split is absent.
var ErrMissingSplit = loader.ErrMissingSplit

// Load reads every split of d from dir, verifying recorded checksums.
func Load(dir string, d *Descriptor, opts Options) (*TrainTestDataset, error) {
	return loader.Load(dir, d, opts)
}

// Open loads dataset name from outputDir using the descriptor stored beside its payloads.
//
// Example:
//
//	ds, err := loader.Open(ctx, "data", "NoisyOpt_isoSmall", loader.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sigma, _ := ds.Descriptor.ExtraFloat("sigma_noise")
func Open(ctx context.Context, outputDir, name string, opts Options) (*TrainTestDataset, error) {
	return loader.Open(ctx, outputDir, name, opts)
}

// Decode reads a JSON descriptor.
func Decode(data []byte) (*Descriptor, error) {
	return descriptor.Unmarshal(data)
}
