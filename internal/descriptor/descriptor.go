package descriptor

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/born-ml/dataprep/internal/tensor"
)

// FormatVersion is the current descriptor document version.
const FormatVersion = 1

// Split names, in canonical order.
const (
	TrainInputs  = "train_inputs"
	TrainOutputs = "train_outputs"
	TestInputs   = "test_inputs"
	TestOutputs  = "test_outputs"
)

// Split locates one payload file and the layout needed to decode it.
type Split struct {
	Path     string          `json:"path" yaml:"path"`
	Shape    tensor.Shape    `json:"shape" yaml:"shape"`
	DType    tensor.DataType `json:"dtype" yaml:"dtype"`
	Checksum string          `json:"checksum,omitempty" yaml:"checksum,omitempty"` // hex SHA-256 of the payload
}

// ByteSize returns the payload size implied by shape and dtype.
func (s *Split) ByteSize() int64 {
	return int64(s.Shape.NumElements()) * int64(s.DType.Size())
}

// Descriptor is the metadata record of one prepared dataset.
type Descriptor struct {
	FormatVersion int       `json:"format_version" yaml:"format_version"`
	Dataset       string    `json:"dataset" yaml:"dataset"`
	ModelName     string    `json:"model_name" yaml:"model_name"`
	RunID         string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	PreparedAt    time.Time `json:"prepared_at" yaml:"prepared_at"`
	Seed          uint64    `json:"seed,omitempty" yaml:"seed,omitempty"`

	TrainInputs  *Split `json:"train_inputs" yaml:"train_inputs"`
	TrainOutputs *Split `json:"train_outputs" yaml:"train_outputs"`
	TestInputs   *Split `json:"test_inputs" yaml:"test_inputs"`
	TestOutputs  *Split `json:"test_outputs" yaml:"test_outputs"`

	Extra map[string]Value `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// New returns an empty descriptor for the given dataset and model family.
func New(dataset, modelName string) *Descriptor {
	return &Descriptor{
		FormatVersion: FormatVersion,
		Dataset:       dataset,
		ModelName:     modelName,
	}
}

// NamedSplit pairs a split with its canonical name.
type NamedSplit struct {
	Name  string
	Split *Split
}

// Splits returns the present splits in canonical order.
func (d *Descriptor) Splits() []NamedSplit {
	all := []NamedSplit{
		{TrainInputs, d.TrainInputs},
		{TrainOutputs, d.TrainOutputs},
		{TestInputs, d.TestInputs},
		{TestOutputs, d.TestOutputs},
	}
	out := all[:0]
	for _, ns := range all {
		if ns.Split != nil {
			out = append(out, ns)
		}
	}
	return out
}

// SetSplit assigns a split by canonical name.
func (d *Descriptor) SetSplit(name string, s *Split) error {
	switch name {
	case TrainInputs:
		d.TrainInputs = s
	case TrainOutputs:
		d.TrainOutputs = s
	case TestInputs:
		d.TestInputs = s
	case TestOutputs:
		d.TestOutputs = s
	default:
		return fmt.Errorf("unknown split %q", name)
	}
	return nil
}

// HasTestSplit reports whether the dataset carries held-out data.
func (d *Descriptor) HasTestSplit() bool {
	return d.TestInputs != nil || d.TestOutputs != nil
}

// TotalBytes returns the combined payload size of all present splits.
func (d *Descriptor) TotalBytes() int64 {
	var n int64
	for _, ns := range d.Splits() {
		n += ns.Split.ByteSize()
	}
	return n
}

// SetExtra records an auxiliary value.
func (d *Descriptor) SetExtra(key string, v Value) {
	if d.Extra == nil {
		d.Extra = make(map[string]Value)
	}
	d.Extra[key] = v
}

// ExtraKeys returns the auxiliary keys in sorted order.
func (d *Descriptor) ExtraKeys() []string {
	return slices.Sorted(maps.Keys(d.Extra))
}

// ExtraFloat returns a scalar auxiliary value.
func (d *Descriptor) ExtraFloat(key string) (float64, error) {
	v, ok := d.Extra[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingExtra, key)
	}
	f, ok := v.AsFloat()
	if !ok {
		return 0, fmt.Errorf("extra %q is a %s, not a scalar", key, v.Kind)
	}
	return f, nil
}

// ExtraInt returns an integer auxiliary value.
func (d *Descriptor) ExtraInt(key string) (int, error) {
	v, ok := d.Extra[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingExtra, key)
	}
	n, ok := v.AsInt()
	if !ok {
		return 0, fmt.Errorf("extra %q is a %s, not an int", key, v.Kind)
	}
	return n, nil
}

// ExtraArray returns a tensor auxiliary value.
func (d *Descriptor) ExtraArray(key string) (*tensor.Float64Array, error) {
	v, ok := d.Extra[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingExtra, key)
	}
	a, ok := v.AsArray()
	if !ok {
		return nil, fmt.Errorf("extra %q is a %s, not a tensor", key, v.Kind)
	}
	return a, nil
}

// Encode writes the descriptor as indented JSON.
func Encode(w io.Writer, d *Descriptor) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode descriptor: %w", err)
	}
	return nil
}

// Marshal returns the JSON encoding of the descriptor.
func Marshal(d *Descriptor) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode descriptor: %w", err)
	}
	return data, nil
}

// Decode reads one descriptor and checks its format version and structure.
func Decode(r io.Reader) (*Descriptor, error) {
	var d Descriptor
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode descriptor: %w", err)
	}
	return checkDecoded(&d)
}

// Unmarshal parses a JSON descriptor.
func Unmarshal(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode descriptor: %w", err)
	}
	return checkDecoded(&d)
}

func checkDecoded(d *Descriptor) (*Descriptor, error) {
	if d.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrUnsupportedVersion, d.FormatVersion, FormatVersion)
	}
	if err := d.Validate(""); err != nil {
		return nil, err
	}
	return d, nil
}
