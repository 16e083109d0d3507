package descriptor

import (
	"fmt"

	"github.com/born-ml/dataprep/internal/tensor"
)

// ValueKind tags the variant held by a Value.
type ValueKind string

// Supported auxiliary value kinds.
const (
	KindFloat  ValueKind = "float"
	KindInt    ValueKind = "int"
	KindTensor ValueKind = "tensor"
)

// Value is a tagged union for auxiliary descriptor metadata.
type Value struct {
	Kind  ValueKind    `json:"kind" yaml:"kind"`
	Float float64      `json:"float,omitempty" yaml:"float,omitempty"`
	Int   int64        `json:"int,omitempty" yaml:"int,omitempty"`
	Shape tensor.Shape `json:"shape,omitempty" yaml:"shape,omitempty"`
	Data  []float64    `json:"data,omitempty" yaml:"data,omitempty"`
}

// Float returns a scalar float value.
func Float(v float64) Value {
	return Value{Kind: KindFloat, Float: v}
}

// Int returns an integer value.
func Int(v int) Value {
	return Value{Kind: KindInt, Int: int64(v)}
}

// Tensor returns a float64 tensor value. data is copied.
func Tensor(shape tensor.Shape, data []float64) Value {
	return Value{
		Kind:  KindTensor,
		Shape: shape.Clone(),
		Data:  append([]float64(nil), data...),
	}
}

// Vector returns a rank-1 tensor value.
func Vector(v []float64) Value {
	return Tensor(tensor.Shape{len(v)}, v)
}

// Matrix returns a rows x cols tensor value from row-major data.
func Matrix(rows, cols int, data []float64) Value {
	return Tensor(tensor.Shape{rows, cols}, data)
}

// Column returns a [len(v), 1] tensor value, the layout used for weight vectors.
func Column(v []float64) Value {
	return Tensor(tensor.Shape{len(v), 1}, v)
}

// FromArray returns a tensor value holding a copy of a float64 array.
func FromArray(a *tensor.Float64Array) Value {
	return Tensor(a.Shape(), a.Data())
}

// AsFloat returns the value as a float64. Integer values are converted.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindFloat:
		return v.Float, true
	case KindInt:
		return float64(v.Int), true
	default:
		return 0, false
	}
}

// AsInt returns the value of an integer Value.
func (v Value) AsInt() (int, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	return int(v.Int), true
}

// AsArray returns a tensor Value as a float64 array sharing the value's data.
func (v Value) AsArray() (*tensor.Float64Array, bool) {
	if v.Kind != KindTensor {
		return nil, false
	}
	arr, err := tensor.New(v.Shape, v.Data)
	if err != nil {
		return nil, false
	}
	return arr, true
}

func (v Value) validate() error {
	switch v.Kind {
	case KindFloat, KindInt:
		return nil
	case KindTensor:
		if err := v.Shape.Validate(); err != nil {
			return err
		}
		if len(v.Data) != v.Shape.NumElements() {
			return fmt.Errorf("tensor has %d values, shape %s needs %d", len(v.Data), v.Shape, v.Shape.NumElements())
		}
		return nil
	default:
		return fmt.Errorf("unknown value kind %q", v.Kind)
	}
}

// String formats the value for display.
func (v Value) String() string {
	switch v.Kind {
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindTensor:
		if len(v.Data) <= 8 {
			return fmt.Sprintf("%s %v", v.Shape, v.Data)
		}
		return fmt.Sprintf("%s [%g %g ... %g]", v.Shape, v.Data[0], v.Data[1], v.Data[len(v.Data)-1])
	default:
		return "<invalid>"
	}
}
