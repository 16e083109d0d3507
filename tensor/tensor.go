// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/dataprep/internal/tensor"
)

// Type aliases for public API

// Element is a constraint for array element types.
type Element = tensor.Element

// DataType represents the element type of an array.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
)

// Shape represents the dimensions of an array.
// Example: Shape{25000, 78} is 25000 rows of 78 features.
type Shape = tensor.Shape

// Array is the element-type-independent view of a dense array.
type Array = tensor.Array

// Dense is a row-major array of T.
type Dense[T Element] = tensor.Dense[T]

// Float64Array holds continuous values.
type Float64Array = tensor.Float64Array

// Uint8Array holds labels and pixel intensities.
type Uint8Array = tensor.Uint8Array

// New wraps data in an array of the given shape. len(data) must match the shape.
func New[T Element](shape Shape, data []T) (*Dense[T], error) {
	return tensor.New(shape, data)
}

// Zeros allocates a zero-filled array.
func Zeros[T Element](shape Shape) (*Dense[T], error) {
	return tensor.Zeros[T](shape)
}

// ParseDataType converts a name such as "float64" to a DataType.
func ParseDataType(s string) (DataType, error) {
	return tensor.ParseDataType(s)
}

// ToFloat64 returns a as a Float64Array, widening other element types.
func ToFloat64(a Array) (*Float64Array, error) {
	return tensor.ToFloat64(a)
}
