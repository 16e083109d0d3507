package tensor

import "fmt"

// Array is the runtime view of a dense array that the codec and loader work with.
type Array interface {
	Shape() Shape
	DType() DataType
	NumElements() int
	// Values returns the underlying row-major slice ([]float64, []uint8, ...).
	Values() any
}

// Dense is a row-major array of fixed-width elements.
type Dense[T Element] struct {
	shape Shape
	data  []T
}

// New wraps data in a Dense array of the given shape. The slice is not copied.
func New[T Element](shape Shape, data []T) (*Dense[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %s (%d elements)",
			len(data), shape, shape.NumElements())
	}
	return &Dense[T]{shape: shape.Clone(), data: data}, nil
}

// Zeros allocates a zero-filled Dense array.
func Zeros[T Element](shape Shape) (*Dense[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Dense[T]{shape: shape.Clone(), data: make([]T, shape.NumElements())}, nil
}

// MustZeros is like Zeros but panics on an invalid shape.
// Intended for shapes built from validated constants.
func MustZeros[T Element](shape Shape) *Dense[T] {
	d, err := Zeros[T](shape)
	if err != nil {
		panic(err)
	}
	return d
}

// Shape returns the array's shape.
func (d *Dense[T]) Shape() Shape {
	return d.shape
}

// DType returns the runtime data type of the elements.
func (d *Dense[T]) DType() DataType {
	return inferDataType[T]()
}

// NumElements returns the total number of elements.
func (d *Dense[T]) NumElements() int {
	return len(d.data)
}

// ByteSize returns the payload size in bytes.
func (d *Dense[T]) ByteSize() int {
	return len(d.data) * d.DType().Size()
}

// Data returns the underlying row-major slice. Writes are visible to the array.
func (d *Dense[T]) Data() []T {
	return d.data
}

// Values implements Array.
func (d *Dense[T]) Values() any {
	return d.data
}

// Rows returns the size of the outermost dimension.
func (d *Dense[T]) Rows() int {
	return d.shape[0]
}

// Cols returns the number of elements per outermost index.
func (d *Dense[T]) Cols() int {
	return len(d.data) / d.shape[0]
}

// Row returns a view of row i (all elements under outermost index i).
func (d *Dense[T]) Row(i int) []T {
	cols := d.Cols()
	return d.data[i*cols : (i+1)*cols]
}

// At returns the element at (row, col) of a two-dimensional array.
func (d *Dense[T]) At(row, col int) T {
	return d.data[row*d.Cols()+col]
}

// Set stores v at (row, col) of a two-dimensional array.
func (d *Dense[T]) Set(row, col int, v T) {
	d.data[row*d.Cols()+col] = v
}

// Float64Array is the array type used for continuous features and targets.
type Float64Array = Dense[float64]

// Uint8Array is the array type used for pixels and class labels.
type Uint8Array = Dense[uint8]
