package tensor

import (
	"fmt"

	"github.com/born-ml/dataprep/internal/parallel"
)

// ToFloat64 returns a as a Float64Array. Float64 arrays are returned as is; other
// element types are widened into a new array.
func ToFloat64(a Array) (*Float64Array, error) {
	switch v := a.(type) {
	case *Float64Array:
		return v, nil
	case *Dense[float32]:
		return widen(v), nil
	case *Dense[int32]:
		return widen(v), nil
	case *Dense[int64]:
		return widen(v), nil
	case *Dense[uint8]:
		return widen(v), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to float64", a)
	}
}

func widen[T Element](src *Dense[T]) *Float64Array {
	dst := make([]float64, len(src.data))
	parallel.Range(len(dst), parallel.DefaultConfig(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = float64(src.data[i])
		}
	})
	return &Dense[float64]{shape: src.shape.Clone(), data: dst}
}
