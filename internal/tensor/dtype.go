// Package tensor provides the dense array types shared by every stage of dataset preparation.
package tensor

import "fmt"

// Element is a constraint for element types that can be stored in a prepared dataset.
// Every element has a fixed byte width so arrays can be written without a header.
type Element interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

// DataType represents runtime type information for arrays.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns the numpy-compatible name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	default:
		return "unknown"
	}
}

// ParseDataType converts the string form produced by String back to a DataType.
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "float32":
		return Float32, nil
	case "float64":
		return Float64, nil
	case "int32":
		return Int32, nil
	case "int64":
		return Int64, nil
	case "uint8":
		return Uint8, nil
	default:
		return 0, fmt.Errorf("unknown data type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so descriptors store "float64" rather than 1.
func (dt DataType) MarshalText() ([]byte, error) {
	s := dt.String()
	if s == "unknown" {
		return nil, fmt.Errorf("cannot marshal data type %d", int(dt))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (dt *DataType) UnmarshalText(text []byte) error {
	parsed, err := ParseDataType(string(text))
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T Element]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	default:
		panic("unsupported type")
	}
}
