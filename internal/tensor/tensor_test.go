package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
		name  string
	}{
		{Float32, 4, "float32"},
		{Float64, 8, "float64"},
		{Int32, 4, "int32"},
		{Int64, 8, "int64"},
		{Uint8, 1, "uint8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.size, tt.dtype.Size())
			assert.Equal(t, tt.name, tt.dtype.String())

			parsed, err := ParseDataType(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.dtype, parsed)
		})
	}
}

func TestParseDataTypeUnknown(t *testing.T) {
	_, err := ParseDataType("complex128")
	assert.Error(t, err)
}

func TestDataTypeText(t *testing.T) {
	text, err := Uint8.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "uint8", string(text))

	var dt DataType
	require.NoError(t, dt.UnmarshalText([]byte("float64")))
	assert.Equal(t, Float64, dt)

	_, err = DataType(42).MarshalText()
	assert.Error(t, err)
}

func TestShape(t *testing.T) {
	s := Shape{25000, 78}
	assert.Equal(t, 25000*78, s.NumElements())
	assert.NoError(t, s.Validate())
	assert.Equal(t, "(25000, 78)", s.String())
	assert.Equal(t, "(5,)", Shape{5}.String())

	c := s.Clone()
	c[0] = 1
	assert.Equal(t, 25000, s[0], "clone must not alias")
	assert.False(t, s.Equal(c))
	assert.True(t, s.Equal(Shape{25000, 78}))

	assert.Error(t, Shape{}.Validate())
	assert.Error(t, Shape{3, 0}.Validate())
	assert.Error(t, Shape{-1}.Validate())
}

func TestDense(t *testing.T) {
	d, err := New(Shape{2, 3}, []float64{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)

	assert.Equal(t, Float64, d.DType())
	assert.Equal(t, 6, d.NumElements())
	assert.Equal(t, 48, d.ByteSize())
	assert.Equal(t, 2, d.Rows())
	assert.Equal(t, 3, d.Cols())
	assert.Equal(t, []float64{3, 4, 5}, d.Row(1))
	assert.Equal(t, 5.0, d.At(1, 2))

	d.Set(0, 1, 9)
	assert.Equal(t, 9.0, d.Data()[1])

	_, err = New(Shape{2, 2}, []uint8{1, 2, 3})
	assert.Error(t, err)
}

func TestZeros(t *testing.T) {
	labels, err := Zeros[uint8](Shape{4, 1})
	require.NoError(t, err)
	assert.Equal(t, Uint8, labels.DType())
	assert.Equal(t, []uint8{0, 0, 0, 0}, labels.Data())

	var a Array = labels
	assert.IsType(t, []uint8{}, a.Values())

	_, err = Zeros[float64](Shape{0, 3})
	assert.Error(t, err)
	assert.Panics(t, func() { MustZeros[float64](Shape{}) })
}

func TestToFloat64(t *testing.T) {
	pixels := make([]uint8, 10000)
	for i := range pixels {
		pixels[i] = uint8(i)
	}
	u8, err := New(Shape{100, 100}, pixels)
	require.NoError(t, err)

	f, err := ToFloat64(u8)
	require.NoError(t, err)
	assert.Equal(t, Shape{100, 100}, f.Shape())
	for i, p := range pixels {
		if f.Data()[i] != float64(p) {
			t.Fatalf("element %d: got %v, want %d", i, f.Data()[i], p)
		}
	}

	orig := MustZeros[float64](Shape{2})
	same, err := ToFloat64(orig)
	require.NoError(t, err)
	assert.Same(t, orig, same)

	i64, err := New(Shape{2}, []int64{-3, 9})
	require.NoError(t, err)
	f, err = ToFloat64(i64)
	require.NoError(t, err)
	assert.Equal(t, []float64{-3, 9}, f.Data())

	_, err = ToFloat64(nil)
	assert.Error(t, err)
}
