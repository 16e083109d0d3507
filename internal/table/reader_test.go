package table

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/born-ml/dataprep/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTable builds n rows of id, label, three features, trailing field.
// Row i has label i%2 and features i+0.1, i+0.2, i+0.3.
func makeTable(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%d\t%d\t%g\t%g\t%g\t-99\n", 1000+i, i%2, float64(i)+0.1, float64(i)+0.2, float64(i)+0.3)
	}
	return sb.String()
}

func TestReadPartitionsByPosition(t *testing.T) {
	tbl, err := Read(strings.NewReader(makeTable(10)), Options{Rows: 10, Features: 3})
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{5, 3}, tbl.TrainX.Shape())
	assert.Equal(t, tensor.Shape{5, 1}, tbl.TrainY.Shape())
	assert.Equal(t, tensor.Shape{5, 3}, tbl.TestX.Shape())
	assert.Equal(t, tensor.Shape{5, 1}, tbl.TestY.Shape())

	for i := 0; i < 5; i++ {
		assert.Equal(t, []float64{float64(i) + 0.1, float64(i) + 0.2, float64(i) + 0.3}, tbl.TrainX.Row(i), "train row %d", i)
		assert.Equal(t, uint8(i%2), tbl.TrainY.At(i, 0))

		src := i + 5
		assert.Equal(t, []float64{float64(src) + 0.1, float64(src) + 0.2, float64(src) + 0.3}, tbl.TestX.Row(i), "test row %d", i)
		assert.Equal(t, uint8(src%2), tbl.TestY.At(i, 0))
	}
}

func TestReadOddRowCount(t *testing.T) {
	tbl, err := Read(strings.NewReader(makeTable(7)), Options{Rows: 7, Features: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.TrainX.Rows())
	assert.Equal(t, 4, tbl.TestX.Rows())
	assert.Equal(t, float64(3)+0.1, tbl.TestX.At(0, 0), "test split starts at row 3")
}

func TestReadShortTable(t *testing.T) {
	_, err := Read(strings.NewReader(makeTable(9)), Options{Rows: 10, Features: 3})
	assert.ErrorIs(t, err, ErrShortTable)
}

func TestReadExtraRows(t *testing.T) {
	_, err := Read(strings.NewReader(makeTable(11)), Options{Rows: 10, Features: 3})
	assert.ErrorIs(t, err, ErrExtraRows)
}

func TestReadInvalidRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"label too large", "1\t256\t0.1\t0.2\t0.3\t0\n"},
		{"negative label", "1\t-1\t0.1\t0.2\t0.3\t0\n"},
		{"bad feature", "1\t0\t0.1\tabc\t0.3\t0\n"},
		{"missing trailing field", "1\t0\t0.1\t0.2\t0.3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := makeTable(1) + tt.row
			_, err := Read(strings.NewReader(input), Options{Rows: 2, Features: 3})
			assert.ErrorIs(t, err, ErrInvalidRow)
		})
	}
}

func TestReadInvalidOptions(t *testing.T) {
	_, err := Read(strings.NewReader(""), Options{Rows: 1, Features: 3})
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = Read(strings.NewReader(""), Options{Rows: 4, Features: 0})
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestReadCustomDelimiter(t *testing.T) {
	input := "a,3,1.5,x\nb,4,2.5,y\n"
	tbl, err := Read(strings.NewReader(input), Options{Rows: 2, Features: 1, Delimiter: ','})
	require.NoError(t, err)

	assert.Equal(t, []float64{1.5}, tbl.TrainX.Data())
	assert.Equal(t, []uint8{3}, tbl.TrainY.Data())
	assert.Equal(t, []float64{2.5}, tbl.TestX.Data())
	assert.Equal(t, []uint8{4}, tbl.TestY.Data())
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phy_train.dat")
	require.NoError(t, os.WriteFile(path, []byte(makeTable(4)), 0o600))

	tbl, err := ReadFile(path, Options{Rows: 4, Features: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.TrainX.Rows())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.dat"), Options{Rows: 4, Features: 3})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
