// Package table parses delimited text tables into labeled train/test arrays.
//
// Each row holds:
//
//	id <TAB> label <TAB> feature_1 ... feature_d <TAB> trailing
//
// The id and trailing fields are dropped, the label is an unsigned 8-bit class index and the
// features are float64. The total row count is supplied by the caller; the first half of the
// rows (in file order) becomes the training split and the remainder the testing split.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/born-ml/dataprep/internal/tensor"
)

// Common errors.
var (
	ErrShortTable    = errors.New("table has fewer rows than declared")
	ErrExtraRows     = errors.New("table has more rows than declared")
	ErrInvalidRow    = errors.New("invalid table row")
	ErrInvalidOption = errors.New("invalid table options")
)

// Options describes the layout of the table being read.
type Options struct {
	Rows      int  // Exact number of data rows in the table
	Features  int  // Number of feature columns between the label and the trailing field
	Delimiter rune // Field separator; defaults to '\t'
}

// Table is a positional train/test partition of a labeled table.
type Table struct {
	TrainX *tensor.Float64Array // [Rows/2, Features]
	TrainY *tensor.Uint8Array   // [Rows/2, 1]
	TestX  *tensor.Float64Array // [Rows-Rows/2, Features]
	TestY  *tensor.Uint8Array   // [Rows-Rows/2, 1]
}

// TrainRows returns the number of rows assigned to the training split.
func (o Options) TrainRows() int {
	return o.Rows / 2
}

// TestRows returns the number of rows assigned to the testing split.
func (o Options) TestRows() int {
	return o.Rows - o.Rows/2
}

func (o Options) validate() error {
	if o.Rows < 2 {
		return fmt.Errorf("%w: need at least 2 rows, got %d", ErrInvalidOption, o.Rows)
	}
	if o.Features < 1 {
		return fmt.Errorf("%w: need at least 1 feature, got %d", ErrInvalidOption, o.Features)
	}
	return nil
}

// Read parses exactly opts.Rows rows from r.
func Read(r io.Reader, opts Options) (*Table, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = opts.Features + 3
	reader.ReuseRecord = true

	nTrain, nTest := opts.TrainRows(), opts.TestRows()
	t := &Table{
		TrainX: tensor.MustZeros[float64](tensor.Shape{nTrain, opts.Features}),
		TrainY: tensor.MustZeros[uint8](tensor.Shape{nTrain, 1}),
		TestX:  tensor.MustZeros[float64](tensor.Shape{nTest, opts.Features}),
		TestY:  tensor.MustZeros[uint8](tensor.Shape{nTest, 1}),
	}

	for row := 0; row < opts.Rows; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrShortTable, row, opts.Rows)
		}
		if err != nil {
			return nil, fmt.Errorf("%w %d: %w", ErrInvalidRow, row+1, err)
		}

		x, y, idx := t.TrainX, t.TrainY, row
		if row >= nTrain {
			x, y, idx = t.TestX, t.TestY, row-nTrain
		}
		if err := parseRecord(record, x.Row(idx), &y.Row(idx)[0]); err != nil {
			return nil, fmt.Errorf("%w %d: %w", ErrInvalidRow, row+1, err)
		}
	}

	if _, err := reader.Read(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: declared %d", ErrExtraRows, opts.Rows)
	}

	return t, nil
}

// ReadFile opens filename and parses it with Read.
func ReadFile(filename string, opts Options) (*Table, error) {
	//nolint:gosec // G304: source paths come from configuration
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer file.Close()

	t, err := Read(file, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return t, nil
}

// parseRecord fills features and label from one record. record[0] and the final field are
// ignored.
func parseRecord(record []string, features []float64, label *uint8) error {
	l, err := strconv.ParseUint(record[1], 10, 8)
	if err != nil {
		return fmt.Errorf("label %q: %w", record[1], err)
	}
	*label = uint8(l)

	for j := range features {
		v, err := strconv.ParseFloat(record[j+2], 64)
		if err != nil {
			return fmt.Errorf("feature %d %q: %w", j, record[j+2], err)
		}
		features[j] = v
	}
	return nil
}
