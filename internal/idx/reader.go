// Package idx parses the big-endian IDX image and label files used by MNIST.
//
// IDX file format for images:
//
//	magic number: 4 bytes (skipped)
//	number of images: 4 bytes, big-endian uint32
//	number of rows: 4 bytes, big-endian uint32
//	number of cols: 4 bytes, big-endian uint32
//	pixel data: unsigned bytes, row-major
//
// IDX file format for labels:
//
//	magic number: 4 bytes (skipped)
//	number of labels: 4 bytes, big-endian uint32
//	label data: unsigned bytes
//
// The magic number is not checked. The payload is consumed one byte at a time and must
// contain at least count × elementsPerSample bytes; anything after that is ignored.
package idx

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"os"

	"github.com/born-ml/dataprep/internal/tensor"
)

// Header dimension counts for the two MNIST file kinds.
const (
	ImageDims = 3 // count, rows, cols
	LabelDims = 1 // count
)

// Common errors.
var (
	ErrShortHeader = errors.New("idx header is truncated")
	ErrShortRead   = errors.New("idx payload is shorter than its header declares")
	ErrEmpty       = errors.New("idx header declares a zero dimension")
	ErrTooLarge    = errors.New("idx header declares more elements than can be addressed")
)

// initialCap bounds the up-front payload allocation; larger payloads grow as bytes arrive.
const initialCap = 1 << 20

// Header holds the dimension fields that follow the magic number.
type Header struct {
	Magic uint32   // Read but never validated
	Dims  []uint32 // Dims[0] is the sample count
}

// Count returns the number of samples.
func (h Header) Count() int {
	return int(h.Dims[0])
}

// ElementsPerSample returns the product of all dimensions after the count (1 for labels).
func (h Header) ElementsPerSample() int {
	n := 1
	for _, d := range h.Dims[1:] {
		n *= int(d)
	}
	return n
}

// Size returns the header length in bytes.
func (h Header) Size() int64 {
	return 4 * int64(1+len(h.Dims))
}

// PayloadSize returns count × elementsPerSample, or ErrTooLarge when the product
// does not fit in an int.
func (h Header) PayloadSize() (int, error) {
	n := uint64(1)
	for _, d := range h.Dims {
		hi, lo := bits.Mul64(n, uint64(d))
		if hi != 0 || lo > math.MaxInt {
			return 0, fmt.Errorf("%w: dims %v", ErrTooLarge, h.Dims)
		}
		n = lo
	}
	return int(n), nil
}

// ReadHeader reads the magic field and dims big-endian uint32 dimension fields.
func ReadHeader(r io.Reader, dims int) (Header, error) {
	if dims < 1 {
		return Header{}, fmt.Errorf("idx header needs at least one dimension, got %d", dims)
	}

	buf := make([]byte, 4*(1+dims))
	if n, err := io.ReadFull(r, buf); err != nil {
		return Header{}, fmt.Errorf("%w: got %d of %d bytes: %v", ErrShortHeader, n, len(buf), err)
	}

	h := Header{
		Magic: binary.BigEndian.Uint32(buf[0:4]),
		Dims:  make([]uint32, dims),
	}
	for i := range h.Dims {
		h.Dims[i] = binary.BigEndian.Uint32(buf[4*(i+1):])
		if h.Dims[i] == 0 {
			return Header{}, fmt.Errorf("%w: dimension %d", ErrEmpty, i)
		}
	}
	return h, nil
}

// Read parses an IDX stream whose header carries dims dimension fields and returns
// a count × elementsPerSample array of the payload bytes.
func Read(r io.Reader, dims int) (*tensor.Uint8Array, error) {
	return read(r, dims, -1)
}

// read parses an IDX stream. A non-negative available is the total stream length and
// lets a header that promises more bytes than exist fail before anything is allocated.
func read(r io.Reader, dims int, available int64) (*tensor.Uint8Array, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		buffered := bufio.NewReader(r)
		r, br = buffered, buffered
	}

	h, err := ReadHeader(r, dims)
	if err != nil {
		return nil, err
	}

	size, err := h.PayloadSize()
	if err != nil {
		return nil, err
	}
	count, per := h.Count(), h.ElementsPerSample()
	if available >= 0 && int64(size) > available-h.Size() {
		return nil, fmt.Errorf("%w: header declares %d bytes, file holds %d",
			ErrShortRead, size, max(available-h.Size(), 0))
	}

	// Sequential byte-at-a-time consumption keeps sample boundaries aligned with the
	// header no matter how the underlying reader chunks its data.
	data := make([]uint8, 0, min(size, initialCap))
	for i := 0; i < size; i++ {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: got %d of %d bytes (sample %d)",
					ErrShortRead, i, size, i/per)
			}
			return nil, fmt.Errorf("failed to read byte %d: %w", i, err)
		}
		data = append(data, b)
	}

	out, err := tensor.New(tensor.Shape{count, per}, data)
	if err != nil {
		return nil, fmt.Errorf("invalid idx dimensions %v: %w", h.Dims, err)
	}
	return out, nil
}

// ReadImages parses an image-style IDX stream into a [count, rows*cols] array.
func ReadImages(r io.Reader) (*tensor.Uint8Array, error) {
	return Read(r, ImageDims)
}

// ReadLabels parses a label-style IDX stream into a [count, 1] array.
func ReadLabels(r io.Reader) (*tensor.Uint8Array, error) {
	return Read(r, LabelDims)
}

// ReadImagesFile opens filename and parses it with ReadImages.
func ReadImagesFile(filename string) (*tensor.Uint8Array, error) {
	return readFile(filename, ImageDims)
}

// ReadLabelsFile opens filename and parses it with ReadLabels.
func ReadLabelsFile(filename string) (*tensor.Uint8Array, error) {
	return readFile(filename, LabelDims)
}

func readFile(filename string, dims int) (*tensor.Uint8Array, error) {
	//nolint:gosec // G304: source paths come from configuration
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open idx file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat idx file: %w", err)
	}

	arr, err := read(file, dims, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return arr, nil
}
