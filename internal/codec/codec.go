package codec

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/dataprep/internal/tensor"
)

// ByteOrder is the byte order used for every multi-byte element in a payload.
var ByteOrder binary.ByteOrder = binary.LittleEndian

// Written describes a payload file produced by WriteFile.
type Written struct {
	Path     string // File that was created or truncated
	Bytes    int64  // Payload size in bytes
	Checksum string // Hex-encoded SHA-256 of the payload
}

// Write encodes the elements of a in row-major order with no header.
// It returns the number of bytes written.
func Write(w io.Writer, a tensor.Array) (int64, error) {
	switch a.Values().(type) {
	case []float32, []float64, []int32, []int64, []uint8:
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedPayload, a.Values())
	}

	if err := binary.Write(w, ByteOrder, a.Values()); err != nil {
		return 0, fmt.Errorf("failed to write %s payload: %w", a.DType(), err)
	}
	return int64(a.NumElements() * a.DType().Size()), nil
}

// WriteFile creates (or truncates) path and writes a to it.
// The file is closed before WriteFile returns on every path; a failed close is reported.
func WriteFile(path string, a tensor.Array) (written Written, err error) {
	//nolint:gosec // G304: payload paths are built by the preparation workspace
	file, err := os.Create(path)
	if err != nil {
		return Written{}, fmt.Errorf("failed to create payload file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close payload file %s: %w", path, cerr)
		}
	}()

	hash := sha256.New()
	buf := bufio.NewWriter(io.MultiWriter(file, hash))

	n, err := Write(buf, a)
	if err != nil {
		return Written{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := buf.Flush(); err != nil {
		return Written{}, fmt.Errorf("failed to flush %s: %w", path, err)
	}

	return Written{
		Path:     path,
		Bytes:    n,
		Checksum: hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

// Read decodes an array of the given shape and data type from r.
func Read(r io.Reader, shape tensor.Shape, dtype tensor.DataType) (tensor.Array, error) {
	switch dtype {
	case tensor.Float32:
		return ReadDense[float32](r, shape)
	case tensor.Float64:
		return ReadDense[float64](r, shape)
	case tensor.Int32:
		return ReadDense[int32](r, shape)
	case tensor.Int64:
		return ReadDense[int64](r, shape)
	case tensor.Uint8:
		return ReadDense[uint8](r, shape)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDType, int(dtype))
	}
}

// ReadDense decodes exactly shape.NumElements() elements of type T from r.
func ReadDense[T tensor.Element](r io.Reader, shape tensor.Shape) (*tensor.Dense[T], error) {
	arr, err := tensor.Zeros[T](shape)
	if err != nil {
		return nil, err
	}

	if err := binary.Read(r, ByteOrder, arr.Data()); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: need %d bytes for %s %s",
				ErrSizeMismatch, arr.ByteSize(), arr.DType(), shape)
		}
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return arr, nil
}

// ReadFile reads the payload at path. The file size must equal
// shape.NumElements() × dtype.Size() exactly.
func ReadFile(path string, shape tensor.Shape, dtype tensor.DataType) (tensor.Array, error) {
	return readFile(path, shape, dtype, "")
}

// ReadFileVerified is ReadFile plus a SHA-256 check of the payload against checksum.
// An empty checksum skips the check.
func ReadFileVerified(path string, shape tensor.Shape, dtype tensor.DataType, checksum string) (tensor.Array, error) {
	return readFile(path, shape, dtype, checksum)
}

func readFile(path string, shape tensor.Shape, dtype tensor.DataType, checksum string) (tensor.Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape for %s: %w", path, err)
	}
	if dtype.String() == "unknown" {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDType, int(dtype))
	}

	//nolint:gosec // G304: payload paths come from descriptors
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open payload file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	want := int64(shape.NumElements()) * int64(dtype.Size())
	if info.Size() != want {
		return nil, fmt.Errorf("%w: %s has %d bytes, %s %s needs %d",
			ErrSizeMismatch, path, info.Size(), dtype, shape, want)
	}

	var r io.Reader = file
	hash := sha256.New()
	if checksum != "" {
		r = io.TeeReader(file, hash)
	}

	arr, err := Read(bufio.NewReader(r), shape, dtype)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if checksum != "" {
		if err := ValidateChecksum(hex.EncodeToString(hash.Sum(nil)), checksum); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return arr, nil
}
