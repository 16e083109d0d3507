// Package codec reads and writes prepared arrays as headerless binary payloads.
//
// A payload is the row-major sequence of an array's elements, each stored with its
// fixed width in little-endian byte order:
//
//	[element 0][element 1] ... [element n-1]
//
// There is no magic, header, trailer or length prefix. Shape and element type live in
// the dataset descriptor, so reading always requires both to be supplied by the caller.
// A file whose size disagrees with shape × element width is rejected rather than
// truncated or padded.
//
// Example usage:
//
//	written, err := codec.WriteFile("data/toyReg/X_tr.dat", x)
//	if err != nil {
//	    return err
//	}
//
//	arr, err := codec.ReadFile("data/toyReg/X_tr.dat", tensor.Shape{15, 3}, tensor.Float64)
package codec
