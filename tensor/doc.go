// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense array types used by prepared datasets.
//
// # Overview
//
// Every split of a prepared dataset is a row-major array with a fixed element type:
//   - Float64Array for continuous inputs and regression targets
//   - Uint8Array for class labels and raw pixel intensities
//
// Arrays carry their Shape and DataType so they can be written to and read back from
// headerless payload files without loss.
//
// # Basic Usage
//
//	x, err := tensor.New(tensor.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(x.Shape(), x.DType(), x.Row(1)) // (2, 3) float64 [4 5 6]
//
// # Supported Data Types
//
//   - float32, float64 (floating-point)
//   - int32, int64 (signed integers)
//   - uint8 (labels and images)
package tensor
