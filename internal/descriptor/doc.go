// Package descriptor defines the metadata record that locates and describes one prepared
// dataset.
//
// A descriptor names the model family that consumes the dataset, carries up to four splits
// (training/testing inputs/outputs), each with a payload path, shape and element type, and
// an open set of auxiliary values written by the preparation routine (true parameters,
// covariance matrices, noise scales, initial values for optimization).
//
// Descriptors are persisted as a single JSON document:
//
//	{
//	  "format_version": 1,
//	  "dataset": "NoisyOpt_isoSmall",
//	  "model_name": "NoisyOpt",
//	  "train_inputs": {"path": "X_tr.dat", "shape": [15, 2], "dtype": "float64", "checksum": "…"},
//	  "train_outputs": {"path": "y_tr.dat", "shape": [15, 1], "dtype": "float64", "checksum": "…"},
//	  "test_inputs": null,
//	  "test_outputs": null,
//	  "extra": {"sigma_noise": {"kind": "float", "float": 3}, …}
//	}
//
// A null split means the dataset has no such split, e.g. synthetic sets evaluated with a
// closed-form risk function instead of held-out data.
package descriptor
