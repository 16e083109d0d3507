// Package loader materializes prepared datasets for training code.
//
// A prepared dataset is a directory of raw payload files described by a descriptor.
// Load decodes every present split with the layout the descriptor records and verifies
// each payload's checksum when one is recorded.
package loader
