// Package prep dispatches dataset preparation by name.
//
// Each dataset is a Preparer registered under a unique name. Preparing a dataset reads
// or generates its splits, writes them into a staging directory through the binary
// codec, validates the resulting descriptor against the staged files, and then swaps the
// staging directory into place as <output>/<name>. A file cache rooted at the output
// directory gets its info.json written into the staging directory, so the swap commits
// payloads and descriptor together. Other caches receive the descriptor after the swap,
// and get the previous descriptor back if the swap fails.
//
// With skip set, Prepare returns the cached descriptor without touching any source file.
//
// Preparing different datasets concurrently is supported. Preparations of the same name
// within one Dispatcher are serialized; concurrent preparation of the same name from
// separate processes is not coordinated and the last commit wins.
package prep
