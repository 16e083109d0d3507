// Package synth generates labeled datasets from known statistical models.
//
// Three generators are provided:
//
//   - Linear: y = Xw + ε with X and ε drawn i.i.d. from zero-mean normals.
//   - Logit: multinomial-logit classification with the last class logit pinned to zero.
//   - SparseCorrelated: a sparse weight vector, equicorrelated multivariate normal
//     inputs, and inputs standardized in place before the outputs are recomputed.
//
// Every generator draws all randomness from the rand.Source it is given, so a fixed seed
// reproduces a dataset exactly. Use NewSource to derive an independent stream per dataset.
package synth
