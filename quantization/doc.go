// Package quantization provides the clustering and contrast primitives used by
// ATOL-style measure vectorization of persistence diagrams.
//
// A Quantizer learns a small set of cluster centers from a weighted point
// cloud in the birth-death plane. Contrast functions then measure how close a
// diagram point is to each center, relative to that center's inertia (its
// local scale).
//
// # Quantizers
//
//   - KMeans: weighted Lloyd iterations with k-means++ seeding
//   - MiniBatchKMeans: weighted mini-batch updates, cheaper on large clouds
//
// # Contrast functions
//
//   - Gaussian:  exp(-d²/r²)
//   - Laplacian: exp(-d/r)
//   - Indicator: 1 inside r, linear decay to 0 at 2r
//
// # Usage
//
//	q, err := quantization.New(quantization.KMeans, quantization.Params{NClusters: 4})
//	if err != nil { ... }
//	if err := q.Fit(ctx, points, weights); err != nil { ... }
//	centers := q.Centers()
package quantization
