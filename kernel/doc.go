// Package kernel computes the amplitude of a persistence subdiagram: its
// distance from the trivial (all-diagonal) diagram under a chosen metric.
//
// # Metrics
//
//   - Bottleneck: largest distance of a point to the diagonal
//   - Wasserstein: p-norm of the distances to the diagonal
//   - Betti: Lp norm of the Betti curve
//   - Landscape: Lp norm of the first n_layers persistence landscapes
//   - Silhouette: Lp norm of the power-weighted silhouette
//   - Heat: Lp norm of the Gaussian-smoothed, diagonal-reflected diagram
//   - PersistenceImage: Lp norm of the persistence image
//
// Grid-based metrics sample their functional summaries on a Sampling that is
// derived once from a fitting batch with FitSamplings, so every later
// evaluation bins consistently.
//
// # Usage
//
//	params, _ := kernel.Landscape.Resolve(kernel.Params{NLayers: 2})
//	samplings := kernel.FitSamplings(kernel.Landscape, batch, dims, params)
//	a := kernel.Amplitude(kernel.Landscape, pairs, samplings[0], params)
package kernel
