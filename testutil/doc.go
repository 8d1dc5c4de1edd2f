// Package testutil provides testing utilities for topovec.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating reproducible random persistence
// diagrams and for comparing feature matrices.
//
// # Random Diagram Generation
//
//	rng := testutil.NewRNG(seed)
//	X := rng.Batch(100, []int{0, 1}, []int{20, 10}, 1.0, 0.1)  // fixed layout, 10% padding
//	Y := rng.RaggedBatch(100, []int{0, 1}, 30, 1.0)           // varying counts
//
// # Matrix Comparison
//
//	ok := testutil.MatrixEqualApprox(got, want, 1e-12)
package testutil
