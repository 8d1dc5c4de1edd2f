// Package kmeans implements weighted k-means clustering.
//
// Used by the quantization package to learn the cluster centers that ATOL
// vectorization measures diagrams against. Two trainers are provided: full
// batch Lloyd iterations and mini-batch updates. Both seed with weighted
// k-means++ and are deterministic for a given seed.
package kmeans
