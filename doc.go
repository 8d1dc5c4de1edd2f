// Package topovec turns persistence diagrams into fixed-length feature
// vectors.
//
// A persistence diagram is a multiset of (birth, death, dimension) triples
// produced by persistent homology. Three vectorizers are provided, each
// following a Fit / Transform lifecycle:
//
//   - PersistenceEntropy: Shannon entropy of the lifetimes per dimension.
//   - Amplitude: distance from the empty diagram under one of seven metrics
//     (bottleneck, wasserstein, betti, landscape, silhouette, heat,
//     persistence_image), optionally reduced by a p-norm.
//   - ATOL: proximity of diagram points to cluster centers learned by
//     k-means or mini-batch k-means.
//
// # Quick Start
//
//	ctx := context.Background()
//	pe, _ := topovec.NewPersistenceEntropy(topovec.WithNJobs(-1))
//	features, _ := pe.FitTransform(ctx, batch) // *mat.Dense
//
// Fit records the homology dimensions of the batch and anything else the
// estimator learns. Transform is safe for concurrent use and never sees a
// half-written fit; a Fit replaces the fitted state atomically.
//
// # Parallelism
//
// WithNJobs bounds the number of concurrently executing work units.
// Results do not depend on the degree of parallelism.
//
// # Persistence
//
// Fitted estimators are stored as checksummed, optionally compressed frames
// in any blobstore.Store (memory, local disk, MinIO, S3, or S3 with a
// DynamoDB commit log):
//
//	_ = topovec.SaveModel(ctx, store, "models/entropy", pe)
//	m, _ := topovec.OpenModel(ctx, store, "models/entropy")
//
// # Observability
//
// Logging uses log/slog through Logger; metrics go to a MetricsCollector.
// Package prometheus provides a collector for the Prometheus client.
package topovec
