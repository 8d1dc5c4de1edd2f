package kmeans

import (
	"context"
	"math/rand"
)

// TrainMiniBatch clusters vectors with weighted mini-batch updates: each
// iteration draws BatchSize vectors, assigns them, and moves every centroid
// towards its assigned vectors with a per-centroid learning rate of
// weight / accumulated weight.
func TrainMiniBatch(ctx context.Context, vectors []float64, dim int, weights []float64, cfg Config) (Result, error) {
	n, weights, err := checkInput(vectors, dim, weights, cfg.K)
	if err != nil {
		return Result{}, err
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = 100
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1024
	}
	batch := min(cfg.BatchSize, n)
	tol := scaledTol(vectors, dim, n, cfg.Tol)

	rng := rand.New(rand.NewSource(cfg.Seed)) // nolint gosec
	centroids := seedPlusPlus(vectors, dim, weights, cfg.K, rng)
	accum := make([]float64, cfg.K)
	prev := make([]float64, len(centroids))

	iter := 0
	for iter < cfg.MaxIter {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		iter++
		copy(prev, centroids)

		for b := 0; b < batch; b++ {
			i := rng.Intn(n)
			w := weights[i]
			if w == 0 {
				continue
			}
			vec := vectors[i*dim : (i+1)*dim]
			c, _ := nearest(vec, centroids, dim)
			accum[c] += w
			eta := w / accum[c]
			center := centroids[c*dim : (c+1)*dim]
			for d := range center {
				center[d] += eta * (vec[d] - center[d])
			}
		}

		if sqDist(prev, centroids) <= tol {
			break
		}
	}

	return Result{
		Centroids:  centroids,
		Inertia:    inertia(vectors, dim, weights, centroids),
		Iterations: iter,
	}, nil
}
