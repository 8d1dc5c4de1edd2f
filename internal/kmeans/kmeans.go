package kmeans

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrTooFewVectors is returned when there are fewer vectors than clusters.
var ErrTooFewVectors = errors.New("kmeans: fewer vectors than clusters")

// Config controls a training run.
type Config struct {
	K         int     // number of clusters
	MaxIter   int     // iteration cap per run
	NInit     int     // independent seeded runs; the lowest inertia wins (Lloyd only)
	Tol       float64 // convergence threshold relative to the mean per-axis variance
	BatchSize int     // mini-batch size (mini-batch only)
	Seed      int64
}

// Result is the outcome of a training run.
type Result struct {
	// Centroids holds K*dim values, row-major.
	Centroids []float64
	// Inertia is the weighted sum of squared distances to the closest centroid.
	Inertia    float64
	Iterations int
}

// Centroid returns the i-th centroid.
func (r Result) Centroid(i, dim int) []float64 {
	return r.Centroids[i*dim : (i+1)*dim]
}

func checkInput(vectors []float64, dim int, weights []float64, k int) (int, []float64, error) {
	if dim <= 0 || len(vectors)%dim != 0 {
		return 0, nil, fmt.Errorf("kmeans: invalid dimension %d for %d values", dim, len(vectors))
	}
	if k <= 0 {
		return 0, nil, fmt.Errorf("kmeans: k must be positive, got %d", k)
	}
	n := len(vectors) / dim
	if n < k {
		return 0, nil, fmt.Errorf("%w: %d vectors, %d clusters", ErrTooFewVectors, n, k)
	}
	if weights == nil {
		weights = make([]float64, n)
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != n {
		return 0, nil, fmt.Errorf("kmeans: %d weights for %d vectors", len(weights), n)
	}
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return 0, nil, errors.New("kmeans: weights must be non-negative")
		}
	}
	return n, weights, nil
}

// Train clusters vectors (n*dim values, row-major) with weighted Lloyd
// iterations. weights may be nil for uniform weighting.
func Train(ctx context.Context, vectors []float64, dim int, weights []float64, cfg Config) (Result, error) {
	n, weights, err := checkInput(vectors, dim, weights, cfg.K)
	if err != nil {
		return Result{}, err
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = 300
	}
	if cfg.NInit <= 0 {
		cfg.NInit = 1
	}
	tol := scaledTol(vectors, dim, n, cfg.Tol)

	rng := rand.New(rand.NewSource(cfg.Seed)) // nolint gosec
	best := Result{Inertia: math.Inf(1)}
	for run := 0; run < cfg.NInit; run++ {
		res, err := lloyd(ctx, vectors, dim, weights, cfg.K, cfg.MaxIter, tol, rng)
		if err != nil {
			return Result{}, err
		}
		if res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

func lloyd(ctx context.Context, vectors []float64, dim int, weights []float64, k, maxIter int, tol float64, rng *rand.Rand) (Result, error) {
	n := len(vectors) / dim
	centroids := seedPlusPlus(vectors, dim, weights, k, rng)

	assignments := make([]int, n)
	sums := make([]float64, k*dim)
	mass := make([]float64, k)

	iter := 0
	for iter < maxIter {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		iter++

		// Assignment step
		for i := 0; i < n; i++ {
			assignments[i], _ = nearest(vectors[i*dim:(i+1)*dim], centroids, dim)
		}

		// Update step
		clear(sums)
		clear(mass)
		for i := 0; i < n; i++ {
			c := assignments[i]
			w := weights[i]
			for d := 0; d < dim; d++ {
				sums[c*dim+d] += w * vectors[i*dim+d]
			}
			mass[c] += w
		}

		var shift float64
		for j := 0; j < k; j++ {
			center := centroids[j*dim : (j+1)*dim]
			if mass[j] == 0 {
				// Relocate an empty cluster onto the point that is worst served.
				idx := farthest(vectors, dim, weights, centroids)
				shift += sqDist(center, vectors[idx*dim:(idx+1)*dim])
				copy(center, vectors[idx*dim:(idx+1)*dim])
				continue
			}
			for d := 0; d < dim; d++ {
				v := sums[j*dim+d] / mass[j]
				diff := v - center[d]
				shift += diff * diff
				center[d] = v
			}
		}

		if shift <= tol {
			break
		}
	}

	return Result{
		Centroids:  centroids,
		Inertia:    inertia(vectors, dim, weights, centroids),
		Iterations: iter,
	}, nil
}

// seedPlusPlus picks k initial centroids with weighted k-means++ sampling.
func seedPlusPlus(vectors []float64, dim int, weights []float64, k int, rng *rand.Rand) []float64 {
	n := len(vectors) / dim
	centroids := make([]float64, k*dim)

	first := sampleIndex(weights, rng)
	copy(centroids[:dim], vectors[first*dim:(first+1)*dim])

	// minDistSq tracks each vector's squared distance to its nearest chosen centroid.
	minDistSq := make([]float64, n)
	for i := 0; i < n; i++ {
		minDistSq[i] = sqDist(vectors[i*dim:(i+1)*dim], centroids[:dim])
	}

	prob := make([]float64, n)
	for c := 1; c < k; c++ {
		var sum float64
		for i := range prob {
			prob[i] = weights[i] * minDistSq[i]
			sum += prob[i]
		}

		var chosen int
		if sum == 0 {
			// Every remaining point coincides with a chosen centroid.
			chosen = c % n
		} else {
			chosen = sampleIndex(prob, rng)
		}

		center := centroids[c*dim : (c+1)*dim]
		copy(center, vectors[chosen*dim:(chosen+1)*dim])
		for i := 0; i < n; i++ {
			if d := sqDist(vectors[i*dim:(i+1)*dim], center); d < minDistSq[i] {
				minDistSq[i] = d
			}
		}
	}
	return centroids
}

// sampleIndex draws an index with probability proportional to mass.
func sampleIndex(mass []float64, rng *rand.Rand) int {
	var total float64
	for _, m := range mass {
		total += m
	}
	if total == 0 {
		return rng.Intn(len(mass))
	}
	target := rng.Float64() * total
	var cumsum float64
	for i, m := range mass {
		cumsum += m
		if cumsum >= target && m > 0 {
			return i
		}
	}
	for i := len(mass) - 1; i >= 0; i-- {
		if mass[i] > 0 {
			return i
		}
	}
	return len(mass) - 1
}

func farthest(vectors []float64, dim int, weights, centroids []float64) int {
	n := len(vectors) / dim
	best, bestDist := 0, -1.0
	for i := 0; i < n; i++ {
		_, d := nearest(vectors[i*dim:(i+1)*dim], centroids, dim)
		if d *= weights[i]; d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func inertia(vectors []float64, dim int, weights, centroids []float64) float64 {
	n := len(vectors) / dim
	var total float64
	for i := 0; i < n; i++ {
		_, d := nearest(vectors[i*dim:(i+1)*dim], centroids, dim)
		total += weights[i] * d
	}
	return total
}

// scaledTol converts a relative tolerance into an absolute bound on the
// squared centroid shift, scaled by the mean per-axis variance of the data.
func scaledTol(vectors []float64, dim, n int, tol float64) float64 {
	if tol <= 0 {
		tol = 1e-4
	}
	var meanVar float64
	for d := 0; d < dim; d++ {
		var mean, m2 float64
		for i := 0; i < n; i++ {
			mean += vectors[i*dim+d]
		}
		mean /= float64(n)
		for i := 0; i < n; i++ {
			diff := vectors[i*dim+d] - mean
			m2 += diff * diff
		}
		meanVar += m2 / float64(n)
	}
	return tol * meanVar / float64(dim)
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// nearest returns the index of the closest centroid and its squared distance.
func nearest(vec, centroids []float64, dim int) (int, float64) {
	k := len(centroids) / dim
	best, bestDist := 0, math.Inf(1)
	for j := 0; j < k; j++ {
		if d := sqDist(vec, centroids[j*dim:(j+1)*dim]); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best, bestDist
}

// Assign returns the index of the centroid closest to vec.
func Assign(vec, centroids []float64, dim int) int {
	idx, _ := nearest(vec, centroids, dim)
	return idx
}
