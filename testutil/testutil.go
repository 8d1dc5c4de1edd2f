package testutil

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/topovec/diagram"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// pointLocked draws one off-diagonal point with birth in [0, scale) and an
// exponentially distributed lifetime. Caller must hold r.mu.
func (r *RNG) pointLocked(dim int, scale float64) diagram.Point {
	birth := r.rand.Float64() * scale
	life := r.rand.ExpFloat64() * scale / 4
	if life == 0 {
		life = scale / 1e6
	}
	return diagram.Point{Birth: birth, Death: birth + life, Dim: dim}
}

// Diagram generates a diagram with counts[k] points in dimension dims[k].
// Points are grouped by dimension, births lie in [0, scale).
func (r *RNG) Diagram(dims, counts []int, scale float64) diagram.Diagram {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, c := range counts {
		total += c
	}
	d := make(diagram.Diagram, 0, total)
	for k, dim := range dims {
		for range counts[k] {
			d = append(d, r.pointLocked(dim, scale))
		}
	}
	return d
}

// Batch generates n diagrams sharing the same per-dimension layout, as
// produced by a padding preprocessor. A fraction padRate of the points of
// each diagram is replaced by diagonal padding (birth == death).
func (r *RNG) Batch(n int, dims, counts []int, scale, padRate float64) diagram.Batch {
	b := make(diagram.Batch, n)
	for i := range b {
		d := r.Diagram(dims, counts, scale)
		r.mu.Lock()
		for j := range d {
			if r.rand.Float64() < padRate {
				d[j].Death = d[j].Birth
			}
		}
		r.mu.Unlock()
		b[i] = d
	}
	return b
}

// RaggedBatch generates n diagrams whose per-dimension counts vary in
// [1, maxCount]. Such batches are valid for ATOL but not for the
// fixed-layout vectorizers.
func (r *RNG) RaggedBatch(n int, dims []int, maxCount int, scale float64) diagram.Batch {
	b := make(diagram.Batch, n)
	for i := range b {
		counts := make([]int, len(dims))
		for k := range counts {
			counts[k] = 1 + r.Intn(maxCount)
		}
		b[i] = r.Diagram(dims, counts, scale)
	}
	return b
}

// ClusteredDiagram generates num points in dimension dim scattered around
// the given (birth, death) centers with Gaussian noise of the given spread.
// Deaths are clamped to be at least births.
func (r *RNG) ClusteredDiagram(dim, num int, centers [][2]float64, spread float64) diagram.Diagram {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := make(diagram.Diagram, num)
	for i := range d {
		c := centers[i%len(centers)]
		birth := c[0] + r.rand.NormFloat64()*spread
		death := math.Max(birth, c[1]+r.rand.NormFloat64()*spread)
		d[i] = diagram.Point{Birth: birth, Death: death, Dim: dim}
	}
	return d
}

// MatrixEqualApprox reports whether a and b have the same shape and all
// entries agree within tol. NaN entries match only NaN.
func MatrixEqualApprox(a, b mat.Matrix, tol float64) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return false
	}
	for i := range ar {
		for j := range ac {
			x, y := a.At(i, j), b.At(i, j)
			if math.IsNaN(x) || math.IsNaN(y) {
				if math.IsNaN(x) != math.IsNaN(y) {
					return false
				}
				continue
			}
			if math.Abs(x-y) > tol {
				return false
			}
		}
	}
	return true
}
