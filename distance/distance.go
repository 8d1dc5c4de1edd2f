package distance

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Euclidean returns the L2 distance between a and b.
// Assumes vectors are the same length (caller's responsibility).
func Euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// SquaredEuclidean returns the squared L2 distance between a and b.
func SquaredEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Func is a function type for distance calculation.
type Func func(a, b []float64) float64

// Pairwise returns the len(x) × len(y) matrix of distances between the rows
// of x and y. If squared is set, squared distances are returned.
func Pairwise(x, y [][]float64, squared bool) *mat.Dense {
	if len(x) == 0 || len(y) == 0 {
		return &mat.Dense{}
	}
	fn := Func(Euclidean)
	if squared {
		fn = SquaredEuclidean
	}
	out := mat.NewDense(len(x), len(y), nil)
	for i, a := range x {
		for j, b := range y {
			out.Set(i, j, fn(a, b))
		}
	}
	return out
}

// Diameter returns the largest pairwise Euclidean distance among points.
// It is 0 for fewer than two points.
func Diameter(points [][]float64) float64 {
	var longest float64
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			if d := Euclidean(points[i], points[j]); d > longest {
				longest = d
			}
		}
	}
	return longest
}

// NearestOther returns, for each point, the distance to its nearest other
// point at strictly positive distance. Points without such a neighbour
// (all others coincide with it) get +Inf.
func NearestOther(points [][]float64) []float64 {
	out := make([]float64, len(points))
	for i := range points {
		best := math.Inf(1)
		for j := range points {
			if i == j {
				continue
			}
			if d := Euclidean(points[i], points[j]); d > 0 && d < best {
				best = d
			}
		}
		out[i] = best
	}
	return out
}
