// Package distance provides point geometry in the birth-death plane.
//
// # Functions
//
//   - Euclidean / SquaredEuclidean: distance between two points
//   - Pairwise: dense distance matrix between two point sets
//   - Diameter: largest pairwise distance within one point set
//
// # Usage
//
//	d := distance.Euclidean([]float64{0, 1}, []float64{3, 5}) // 5
//	m := distance.Pairwise(points, centers, false)
package distance
