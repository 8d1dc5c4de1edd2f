package quantization

import "github.com/hupe1980/topovec/distance"

// Inertias returns the local scale of each center. With a single center it is
// half the diameter of the clustered points; otherwise it is half the distance
// to the nearest distinct center, or +Inf when every other center coincides.
func Inertias(centers, points [][]float64) []float64 {
	if len(centers) == 1 {
		return []float64{distance.Diameter(points) / 2}
	}
	out := distance.NearestOther(centers)
	for i := range out {
		out[i] /= 2
	}
	return out
}
