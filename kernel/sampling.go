package kernel

import (
	"math"

	"github.com/hupe1980/topovec/diagram"
)

// Sampling is the evaluation grid of one homology dimension. Axis 0 is birth;
// axis 1 is death, or persistence for persistence images. One-dimensional
// summaries use axis 0 only.
type Sampling struct {
	Min   [2]float64 `json:"min"`
	Max   [2]float64 `json:"max"`
	Step  [2]float64 `json:"step"`
	NBins int        `json:"n_bins"`
}

// Axis returns the NBins sample positions along axis a.
func (s Sampling) Axis(a int) []float64 {
	out := make([]float64, s.NBins)
	for i := range out {
		out[i] = s.Min[a] + float64(i)*s.Step[a]
	}
	if s.NBins > 1 {
		out[s.NBins-1] = s.Max[a]
	}
	return out
}

// FitSamplings derives one Sampling per dimension in dims from the fitting
// batch b. Non-gridded metrics get zero Samplings.
//
// Each axis spans the smallest to the largest coordinate observed for the
// dimension; one-dimensional summaries share a single range over births and
// deaths. A degenerate range is widened to the largest value of that axis
// across all dimensions, keeping axis scales comparable.
func FitSamplings(m Metric, b diagram.Batch, dims []int, p Params) []Sampling {
	out := make([]Sampling, len(dims))
	if !m.Gridded() || len(dims) == 0 {
		return out
	}

	mins := make([][2]float64, len(dims))
	maxs := make([][2]float64, len(dims))
	global := [2]float64{math.Inf(-1), math.Inf(-1)}

	for k, dim := range dims {
		lo := [2]float64{math.Inf(1), math.Inf(1)}
		hi := [2]float64{math.Inf(-1), math.Inf(-1)}
		for _, d := range b {
			for _, pt := range d {
				if pt.Dim != dim {
					continue
				}
				x, y := pt.Birth, pt.Death
				if m == PersistenceImage {
					y = pt.Death - pt.Birth
				}
				lo[0], hi[0] = math.Min(lo[0], x), math.Max(hi[0], x)
				lo[1], hi[1] = math.Min(lo[1], y), math.Max(hi[1], y)
			}
		}
		if math.IsInf(lo[0], 1) {
			lo, hi = [2]float64{}, [2]float64{}
		}
		if m != PersistenceImage {
			l, h := math.Min(lo[0], lo[1]), math.Max(hi[0], hi[1])
			lo, hi = [2]float64{l, l}, [2]float64{h, h}
		}
		mins[k], maxs[k] = lo, hi
		for a := 0; a < 2; a++ {
			global[a] = math.Max(global[a], hi[a])
		}
	}

	for k := range dims {
		s := Sampling{Min: mins[k], Max: maxs[k], NBins: p.NBins}
		for a := 0; a < 2; a++ {
			if s.Max[a] == s.Min[a] {
				s.Max[a] = global[a]
			}
			switch {
			case s.NBins > 1:
				s.Step[a] = (s.Max[a] - s.Min[a]) / float64(s.NBins-1)
			default:
				s.Step[a] = s.Max[a] - s.Min[a]
			}
		}
		out[k] = s
	}
	return out
}
