package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/topovec/diagram"
)

// Amplitude returns the distance of the subdiagram pairs from the diagonal
// under metric m. s is the dimension's Sampling (ignored by non-gridded
// metrics) and p must come from m.Resolve.
func Amplitude(m Metric, pairs []diagram.Pair, s Sampling, p Params) float64 {
	switch m {
	case Bottleneck:
		return bottleneck(pairs)
	case Wasserstein:
		return wasserstein(pairs, p.P)
	case Betti:
		return lpIntegral(bettiCurve(pairs, s.Axis(0)), s.Step[0], p.P)
	case Landscape:
		return lpIntegral(landscapes(pairs, s.Axis(0), p.NLayers), s.Step[0], p.P)
	case Silhouette:
		return lpIntegral(silhouette(pairs, s.Axis(0), p.Power), s.Step[0], p.P)
	case Heat:
		return lpIntegral(heat(pairs, s.Axis(0), p.Sigma), s.Step[0]*s.Step[0], p.P)
	case PersistenceImage:
		img := persistenceImage(pairs, s.Axis(0), s.Axis(1), p.Sigma, p.Weight)
		return lpIntegral(img, s.Step[0]*s.Step[1], p.P)
	default:
		return math.NaN()
	}
}

// lpIntegral approximates the Lp norm of a sampled function whose samples
// each cover a cell of the given measure.
func lpIntegral(values []float64, cell, p float64) float64 {
	norm := floats.Norm(values, p)
	if math.IsInf(p, 1) {
		return norm
	}
	return norm * math.Pow(cell, 1/p)
}

func bottleneck(pairs []diagram.Pair) float64 {
	return floats.Norm(diagram.Lifetimes(pairs), math.Inf(1)) / 2
}

func wasserstein(pairs []diagram.Pair, p float64) float64 {
	return floats.Norm(diagram.Lifetimes(pairs), p) / 2
}

// tent is the piecewise linear function peaking at the midpoint of [b, d].
func tent(pair diagram.Pair, t float64) float64 {
	return math.Max(0, math.Min(t-pair.Birth, pair.Death-t))
}

func bettiCurve(pairs []diagram.Pair, ts []float64) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		for _, pr := range pairs {
			if pr.Birth <= t && t < pr.Death {
				out[i]++
			}
		}
	}
	return out
}

// landscapes returns the first nLayers landscape functions, layer-major.
func landscapes(pairs []diagram.Pair, ts []float64, nLayers int) []float64 {
	out := make([]float64, nLayers*len(ts))
	top := make([]float64, nLayers)
	for i, t := range ts {
		clear(top)
		for _, pr := range pairs {
			v := tent(pr, t)
			// insert v into the descending top-k buffer
			for l := 0; l < nLayers; l++ {
				if v > top[l] {
					copy(top[l+1:], top[l:nLayers-1])
					top[l] = v
					break
				}
			}
		}
		for l := 0; l < nLayers; l++ {
			out[l*len(ts)+i] = top[l]
		}
	}
	return out
}

func silhouette(pairs []diagram.Pair, ts []float64, power float64) []float64 {
	out := make([]float64, len(ts))
	weights := make([]float64, len(pairs))
	var total float64
	for k, pr := range pairs {
		weights[k] = math.Pow(pr.Lifetime(), power)
		total += weights[k]
	}
	if total == 0 {
		return out
	}
	for i, t := range ts {
		var acc float64
		for k, pr := range pairs {
			acc += weights[k] * tent(pr, t)
		}
		out[i] = acc / total
	}
	return out
}

func gaussian(u, sigma float64) float64 {
	return math.Exp(-(u*u)/(2*sigma*sigma)) / (sigma * math.Sqrt(2*math.Pi))
}

// heat samples the Gaussian-smoothed diagram minus its reflection through
// the diagonal on the grid axis × axis (row = birth, column = death).
func heat(pairs []diagram.Pair, axis []float64, sigma float64) []float64 {
	n := len(axis)
	out := make([]float64, n*n)
	gb := make([]float64, n)
	gd := make([]float64, n)
	for _, pr := range pairs {
		if pr.IsDiagonal() {
			continue
		}
		for i, x := range axis {
			gb[i] = gaussian(x-pr.Birth, sigma)
			gd[i] = gaussian(x-pr.Death, sigma)
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				out[i*n+j] += gb[i]*gd[j] - gd[i]*gb[j]
			}
		}
	}
	return out
}

// persistenceImage samples the weighted Gaussian-smoothed diagram in
// birth-persistence coordinates (row = birth, column = persistence).
// Diagonal points carry no persistence and are skipped.
func persistenceImage(pairs []diagram.Pair, births, pers []float64, sigma float64, w Weight) []float64 {
	nb, np := len(births), len(pers)
	out := make([]float64, nb*np)
	gb := make([]float64, nb)
	gp := make([]float64, np)
	for _, pr := range pairs {
		if pr.IsDiagonal() {
			continue
		}
		for i, x := range births {
			gb[i] = gaussian(x-pr.Birth, sigma)
		}
		for j, y := range pers {
			gp[j] = gaussian(y-pr.Lifetime(), sigma)
		}
		for i := 0; i < nb; i++ {
			for j := 0; j < np; j++ {
				out[i*np+j] += gb[i] * gp[j]
			}
		}
	}
	for j, y := range pers {
		wj := w.Eval(y)
		for i := 0; i < nb; i++ {
			out[i*np+j] *= wj
		}
	}
	return out
}
