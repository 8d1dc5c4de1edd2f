package quantization

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/topovec/distance"
)

// Contrast selects how proximity to a center decays with distance.
type Contrast int

const (
	Gaussian Contrast = iota
	Laplacian
	Indicator
)

func (c Contrast) String() string {
	switch c {
	case Gaussian:
		return "gaussian"
	case Laplacian:
		return "laplacian"
	case Indicator:
		return "indicator"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ParseContrast maps a contrast function name to its Contrast.
func ParseContrast(name string) (Contrast, error) {
	switch strings.ToLower(name) {
	case "gaussian":
		return Gaussian, nil
	case "laplacian":
		return Laplacian, nil
	case "indicator":
		return Indicator, nil
	default:
		return 0, fmt.Errorf("%w: unknown contrast function %q", ErrInvalidParams, name)
	}
}

// Valid reports whether c is a known contrast function.
func (c Contrast) Valid() bool { return c >= Gaussian && c <= Indicator }

// Eval returns the proximity of a point at distance d from a center of the
// given inertia. An infinite inertia contributes nothing; a zero inertia only
// registers exact coincidence.
func (c Contrast) Eval(d, inertia float64) float64 {
	switch {
	case math.IsInf(inertia, 1):
		return 0
	case inertia == 0:
		if d == 0 {
			return 1
		}
		return 0
	}
	switch c {
	case Gaussian:
		return math.Exp(-(d * d) / (inertia * inertia))
	case Laplacian:
		return math.Exp(-d / inertia)
	case Indicator:
		switch {
		case d <= inertia:
			return 1
		case d < 2*inertia:
			return 2 - d/inertia
		default:
			return 0
		}
	default:
		return 0
	}
}

// Matrix returns the len(points) × len(centers) proximity matrix.
func (c Contrast) Matrix(points, centers [][]float64, inertias []float64) *mat.Dense {
	dists := distance.Pairwise(points, centers, false)
	if dists.IsEmpty() {
		return dists
	}
	dists.Apply(func(_, j int, d float64) float64 {
		return c.Eval(d, inertias[j])
	}, dists)
	return dists
}
