package quantization

import (
	"fmt"
	"strings"
)

// Weight selects how diagram points are weighted before clustering and
// summation.
type Weight int

const (
	// Uniform gives every point weight one.
	Uniform Weight = iota
	// NoWeight is the "none" setting; it also weights every point by one.
	NoWeight
)

func (w Weight) String() string {
	switch w {
	case Uniform:
		return "uniform"
	case NoWeight:
		return "none"
	default:
		return fmt.Sprintf("Unknown(%d)", int(w))
	}
}

// ParseWeight maps a weight function name to its Weight.
func ParseWeight(name string) (Weight, error) {
	switch strings.ToLower(name) {
	case "uniform", "one":
		return Uniform, nil
	case "none", "":
		return NoWeight, nil
	default:
		return 0, fmt.Errorf("%w: unknown weight function %q", ErrInvalidParams, name)
	}
}

// Valid reports whether w is a known weight function.
func (w Weight) Valid() bool { return w == Uniform || w == NoWeight }

// Weights returns one weight per point.
func (w Weight) Weights(points [][]float64) []float64 {
	out := make([]float64, len(points))
	for i := range out {
		out[i] = 1
	}
	return out
}
