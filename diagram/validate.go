package diagram

import (
	"fmt"
	"math"
)

// Validate checks the structural invariants of every triple in b.
func Validate(b Batch) error {
	if len(b) == 0 {
		return ErrEmptyBatch
	}
	for i, d := range b {
		for j, p := range d {
			if err := validatePoint(p); err != nil {
				return fmt.Errorf("%w: diagram %d, point %d %s: %s", ErrInvalidDiagram, i, j, p, err)
			}
		}
	}
	return nil
}

type pointError string

func (e pointError) Error() string { return string(e) }

func validatePoint(p Point) error {
	switch {
	case math.IsNaN(p.Birth) || math.IsNaN(p.Death):
		return pointError("NaN coordinate")
	case math.IsInf(p.Birth, 0) || math.IsInf(p.Death, 0):
		return pointError("infinite coordinate")
	case p.Death < p.Birth:
		return pointError("death before birth")
	case p.Dim < 0:
		return pointError("negative homology dimension")
	}
	return nil
}

// ValidateFixedCounts checks that every diagram of b has, for each of dims,
// the same number of triples as the reference diagram b[0].
func ValidateFixedCounts(b Batch, dims []int) error {
	if len(b) == 0 {
		return ErrEmptyBatch
	}
	ref := b[0].Counts()
	for i := 1; i < len(b); i++ {
		counts := b[i].Counts()
		for _, dim := range dims {
			if counts[dim] != ref[dim] {
				return fmt.Errorf("%w: diagram %d has %d points in H%d, expected %d",
					ErrRaggedBatch, i, counts[dim], dim, ref[dim])
			}
		}
	}
	return nil
}
