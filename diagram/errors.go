package diagram

import "errors"

var (
	// ErrEmptyBatch is returned when a batch contains no diagrams.
	ErrEmptyBatch = errors.New("diagram: empty batch")

	// ErrInvalidDiagram is returned when a triple violates the diagram invariants
	// (finite values, death >= birth, non-negative dimension).
	ErrInvalidDiagram = errors.New("diagram: invalid diagram")

	// ErrRaggedBatch is returned when diagrams in a batch disagree on the number of
	// triples per homology dimension.
	ErrRaggedBatch = errors.New("diagram: inconsistent number of points per homology dimension")
)
