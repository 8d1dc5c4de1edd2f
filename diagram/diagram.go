package diagram

import (
	"fmt"
	"slices"
)

// Point is a single (birth, death, homology dimension) triple.
type Point struct {
	Birth float64 `json:"birth" yaml:"birth"`
	Death float64 `json:"death" yaml:"death"`
	Dim   int     `json:"dim" yaml:"dim"`
}

// Lifetime returns death - birth.
func (p Point) Lifetime() float64 { return p.Death - p.Birth }

// IsDiagonal reports whether the point has zero persistence.
func (p Point) IsDiagonal() bool { return p.Death == p.Birth }

// Pair returns the point without its dimension tag.
func (p Point) Pair() Pair { return Pair{Birth: p.Birth, Death: p.Death} }

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g, H%d)", p.Birth, p.Death, p.Dim)
}

// Pair is a (birth, death) point of a subdiagram whose dimension column was dropped.
type Pair struct {
	Birth float64 `json:"birth"`
	Death float64 `json:"death"`
}

// Lifetime returns death - birth.
func (p Pair) Lifetime() float64 { return p.Death - p.Birth }

// IsDiagonal reports whether the pair has zero persistence.
func (p Pair) IsDiagonal() bool { return p.Death == p.Birth }

// Diagram is an ordered sequence of triples.
type Diagram []Point

// Batch is a collection of diagrams processed together.
type Batch []Diagram

// Dims returns the distinct homology dimensions of d in ascending order.
func (d Diagram) Dims() []int {
	seen := make(map[int]struct{}, 4)
	dims := make([]int, 0, 4)
	for _, p := range d {
		if _, ok := seen[p.Dim]; ok {
			continue
		}
		seen[p.Dim] = struct{}{}
		dims = append(dims, p.Dim)
	}
	slices.Sort(dims)
	return dims
}

// Counts returns the number of triples per homology dimension.
func (d Diagram) Counts() map[int]int {
	counts := make(map[int]int, 4)
	for _, p := range d {
		counts[p.Dim]++
	}
	return counts
}

// FromTriples builds a diagram from raw [birth, death, dim] rows.
// Dimension values are truncated to int.
func FromTriples(rows [][3]float64) Diagram {
	d := make(Diagram, len(rows))
	for i, r := range rows {
		d[i] = Point{Birth: r[0], Death: r[1], Dim: int(r[2])}
	}
	return d
}

// Triples returns the diagram as raw [birth, death, dim] rows.
func (d Diagram) Triples() [][3]float64 {
	rows := make([][3]float64, len(d))
	for i, p := range d {
		rows[i] = [3]float64{p.Birth, p.Death, float64(p.Dim)}
	}
	return rows
}

// HomologyDimensions returns the sorted dimension set of the batch's reference
// diagram (its first entry). The reference diagram is assumed to be
// representative of the whole batch.
func HomologyDimensions(b Batch) ([]int, error) {
	if len(b) == 0 {
		return nil, ErrEmptyBatch
	}
	return b[0].Dims(), nil
}
