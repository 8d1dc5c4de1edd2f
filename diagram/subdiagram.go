package diagram

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Index partitions a diagram into per-dimension position sets.
// Positions are stored in roaring bitmaps, so iterating a selection yields
// triples in their original order.
type Index struct {
	diagram Diagram
	byDim   map[int]*roaring.Bitmap
}

// NewIndex builds the per-dimension index of d.
func NewIndex(d Diagram) *Index {
	byDim := make(map[int]*roaring.Bitmap, 4)
	for i, p := range d {
		bm, ok := byDim[p.Dim]
		if !ok {
			bm = roaring.New()
			byDim[p.Dim] = bm
		}
		bm.Add(uint32(i))
	}
	return &Index{diagram: d, byDim: byDim}
}

// Dims returns the indexed dimensions in ascending order.
func (ix *Index) Dims() []int {
	dims := make([]int, 0, len(ix.byDim))
	for dim := range ix.byDim {
		dims = append(dims, dim)
	}
	slices.Sort(dims)
	return dims
}

// Count returns the number of triples with the given dimension.
func (ix *Index) Count(dim int) int {
	bm, ok := ix.byDim[dim]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

func (ix *Index) positions(dims []int) *roaring.Bitmap {
	switch len(dims) {
	case 0:
		return roaring.New()
	case 1:
		if bm, ok := ix.byDim[dims[0]]; ok {
			return bm
		}
		return roaring.New()
	}
	sets := make([]*roaring.Bitmap, 0, len(dims))
	for _, dim := range dims {
		if bm, ok := ix.byDim[dim]; ok {
			sets = append(sets, bm)
		}
	}
	return roaring.FastOr(sets...)
}

// Select returns the triples whose dimension is in dims, preserving order.
func (ix *Index) Select(dims ...int) Diagram {
	pos := ix.positions(dims)
	out := make(Diagram, 0, pos.GetCardinality())
	it := pos.Iterator()
	for it.HasNext() {
		out = append(out, ix.diagram[it.Next()])
	}
	return out
}

// SelectPairs returns the (birth, death) pairs whose dimension is in dims,
// preserving order.
func (ix *Index) SelectPairs(dims ...int) []Pair {
	pos := ix.positions(dims)
	out := make([]Pair, 0, pos.GetCardinality())
	it := pos.Iterator()
	for it.HasNext() {
		out = append(out, ix.diagram[it.Next()].Pair())
	}
	return out
}

// Subdiagram restricts d to the triples whose dimension is in dims.
// An empty result is not an error.
func Subdiagram(d Diagram, dims ...int) Diagram {
	if len(dims) == 1 {
		out := make(Diagram, 0, len(d))
		for _, p := range d {
			if p.Dim == dims[0] {
				out = append(out, p)
			}
		}
		return out
	}
	return NewIndex(d).Select(dims...)
}

// Pairs restricts d to dimension dim and drops the dimension column.
func Pairs(d Diagram, dim int) []Pair {
	out := make([]Pair, 0, len(d))
	for _, p := range d {
		if p.Dim == dim {
			out = append(out, p.Pair())
		}
	}
	return out
}

// BatchPairs applies Pairs to every diagram of b.
func BatchPairs(b Batch, dim int) [][]Pair {
	out := make([][]Pair, len(b))
	for i, d := range b {
		out[i] = Pairs(d, dim)
	}
	return out
}

// OffDiagonal returns the pairs with non-zero persistence.
func OffDiagonal(pairs []Pair) []Pair {
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if !p.IsDiagonal() {
			out = append(out, p)
		}
	}
	return out
}

// Lifetimes returns death - birth for every pair.
func Lifetimes(pairs []Pair) []float64 {
	out := make([]float64, len(pairs))
	for i, p := range pairs {
		out[i] = p.Lifetime()
	}
	return out
}
