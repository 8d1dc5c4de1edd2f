package diagram

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Diagram {
	return Diagram{
		{Birth: 0, Death: 1, Dim: 0},
		{Birth: 0.5, Death: 4, Dim: 1},
		{Birth: 0, Death: 2, Dim: 0},
		{Birth: 1, Death: 1, Dim: 2},
		{Birth: 0, Death: 3, Dim: 0},
	}
}

func TestDims(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, sample().Dims())
	assert.Empty(t, Diagram{}.Dims())
}

func TestHomologyDimensions(t *testing.T) {
	dims, err := HomologyDimensions(Batch{sample(), {{Birth: 0, Death: 1, Dim: 7}}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, dims)

	_, err = HomologyDimensions(nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestSubdiagram(t *testing.T) {
	d := sample()

	t.Run("SingleDimensionKeepsOrder", func(t *testing.T) {
		got := Subdiagram(d, 0)
		require.Len(t, got, 3)
		assert.Equal(t, []float64{1, 2, 3}, []float64{got[0].Death, got[1].Death, got[2].Death})
	})

	t.Run("MultipleDimensions", func(t *testing.T) {
		got := Subdiagram(d, 2, 1)
		assert.Equal(t, Diagram{d[1], d[3]}, got)
	})

	t.Run("NoMatchIsEmpty", func(t *testing.T) {
		assert.Empty(t, Subdiagram(d, 5))
		assert.Empty(t, Subdiagram(d, 5, 6))
	})

	t.Run("RemoveDim", func(t *testing.T) {
		assert.Equal(t, []Pair{{0, 1}, {0, 2}, {0, 3}}, Pairs(d, 0))
		assert.Empty(t, Pairs(d, 9))
	})
}

func TestIndex(t *testing.T) {
	ix := NewIndex(sample())
	assert.Equal(t, []int{0, 1, 2}, ix.Dims())
	assert.Equal(t, 3, ix.Count(0))
	assert.Equal(t, 0, ix.Count(4))
	assert.Equal(t, []Pair{{0, 1}, {0.5, 4}, {0, 2}, {0, 3}}, ix.SelectPairs(0, 1))
	assert.Empty(t, ix.Select())
}

func TestOffDiagonalAndLifetimes(t *testing.T) {
	pairs := []Pair{{0, 1}, {2, 2}, {1, 4}}
	assert.Equal(t, []Pair{{0, 1}, {1, 4}}, OffDiagonal(pairs))
	assert.Equal(t, []float64{1, 0, 3}, Lifetimes(pairs))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		b    Batch
		err  error
	}{
		{"Valid", Batch{sample()}, nil},
		{"Empty", Batch{}, ErrEmptyBatch},
		{"DeathBeforeBirth", Batch{{{Birth: 2, Death: 1}}}, ErrInvalidDiagram},
		{"NaN", Batch{{{Birth: math.NaN(), Death: 1}}}, ErrInvalidDiagram},
		{"Inf", Batch{{{Birth: 0, Death: math.Inf(1)}}}, ErrInvalidDiagram},
		{"NegativeDim", Batch{{{Birth: 0, Death: 1, Dim: -1}}}, ErrInvalidDiagram},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.b)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestValidateFixedCounts(t *testing.T) {
	ok := Batch{sample(), sample()}
	require.NoError(t, ValidateFixedCounts(ok, []int{0, 1, 2}))

	ragged := Batch{sample(), sample()[:2]}
	assert.ErrorIs(t, ValidateFixedCounts(ragged, []int{0, 1, 2}), ErrRaggedBatch)
}

func TestTriplesRoundTrip(t *testing.T) {
	d := sample()
	assert.Equal(t, d, FromTriples(d.Triples()))
}
