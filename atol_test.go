package topovec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/topovec/diagram"
	"github.com/hupe1980/topovec/quantization"
	"github.com/hupe1980/topovec/testutil"
)

// clusteredBatch returns n diagrams with points around three H0 centers and
// two H1 centers.
func clusteredBatch(rng *testutil.RNG, n int) diagram.Batch {
	b := make(diagram.Batch, n)
	for i := range b {
		d := rng.ClusteredDiagram(0, 12, [][2]float64{{0, 1}, {0, 4}, {0, 8}}, 0.1)
		d = append(d, rng.ClusteredDiagram(1, 8, [][2]float64{{1, 2}, {3, 6}}, 0.1)...)
		b[i] = d
	}
	return b
}

func TestATOL(t *testing.T) {
	ctx := context.Background()
	params := quantization.Params{NClusters: 3, Seed: 1}

	t.Run("FeatureLayout", func(t *testing.T) {
		rng := testutil.NewRNG(42)
		a, err := NewATOL(WithQuantizerParams(params))
		require.NoError(t, err)

		out, err := a.FitTransform(ctx, clusteredBatch(rng, 5))
		require.NoError(t, err)

		r, c := out.Dims()
		assert.Equal(t, 5, r)
		assert.Equal(t, 6, c)
		assert.Equal(t, []int{0, 1}, a.HomologyDimensions())

		centers := a.Centers()
		require.Len(t, centers, 6)
		assert.Len(t, a.Inertias(), 6)
		for i, p := range centers {
			want := 0
			if i >= 3 {
				want = 1
			}
			assert.Equal(t, want, p.Dim)
		}
		for _, in := range a.Inertias() {
			assert.GreaterOrEqual(t, in, 0.0)
		}
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				assert.Greater(t, out.At(i, j), 0.0)
			}
		}
	})

	t.Run("RaggedBatchAllowed", func(t *testing.T) {
		rng := testutil.NewRNG(3)
		a, err := NewATOL(WithQuantizerParams(params))
		require.NoError(t, err)

		X := rng.RaggedBatch(8, []int{0, 1}, 6, 5)
		out, err := a.FitTransform(ctx, X)
		require.NoError(t, err)

		r, c := out.Dims()
		assert.Equal(t, 8, r)
		assert.Equal(t, 6, c)
	})

	t.Run("MissingDimensionGivesZeroColumns", func(t *testing.T) {
		rng := testutil.NewRNG(7)
		a, err := NewATOL(WithQuantizerParams(params))
		require.NoError(t, err)
		require.NoError(t, a.Fit(ctx, clusteredBatch(rng, 4)))

		onlyH0 := diagram.Batch{rng.ClusteredDiagram(0, 5, [][2]float64{{0, 2}}, 0.1)}
		out, err := a.Transform(ctx, onlyH0)
		require.NoError(t, err)

		for j := 3; j < 6; j++ {
			assert.Zero(t, out.At(0, j))
		}
	})

	t.Run("DiagonalPointsIgnored", func(t *testing.T) {
		rng := testutil.NewRNG(11)
		a, err := NewATOL(WithQuantizerParams(params))
		require.NoError(t, err)
		require.NoError(t, a.Fit(ctx, clusteredBatch(rng, 4)))

		d := rng.ClusteredDiagram(0, 6, [][2]float64{{0, 4}}, 0.1)
		padded := append(append(diagram.Diagram(nil), d...),
			diagram.Point{Birth: 2, Death: 2, Dim: 0},
			diagram.Point{Birth: 5, Death: 5, Dim: 1},
		)
		plain, err := a.Transform(ctx, diagram.Batch{d})
		require.NoError(t, err)
		withPad, err := a.Transform(ctx, diagram.Batch{padded})
		require.NoError(t, err)
		assert.True(t, testutil.MatrixEqualApprox(plain, withPad, 0))
	})

	t.Run("ParallelismInvariant", func(t *testing.T) {
		X := clusteredBatch(testutil.NewRNG(5), 10)

		serial, err := NewATOL(WithQuantizerParams(params), WithNJobs(1))
		require.NoError(t, err)
		want, err := serial.FitTransform(ctx, X)
		require.NoError(t, err)

		par, err := NewATOL(WithQuantizerParams(params), WithNJobs(4))
		require.NoError(t, err)
		got, err := par.FitTransform(ctx, X)
		require.NoError(t, err)

		assert.True(t, testutil.MatrixEqualApprox(want, got, 1e-12))
		assert.Equal(t, serial.Centers(), par.Centers())
	})

	t.Run("MiniBatchKMeans", func(t *testing.T) {
		a, err := NewATOL(
			WithQuantizer(quantization.MiniBatchKMeans),
			WithQuantizerParams(quantization.Params{NClusters: 2, BatchSize: 16, Seed: 2}),
			WithContrastFunction(quantization.Laplacian),
		)
		require.NoError(t, err)

		out, err := a.FitTransform(ctx, clusteredBatch(testutil.NewRNG(9), 6))
		require.NoError(t, err)
		_, c := out.Dims()
		assert.Equal(t, 4, c)
	})

	t.Run("PerDimensionParams", func(t *testing.T) {
		a, err := NewATOL(WithQuantizerParamsPerDimension([]quantization.Params{
			{NClusters: 3, Seed: 1},
			{NClusters: 2, Seed: 1},
		}))
		require.NoError(t, err)

		out, err := a.FitTransform(ctx, clusteredBatch(testutil.NewRNG(13), 4))
		require.NoError(t, err)
		_, c := out.Dims()
		assert.Equal(t, 5, c)
	})
}

func TestATOL_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFitted", func(t *testing.T) {
		a, err := NewATOL()
		require.NoError(t, err)
		_, err = a.Transform(ctx, exampleBatch())
		assert.ErrorIs(t, err, ErrNotFitted)
		assert.Nil(t, a.Centers())
		assert.Nil(t, a.Inertias())
	})

	t.Run("InsufficientPoints", func(t *testing.T) {
		a, err := NewATOL(WithQuantizerParams(quantization.Params{NClusters: 10}))
		require.NoError(t, err)
		err = a.Fit(ctx, exampleBatch())
		assert.ErrorIs(t, err, ErrInsufficientPoints)
		assert.Nil(t, a.HomologyDimensions())
	})

	t.Run("PerDimensionLengthMismatch", func(t *testing.T) {
		a, err := NewATOL(WithQuantizerParamsPerDimension([]quantization.Params{{NClusters: 2}}))
		require.NoError(t, err)
		err = a.Fit(ctx, clusteredBatch(testutil.NewRNG(1), 3))
		require.ErrorIs(t, err, ErrInvalidConfig)

		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "quantiser_params_per_dimension", cfgErr.Option)
	})

	t.Run("InvalidOptions", func(t *testing.T) {
		tests := []struct {
			name   string
			opts   []Option
			option string
		}{
			{"Quantizer", []Option{WithQuantizer(quantization.Kind(99))}, "quantiser"},
			{"Weight", []Option{WithWeightFunction(quantization.Weight(99))}, "weight_function"},
			{"Contrast", []Option{WithContrastFunction(quantization.Contrast(99))}, "contrast_function"},
			{"NegativeClusters", []Option{WithQuantizerParams(quantization.Params{NClusters: -1})}, "quantiser_params"},
			{"BatchSizeOnKMeans", []Option{WithQuantizerParams(quantization.Params{BatchSize: 4})}, "quantiser_params"},
			{"EmptyPerDimension", []Option{WithQuantizerParamsPerDimension([]quantization.Params{})}, "quantiser_params_per_dimension"},
			{"Metric", []Option{WithMetric(0)}, "metric"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewATOL(tt.opts...)
				require.ErrorIs(t, err, ErrInvalidConfig)

				var cfgErr *ConfigError
				require.True(t, errors.As(err, &cfgErr))
				assert.Equal(t, tt.option, cfgErr.Option)
			})
		}
	})

	t.Run("InvalidDiagram", func(t *testing.T) {
		a, err := NewATOL()
		require.NoError(t, err)
		err = a.Fit(ctx, diagram.Batch{{{Birth: 2, Death: 1, Dim: 0}}})
		assert.ErrorIs(t, err, ErrInvalidDiagram)
		err = a.Fit(ctx, nil)
		assert.ErrorIs(t, err, ErrEmptyBatch)
	})
}
