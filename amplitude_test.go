package topovec

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/topovec/diagram"
	"github.com/hupe1980/topovec/kernel"
	"github.com/hupe1980/topovec/testutil"
)

var allMetrics = []kernel.Metric{
	kernel.Bottleneck,
	kernel.Wasserstein,
	kernel.Betti,
	kernel.Landscape,
	kernel.Silhouette,
	kernel.Heat,
	kernel.PersistenceImage,
}

func TestAmplitude_DiagonalIsZero(t *testing.T) {
	ctx := context.Background()
	X := diagram.Batch{
		{{Birth: 0, Death: 0, Dim: 0}, {Birth: 1, Death: 1, Dim: 0}, {Birth: 2, Death: 2, Dim: 1}},
		{{Birth: 3, Death: 3, Dim: 0}, {Birth: 0.5, Death: 0.5, Dim: 0}, {Birth: 4, Death: 4, Dim: 1}},
	}

	for _, m := range allMetrics {
		t.Run(m.String(), func(t *testing.T) {
			a, err := NewAmplitude(WithMetric(m))
			require.NoError(t, err)

			out, err := a.FitTransform(ctx, X)
			require.NoError(t, err)
			for _, v := range out.RawMatrix().Data {
				assert.Zero(t, v)
			}
		})
	}
}

func TestAmplitude_OrderIsRowNorm(t *testing.T) {
	ctx := context.Background()
	X := testutil.NewRNG(3).Batch(20, []int{0, 1, 2}, []int{8, 5, 2}, 1.0, 0.1)

	for _, m := range allMetrics {
		for _, p := range []float64{1, 2, 3.5, math.Inf(1)} {
			raw, err := NewAmplitude(WithMetric(m))
			require.NoError(t, err)
			want, err := raw.FitTransform(ctx, X)
			require.NoError(t, err)

			reduced, err := NewAmplitude(WithMetric(m), WithOrder(p))
			require.NoError(t, err)
			got, err := reduced.FitTransform(ctx, X)
			require.NoError(t, err)

			r, c := got.Dims()
			require.Equal(t, 20, r)
			require.Equal(t, 1, c)
			for i := range r {
				assert.Equal(t, floats.Norm(want.RawRowView(i), p), got.At(i, 0), "%s p=%g row %d", m, p, i)
			}
		}
	}
}

func TestAmplitude_Fit(t *testing.T) {
	ctx := context.Background()

	a, err := NewAmplitude()
	require.NoError(t, err)
	assert.Equal(t, kernel.Landscape, a.Metric())
	assert.Equal(t, kernel.Params{P: 2, NBins: 100, NLayers: 1}, a.EffectiveParams())
	assert.Nil(t, a.Samplings())

	_, err = a.Transform(ctx, exampleBatch())
	require.ErrorIs(t, err, ErrNotFitted)

	out, err := a.FitTransform(ctx, exampleBatch())
	require.NoError(t, err)
	r, c := out.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, out.At(0, 0), out.At(1, 0))
	assert.Positive(t, out.At(0, 0))
	assert.Len(t, a.Samplings(), 2)

	// Bottleneck amplitude of H0 is half the longest lifetime.
	b, err := NewAmplitude(WithMetric(kernel.Bottleneck))
	require.NoError(t, err)
	out, err = b.FitTransform(ctx, exampleBatch())
	require.NoError(t, err)
	assert.InDelta(t, 1.5, out.At(0, 0), 1e-12)
	assert.InDelta(t, 2.0, out.At(0, 1), 1e-12)
}

func TestAmplitude_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		option string
	}{
		{"UnknownMetric", []Option{WithMetric(kernel.Metric(99))}, "metric"},
		{"RejectedParam", []Option{WithMetric(kernel.Bottleneck), WithMetricParams(kernel.Params{P: 2})}, "metric_params"},
		{"BadP", []Option{WithMetric(kernel.Wasserstein), WithMetricParams(kernel.Params{P: 0.5})}, "metric_params"},
		{"ZeroOrder", []Option{WithOrder(0)}, "order"},
		{"NegativeOrder", []Option{WithOrder(-2)}, "order"},
		{"NaNOrder", []Option{WithOrder(math.NaN())}, "order"},
		{"EntropyOption", []Option{WithNormalize(true)}, "normalize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAmplitude(tt.opts...)
			require.ErrorIs(t, err, ErrInvalidConfig)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.option, cfgErr.Option)
		})
	}
}

func TestAmplitude_ConcurrencyInvariance(t *testing.T) {
	ctx := context.Background()
	X := testutil.NewRNG(5).Batch(50, []int{0, 1}, []int{10, 4}, 2.0, 0.1)

	for _, m := range allMetrics {
		t.Run(m.String(), func(t *testing.T) {
			seq, err := NewAmplitude(WithMetric(m), WithNJobs(1))
			require.NoError(t, err)
			want, err := seq.FitTransform(ctx, X)
			require.NoError(t, err)

			par, err := NewAmplitude(WithMetric(m), WithNJobs(6))
			require.NoError(t, err)
			got, err := par.FitTransform(ctx, X)
			require.NoError(t, err)

			assert.Equal(t, want.RawMatrix().Data, got.RawMatrix().Data)

			// Transform is repeatable on the same fitted instance.
			again, err := par.Transform(ctx, X)
			require.NoError(t, err)
			assert.Equal(t, got.RawMatrix().Data, again.RawMatrix().Data)
		})
	}
}
