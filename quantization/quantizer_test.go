package quantization

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("KMeans")
	require.NoError(t, err)
	assert.Equal(t, KMeans, k)

	k, err = ParseKind("minibatchkmeans")
	require.NoError(t, err)
	assert.Equal(t, MiniBatchKMeans, k)

	_, err = ParseKind("dbscan")
	assert.ErrorIs(t, err, ErrInvalidParams)

	assert.Equal(t, "MiniBatchKMeans", MiniBatchKMeans.String())
	assert.Equal(t, "Unknown(7)", Kind(7).String())
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		p     Params
		valid bool
	}{
		{"Defaults", KMeans, Params{}, true},
		{"KMeansFull", KMeans, Params{NClusters: 3, MaxIter: 10, NInit: 2, Tol: 1e-3, Seed: 9}, true},
		{"MiniBatchFull", MiniBatchKMeans, Params{NClusters: 3, BatchSize: 16}, true},
		{"NegativeClusters", KMeans, Params{NClusters: -1}, false},
		{"NegativeTol", KMeans, Params{Tol: -1}, false},
		{"BatchSizeOnKMeans", KMeans, Params{BatchSize: 8}, false},
		{"NInitOnMiniBatch", MiniBatchKMeans, Params{NInit: 2}, false},
		{"UnknownKind", Kind(5), Params{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate(tt.kind)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidParams)
			}
		})
	}
	assert.Equal(t, DefaultNClusters, Params{}.Clusters())
}

func TestQuantizer(t *testing.T) {
	points := [][]float64{{0, 1}, {0, 1.2}, {0.1, 1}, {5, 9}, {5.2, 9}, {5, 9.1}}

	for _, kind := range []Kind{KMeans, MiniBatchKMeans} {
		t.Run(kind.String(), func(t *testing.T) {
			q, err := New(kind, Params{NClusters: 2, Seed: 7})
			require.NoError(t, err)
			assert.Equal(t, 2, q.NClusters())
			assert.Nil(t, q.Centers())

			require.NoError(t, q.Fit(context.Background(), points, nil))
			centers := q.Centers()
			require.Len(t, centers, 2)
			assert.NotEqual(t, q.Predict([]float64{0, 1}), q.Predict([]float64{5, 9}))
		})
	}
}

func TestQuantizer_TooFewPoints(t *testing.T) {
	q, err := New(KMeans, Params{NClusters: 3})
	require.NoError(t, err)
	assert.ErrorIs(t, q.Fit(context.Background(), [][]float64{{0, 1}}, nil), ErrTooFewPoints)
	assert.ErrorIs(t, q.Fit(context.Background(), nil, nil), ErrTooFewPoints)
}

func TestContrast(t *testing.T) {
	tests := []struct {
		c        Contrast
		d, r     float64
		expected float64
	}{
		{Gaussian, 0, 1, 1},
		{Gaussian, 2, 1, math.Exp(-4)},
		{Laplacian, 2, 1, math.Exp(-2)},
		{Indicator, 0.5, 1, 1},
		{Indicator, 1, 1, 1},
		{Indicator, 1.5, 1, 0.5},
		{Indicator, 2, 1, 0},
		{Gaussian, 0, math.Inf(1), 0},
		{Laplacian, 3, math.Inf(1), 0},
		{Indicator, 0, 0, 1},
		{Gaussian, 0.1, 0, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.expected, tt.c.Eval(tt.d, tt.r), 1e-12, "%s(d=%g, r=%g)", tt.c, tt.d, tt.r)
	}

	for _, name := range []string{"gaussian", "laplacian", "indicator"} {
		c, err := ParseContrast(name)
		require.NoError(t, err)
		assert.Equal(t, name, c.String())
		assert.True(t, c.Valid())
	}
	_, err := ParseContrast("cosine")
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestContrastMatrix(t *testing.T) {
	points := [][]float64{{0, 0}, {3, 4}}
	centers := [][]float64{{0, 0}, {3, 4}}
	m := Laplacian.Matrix(points, centers, []float64{5, 5})
	r, c := m.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 2, c)
	assert.InDelta(t, 1, m.At(0, 0), 1e-12)
	assert.InDelta(t, math.Exp(-1), m.At(0, 1), 1e-12)

	assert.True(t, Gaussian.Matrix(nil, centers, []float64{1, 1}).IsEmpty())
}

func TestWeight(t *testing.T) {
	w, err := ParseWeight("uniform")
	require.NoError(t, err)
	assert.Equal(t, Uniform, w)
	w, err = ParseWeight("none")
	require.NoError(t, err)
	assert.Equal(t, NoWeight, w)
	_, err = ParseWeight("linear")
	assert.ErrorIs(t, err, ErrInvalidParams)

	assert.Equal(t, []float64{1, 1, 1}, Uniform.Weights(make([][]float64, 3)))
	assert.Equal(t, []float64{1}, NoWeight.Weights(make([][]float64, 1)))
}

func TestInertias(t *testing.T) {
	points := [][]float64{{0, 0}, {0, 4}, {3, 0}}

	single := Inertias([][]float64{{1, 1}}, points)
	assert.Equal(t, []float64{2.5}, single)

	multi := Inertias([][]float64{{0, 0}, {0, 2}, {0, 5}}, points)
	assert.Equal(t, []float64{1, 1, 1.5}, multi)

	coincident := Inertias([][]float64{{1, 1}, {1, 1}}, points)
	assert.True(t, math.IsInf(coincident[0], 1))
	assert.True(t, math.IsInf(coincident[1], 1))
}
