package topovec

import (
	"context"
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/topovec/diagram"
	"github.com/hupe1980/topovec/internal/parallel"
)

// Transformer is the two-phase contract shared by every vectorizer.
//
// Fit inspects a reference batch and freezes the homology dimensions and any
// data-dependent parameters. Transform is a pure function of that fitted
// state and its input, safe for concurrent use. Fit may be called again; it
// atomically replaces the fitted state.
type Transformer interface {
	Fit(ctx context.Context, X diagram.Batch) error
	Transform(ctx context.Context, X diagram.Batch) (*mat.Dense, error)
	FitTransform(ctx context.Context, X diagram.Batch) (*mat.Dense, error)
	// HomologyDimensions returns the fitted dimensions in ascending order,
	// or nil before Fit.
	HomologyDimensions() []int
}

// estimator carries the configuration shared by all vectorizers.
type estimator struct {
	name    string
	jobs    int
	logger  *Logger
	metrics MetricsCollector
}

func newEstimator(name string, o options) estimator {
	return estimator{
		name:    name,
		jobs:    parallel.EffectiveJobs(o.nJobs),
		logger:  o.logger.WithEstimator(name),
		metrics: o.metrics,
	}
}

func (e *estimator) observeFit(ctx context.Context, samples int, dims []int, start time.Time, err error) {
	d := time.Since(start)
	e.metrics.RecordFit(e.name, samples, d, err)
	e.logger.LogFit(ctx, samples, dims, d, err)
}

func (e *estimator) observeTransform(ctx context.Context, samples int, out *mat.Dense, start time.Time, err error) {
	d := time.Since(start)
	e.metrics.RecordTransform(e.name, samples, d, err)
	features := 0
	if out != nil {
		_, features = out.Dims()
	}
	e.logger.LogTransform(ctx, samples, features, d, err)
}

// fitDimensions validates X and returns its homology dimension set.
func fitDimensions(X diagram.Batch) ([]int, error) {
	if err := diagram.Validate(X); err != nil {
		return nil, err
	}
	dims, err := diagram.HomologyDimensions(X)
	if err != nil {
		return nil, err
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: reference diagram has no points", ErrInvalidDiagram)
	}
	return dims, nil
}

// indexBatch builds the per-dimension index of every diagram of X.
func indexBatch(ctx context.Context, X diagram.Batch, jobs int) ([]*diagram.Index, error) {
	out := make([]*diagram.Index, len(X))
	err := parallel.Each(ctx, len(X), jobs, func(_ context.Context, i int) error {
		out[i] = diagram.NewIndex(X[i])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mapSlices evaluates fn on the pairs of every sample and fitted dimension.
// Work is split into (dimension × slice) units; column k of the result holds
// dimension dims[k].
func mapSlices(ctx context.Context, idx []*diagram.Index, dims []int, jobs int, fn func(k int, pairs []diagram.Pair) float64) (*mat.Dense, error) {
	n := len(idx)
	parts := parallel.EvenSlices(n, jobs)
	units, err := parallel.Grid(ctx, len(dims), len(parts), jobs, func(_ context.Context, t parallel.Task) ([]float64, error) {
		s := parts[t.Col]
		vals := make([]float64, s.Len())
		for i := s.Start; i < s.End; i++ {
			vals[i-s.Start] = fn(t.Row, idx[i].SelectPairs(dims[t.Row]))
		}
		return vals, nil
	})
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(n, len(dims), nil)
	for k := range dims {
		for j, s := range parts {
			for i, v := range units[k][j] {
				out.Set(s.Start+i, k, v)
			}
		}
	}
	return out, nil
}

func cloneDims(dims []int) []int {
	if dims == nil {
		return nil
	}
	return slices.Clone(dims)
}
