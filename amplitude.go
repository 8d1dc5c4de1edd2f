package topovec

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/topovec/codec"
	"github.com/hupe1980/topovec/diagram"
	"github.com/hupe1980/topovec/kernel"
	"github.com/hupe1980/topovec/persistence"
)

// Amplitude measures the distance of each homology dimension of a diagram
// from the empty diagram under a kernel metric.
//
// Without an order the output has one column per fitted homology dimension;
// with WithOrder(p) each row is reduced to its p-norm, giving a single column.
type Amplitude struct {
	estimator

	metric kernel.Metric
	params kernel.Params
	order  float64

	state atomic.Pointer[amplitudeState]
}

type amplitudeState struct {
	Dims      []int             `json:"dims"`
	Metric    kernel.Metric     `json:"metric"`
	P         codec.Float       `json:"p,omitempty"`
	NBins     int               `json:"n_bins,omitempty"`
	NLayers   int               `json:"n_layers,omitempty"`
	Power     float64           `json:"power,omitempty"`
	Sigma     float64           `json:"sigma,omitempty"`
	Weight    kernel.Weight     `json:"weight_function"`
	Samplings []kernel.Sampling `json:"samplings"`
	Order     codec.Float       `json:"order,omitempty"`
}

func (st *amplitudeState) params() kernel.Params {
	return kernel.Params{
		P:       float64(st.P),
		NBins:   st.NBins,
		NLayers: st.NLayers,
		Power:   st.Power,
		Sigma:   st.Sigma,
		Weight:  st.Weight,
	}
}

var _ Model = (*Amplitude)(nil)

// NewAmplitude returns an unfitted amplitude computer. The metric defaults to
// kernel.Landscape with default parameters.
//
// Accepted options: WithMetric, WithMetricParams, WithOrder and the common
// options.
func NewAmplitude(opts ...Option) (*Amplitude, error) {
	o, err := applyOptions("Amplitude", optMetric|optMetricParams|optOrder, opts)
	if err != nil {
		return nil, err
	}
	if !o.metric.Valid() {
		return nil, configError("metric", o.metric, "unknown metric")
	}
	params, err := o.metric.Resolve(o.metricParams)
	if err != nil {
		return nil, translateError("metric_params", err)
	}
	if o.set&optOrder != 0 && !validOrder(o.order) {
		return nil, configError("order", o.order, "must be in (0, +Inf]")
	}
	return &Amplitude{
		estimator: newEstimator("Amplitude", o),
		metric:    o.metric,
		params:    params,
		order:     o.order,
	}, nil
}

// Fit records the homology dimensions of X and derives the sampling grid of
// every dimension for gridded metrics. Every diagram must have the
// per-dimension point counts of X[0].
func (a *Amplitude) Fit(ctx context.Context, X diagram.Batch) (err error) {
	start := time.Now()
	var dims []int
	defer func() { a.observeFit(ctx, len(X), dims, start, err) }()

	dims, err = fitDimensions(X)
	if err != nil {
		return err
	}
	if err = diagram.ValidateFixedCounts(X, dims); err != nil {
		return err
	}
	a.state.Store(&amplitudeState{
		Dims:      dims,
		Metric:    a.metric,
		P:         codec.Float(a.params.P),
		NBins:     a.params.NBins,
		NLayers:   a.params.NLayers,
		Power:     a.params.Power,
		Sigma:     a.params.Sigma,
		Weight:    a.params.Weight,
		Samplings: kernel.FitSamplings(a.metric, X, dims, a.params),
		Order:     codec.Float(a.order),
	})
	return nil
}

// Transform returns the amplitude matrix of X.
func (a *Amplitude) Transform(ctx context.Context, X diagram.Batch) (out *mat.Dense, err error) {
	st := a.state.Load()
	if st == nil {
		return nil, ErrNotFitted
	}
	start := time.Now()
	defer func() { a.observeTransform(ctx, len(X), out, start, err) }()

	if err = diagram.Validate(X); err != nil {
		return nil, err
	}
	if err = diagram.ValidateFixedCounts(X, st.Dims); err != nil {
		return nil, err
	}
	idx, err := indexBatch(ctx, X, a.jobs)
	if err != nil {
		return nil, err
	}
	params := st.params()
	amps, err := mapSlices(ctx, idx, st.Dims, a.jobs, func(k int, pairs []diagram.Pair) float64 {
		return kernel.Amplitude(st.Metric, pairs, st.Samplings[k], params)
	})
	if err != nil {
		return nil, err
	}
	if st.Order == 0 {
		return amps, nil
	}

	n, _ := amps.Dims()
	reduced := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		reduced.Set(i, 0, floats.Norm(amps.RawRowView(i), float64(st.Order)))
	}
	return reduced, nil
}

// FitTransform fits X and transforms it.
func (a *Amplitude) FitTransform(ctx context.Context, X diagram.Batch) (*mat.Dense, error) {
	if err := a.Fit(ctx, X); err != nil {
		return nil, err
	}
	return a.Transform(ctx, X)
}

// HomologyDimensions returns the fitted dimensions, or nil before Fit.
func (a *Amplitude) HomologyDimensions() []int {
	if st := a.state.Load(); st != nil {
		return cloneDims(st.Dims)
	}
	return nil
}

// Metric returns the kernel metric of the fitted state, or the configured
// one before Fit.
func (a *Amplitude) Metric() kernel.Metric {
	if st := a.state.Load(); st != nil {
		return st.Metric
	}
	return a.metric
}

// EffectiveParams returns the resolved kernel parameters of the fitted state,
// or the configured ones before Fit.
func (a *Amplitude) EffectiveParams() kernel.Params {
	if st := a.state.Load(); st != nil {
		return st.params()
	}
	return a.params
}

// Order returns the p of the row reduction, or 0 when rows are not reduced.
func (a *Amplitude) Order() float64 {
	if st := a.state.Load(); st != nil {
		return float64(st.Order)
	}
	return a.order
}

// Samplings returns the fitted grid of every homology dimension, or nil
// before Fit.
func (a *Amplitude) Samplings() []kernel.Sampling {
	if st := a.state.Load(); st != nil {
		return append([]kernel.Sampling(nil), st.Samplings...)
	}
	return nil
}

func (a *Amplitude) modelKind() persistence.Kind { return persistence.KindAmplitude }

func (a *Amplitude) base() *estimator { return &a.estimator }

func (a *Amplitude) marshalState(c codec.Codec, comp persistence.Compression) ([]byte, error) {
	st := a.state.Load()
	if st == nil {
		return nil, ErrNotFitted
	}
	return persistence.Marshal(persistence.KindAmplitude, c, comp, st)
}

func (a *Amplitude) unmarshalState(data []byte) error {
	var st amplitudeState
	if _, err := persistence.Unmarshal(data, persistence.KindAmplitude, &st); err != nil {
		return err
	}
	if err := checkDims(st.Dims); err != nil {
		return err
	}
	resolved, err := st.Metric.Resolve(st.params())
	if err != nil {
		return translateError("metric_params", err)
	}
	if resolved != st.params() {
		return fmt.Errorf("%w: saved kernel parameters are incomplete", persistence.ErrCorrupt)
	}
	if len(st.Samplings) != len(st.Dims) {
		return fmt.Errorf("%w: %d samplings for %d dimensions", persistence.ErrCorrupt, len(st.Samplings), len(st.Dims))
	}
	if st.Order != 0 && !validOrder(float64(st.Order)) {
		return fmt.Errorf("%w: invalid order %v", persistence.ErrCorrupt, st.Order)
	}
	a.state.Store(&st)
	return nil
}
