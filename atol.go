package topovec

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/topovec/codec"
	"github.com/hupe1980/topovec/diagram"
	"github.com/hupe1980/topovec/internal/parallel"
	"github.com/hupe1980/topovec/persistence"
	"github.com/hupe1980/topovec/quantization"
)

// ATOL vectorizes diagrams by quantizing the measure of their off-diagonal
// points.
//
// Fit clusters the pooled off-diagonal points of every homology dimension and
// records one inertia per center. Transform evaluates a contrast function
// between each point and each center and sums the weighted proximities, giving
// one feature per center. Features of all dimensions are concatenated in
// ascending dimension order.
type ATOL struct {
	estimator

	kind         quantization.Kind
	params       quantization.Params
	perDimension []quantization.Params
	weight       quantization.Weight
	contrast     quantization.Contrast

	state atomic.Pointer[atolState]
}

type atolState struct {
	Dims     []int                 `json:"dims"`
	Contrast quantization.Contrast `json:"contrast_function"`
	Weight   quantization.Weight   `json:"weight_function"`
	Centers  [][][]float64         `json:"centers"`
	Inertias [][]codec.Float       `json:"inertias"`

	inertias [][]float64
}

func newATOLState(dims []int, contrast quantization.Contrast, weight quantization.Weight, centers [][][]float64, inertias [][]float64) *atolState {
	st := &atolState{
		Dims:     dims,
		Contrast: contrast,
		Weight:   weight,
		Centers:  centers,
		Inertias: make([][]codec.Float, len(inertias)),
		inertias: inertias,
	}
	for k, in := range inertias {
		st.Inertias[k] = codec.Floats(in)
	}
	return st
}

// features returns the total number of centers.
func (st *atolState) features() int {
	n := 0
	for _, c := range st.Centers {
		n += len(c)
	}
	return n
}

// vectorize returns the per-center weighted proximity sums of pairs against
// the centers of dimension index k.
func (st *atolState) vectorize(k int, pairs []diagram.Pair) []float64 {
	centers := st.Centers[k]
	vec := make([]float64, len(centers))
	points := toPoints(diagram.OffDiagonal(pairs))
	if len(points) == 0 {
		return vec
	}
	proximity := st.Contrast.Matrix(points, centers, st.inertias[k])
	weights := mat.NewVecDense(len(points), st.Weight.Weights(points))
	mat.NewVecDense(len(vec), vec).MulVec(proximity.T(), weights)
	return vec
}

var _ Model = (*ATOL)(nil)

// NewATOL returns an unfitted quantized vectorizer. Defaults are KMeans with
// quantization.DefaultNClusters clusters, uniform weights and the Gaussian
// contrast.
//
// Accepted options: WithQuantizer, WithQuantizerParams,
// WithQuantizerParamsPerDimension, WithWeightFunction, WithContrastFunction
// and the common options.
func NewATOL(opts ...Option) (*ATOL, error) {
	o, err := applyOptions("ATOL",
		optQuantizer|optQuantizerParams|optQuantizerParamsPerDim|optWeight|optContrast, opts)
	if err != nil {
		return nil, err
	}
	if o.quantizer != quantization.KMeans && o.quantizer != quantization.MiniBatchKMeans {
		return nil, configError("quantiser", o.quantizer, "unknown quantiser")
	}
	if !o.weight.Valid() {
		return nil, configError("weight_function", o.weight, "unknown weight function")
	}
	if !o.contrast.Valid() {
		return nil, configError("contrast_function", o.contrast, "unknown contrast function")
	}
	if err := o.quantizerParams.Validate(o.quantizer); err != nil {
		return nil, translateError("quantiser_params", err)
	}
	if o.set&optQuantizerParamsPerDim != 0 && len(o.perDimension) == 0 {
		return nil, configError("quantiser_params_per_dimension", nil, "must not be empty")
	}
	for i, p := range o.perDimension {
		if err := p.Validate(o.quantizer); err != nil {
			return nil, translateError("quantiser_params_per_dimension["+strconv.Itoa(i)+"]", err)
		}
	}
	return &ATOL{
		estimator:    newEstimator("ATOL", o),
		kind:         o.quantizer,
		params:       o.quantizerParams,
		perDimension: o.perDimension,
		weight:       o.weight,
		contrast:     o.contrast,
	}, nil
}

// paramsFor returns one parameter set per fitted dimension.
func (t *ATOL) paramsFor(dims []int) ([]quantization.Params, error) {
	if t.perDimension == nil {
		out := make([]quantization.Params, len(dims))
		for i := range out {
			out[i] = t.params
		}
		return out, nil
	}
	if len(t.perDimension) != len(dims) {
		return nil, configError("quantiser_params_per_dimension", len(t.perDimension),
			fmt.Sprintf("expected one entry per homology dimension (%d)", len(dims)))
	}
	return t.perDimension, nil
}

// Fit learns the centers and inertias of every homology dimension of X.
// Dimensions are clustered concurrently.
func (t *ATOL) Fit(ctx context.Context, X diagram.Batch) (err error) {
	start := time.Now()
	var dims []int
	defer func() { t.observeFit(ctx, len(X), dims, start, err) }()

	dims, err = fitDimensions(X)
	if err != nil {
		return err
	}
	params, err := t.paramsFor(dims)
	if err != nil {
		return err
	}
	idx, err := indexBatch(ctx, X, t.jobs)
	if err != nil {
		return err
	}

	centers := make([][][]float64, len(dims))
	inertias := make([][]float64, len(dims))
	err = parallel.Each(ctx, len(dims), t.jobs, func(ctx context.Context, k int) error {
		points := pooledPoints(idx, dims[k])
		q, err := quantization.New(t.kind, params[k])
		if err != nil {
			return translateError("quantiser_params", err)
		}
		if len(points) < q.NClusters() {
			err = fmt.Errorf("%w: H%d has %d points for %d clusters",
				ErrInsufficientPoints, dims[k], len(points), q.NClusters())
			t.logger.LogQuantize(ctx, dims[k], len(points), q.NClusters(), err)
			return err
		}
		if err := q.Fit(ctx, points, t.weight.Weights(points)); err != nil {
			t.logger.LogQuantize(ctx, dims[k], len(points), q.NClusters(), err)
			return translateError("quantiser_params", err)
		}
		centers[k] = q.Centers()
		inertias[k] = quantization.Inertias(centers[k], points)
		t.logger.LogQuantize(ctx, dims[k], len(points), q.NClusters(), nil)
		return nil
	})
	if err != nil {
		return err
	}

	t.state.Store(newATOLState(dims, t.contrast, t.weight, centers, inertias))
	return nil
}

// Transform returns the (len(X), total cluster count) feature matrix.
// Diagrams may have any number of points per dimension.
func (t *ATOL) Transform(ctx context.Context, X diagram.Batch) (out *mat.Dense, err error) {
	st := t.state.Load()
	if st == nil {
		return nil, ErrNotFitted
	}
	start := time.Now()
	defer func() { t.observeTransform(ctx, len(X), out, start, err) }()

	if err = diagram.Validate(X); err != nil {
		return nil, err
	}
	idx, err := indexBatch(ctx, X, t.jobs)
	if err != nil {
		return nil, err
	}
	vecs, err := parallel.Grid(ctx, len(X), len(st.Dims), t.jobs, func(_ context.Context, task parallel.Task) ([]float64, error) {
		return st.vectorize(task.Col, idx[task.Row].SelectPairs(st.Dims[task.Col])), nil
	})
	if err != nil {
		return nil, err
	}

	out = mat.NewDense(len(X), st.features(), nil)
	for i, parts := range vecs {
		row, off := out.RawRowView(i), 0
		for _, v := range parts {
			off += copy(row[off:], v)
		}
	}
	return out, nil
}

// FitTransform fits X and transforms it.
func (t *ATOL) FitTransform(ctx context.Context, X diagram.Batch) (*mat.Dense, error) {
	if err := t.Fit(ctx, X); err != nil {
		return nil, err
	}
	return t.Transform(ctx, X)
}

// HomologyDimensions returns the fitted dimensions, or nil before Fit.
func (t *ATOL) HomologyDimensions() []int {
	if st := t.state.Load(); st != nil {
		return cloneDims(st.Dims)
	}
	return nil
}

// Centers returns the fitted centers as a diagram whose points carry the
// homology dimension they were learned for, or nil before Fit.
func (t *ATOL) Centers() diagram.Diagram {
	st := t.state.Load()
	if st == nil {
		return nil
	}
	out := make(diagram.Diagram, 0, st.features())
	for k, centers := range st.Centers {
		for _, c := range centers {
			out = append(out, diagram.Point{Birth: c[0], Death: c[1], Dim: st.Dims[k]})
		}
	}
	return out
}

// Inertias returns the inertia of every center, aligned with Centers, or nil
// before Fit.
func (t *ATOL) Inertias() []float64 {
	st := t.state.Load()
	if st == nil {
		return nil
	}
	out := make([]float64, 0, st.features())
	for _, in := range st.inertias {
		out = append(out, in...)
	}
	return out
}

func pooledPoints(idx []*diagram.Index, dim int) [][]float64 {
	var points [][]float64
	for _, ix := range idx {
		points = append(points, toPoints(diagram.OffDiagonal(ix.SelectPairs(dim)))...)
	}
	return points
}

func toPoints(pairs []diagram.Pair) [][]float64 {
	out := make([][]float64, len(pairs))
	for i, p := range pairs {
		out[i] = []float64{p.Birth, p.Death}
	}
	return out
}

func (t *ATOL) modelKind() persistence.Kind { return persistence.KindATOL }

func (t *ATOL) base() *estimator { return &t.estimator }

func (t *ATOL) marshalState(c codec.Codec, comp persistence.Compression) ([]byte, error) {
	st := t.state.Load()
	if st == nil {
		return nil, ErrNotFitted
	}
	return persistence.Marshal(persistence.KindATOL, c, comp, st)
}

func (t *ATOL) unmarshalState(data []byte) error {
	var st atolState
	if _, err := persistence.Unmarshal(data, persistence.KindATOL, &st); err != nil {
		return err
	}
	if err := checkDims(st.Dims); err != nil {
		return err
	}
	if !st.Contrast.Valid() || !st.Weight.Valid() {
		return fmt.Errorf("%w: unknown contrast or weight function", persistence.ErrCorrupt)
	}
	if len(st.Centers) != len(st.Dims) || len(st.Inertias) != len(st.Dims) {
		return fmt.Errorf("%w: centers and inertias must cover %d dimensions", persistence.ErrCorrupt, len(st.Dims))
	}
	st.inertias = make([][]float64, len(st.Dims))
	for k, centers := range st.Centers {
		if len(centers) == 0 || len(st.Inertias[k]) != len(centers) {
			return fmt.Errorf("%w: H%d has %d centers and %d inertias",
				persistence.ErrCorrupt, st.Dims[k], len(centers), len(st.Inertias[k]))
		}
		for _, c := range centers {
			if len(c) != 2 {
				return fmt.Errorf("%w: H%d center has %d coordinates", persistence.ErrCorrupt, st.Dims[k], len(c))
			}
		}
		st.inertias[k] = codec.Float64s(st.Inertias[k])
	}
	t.state.Store(&st)
	return nil
}
