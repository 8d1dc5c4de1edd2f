package topovec

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/topovec/codec"
	"github.com/hupe1980/topovec/diagram"
	"github.com/hupe1980/topovec/persistence"
)

// PersistenceEntropy summarizes each homology dimension of a diagram by the
// base-2 Shannon entropy of its normalized lifetimes.
//
// The output has one column per fitted homology dimension.
type PersistenceEntropy struct {
	estimator

	normalize bool
	fill      bool
	fillValue float64

	state atomic.Pointer[entropyState]
}

type entropyState struct {
	Dims      []int       `json:"dims"`
	Normalize bool        `json:"normalize"`
	Fill      bool        `json:"fill"`
	FillValue codec.Float `json:"fill_value"`
}

var _ Model = (*PersistenceEntropy)(nil)

// NewPersistenceEntropy returns an unfitted entropy summarizer.
//
// Accepted options: WithNormalize, WithNaNFillValue, WithoutNaNFill and the
// common options.
func NewPersistenceEntropy(opts ...Option) (*PersistenceEntropy, error) {
	o, err := applyOptions("PersistenceEntropy", optNormalize|optNaNFill, opts)
	if err != nil {
		return nil, err
	}
	return &PersistenceEntropy{
		estimator: newEstimator("PersistenceEntropy", o),
		normalize: o.normalize,
		fill:      o.fill,
		fillValue: o.fillValue,
	}, nil
}

// Fit records the homology dimensions of X. Every diagram must have the
// per-dimension point counts of X[0].
func (pe *PersistenceEntropy) Fit(ctx context.Context, X diagram.Batch) (err error) {
	start := time.Now()
	var dims []int
	defer func() { pe.observeFit(ctx, len(X), dims, start, err) }()

	dims, err = fitDimensions(X)
	if err != nil {
		return err
	}
	if err = diagram.ValidateFixedCounts(X, dims); err != nil {
		return err
	}
	pe.state.Store(&entropyState{
		Dims:      dims,
		Normalize: pe.normalize,
		Fill:      pe.fill,
		FillValue: codec.Float(pe.fillValue),
	})
	return nil
}

// Transform returns the (len(X), len(HomologyDimensions())) entropy matrix.
// Every diagram must have the per-dimension point counts of X[0].
func (pe *PersistenceEntropy) Transform(ctx context.Context, X diagram.Batch) (out *mat.Dense, err error) {
	st := pe.state.Load()
	if st == nil {
		return nil, ErrNotFitted
	}
	start := time.Now()
	defer func() { pe.observeTransform(ctx, len(X), out, start, err) }()

	if err = diagram.Validate(X); err != nil {
		return nil, err
	}
	if err = diagram.ValidateFixedCounts(X, st.Dims); err != nil {
		return nil, err
	}
	idx, err := indexBatch(ctx, X, pe.jobs)
	if err != nil {
		return nil, err
	}
	return mapSlices(ctx, idx, st.Dims, pe.jobs, func(_ int, pairs []diagram.Pair) float64 {
		h := Entropy(pairs, st.Normalize)
		if st.Fill {
			h = nanToNum(h, float64(st.FillValue))
		}
		return h
	})
}

// FitTransform fits X and transforms it.
func (pe *PersistenceEntropy) FitTransform(ctx context.Context, X diagram.Batch) (*mat.Dense, error) {
	if err := pe.Fit(ctx, X); err != nil {
		return nil, err
	}
	return pe.Transform(ctx, X)
}

// HomologyDimensions returns the fitted dimensions, or nil before Fit.
func (pe *PersistenceEntropy) HomologyDimensions() []int {
	if st := pe.state.Load(); st != nil {
		return cloneDims(st.Dims)
	}
	return nil
}

// Entropy returns the base-2 Shannon entropy of the lifetime distribution of
// pairs, treating 0·log 0 as 0. With normalize set the entropy is divided by
// log2 of the summed lifetimes. The result is NaN when the lifetimes sum to 0,
// including for an empty subdiagram.
func Entropy(pairs []diagram.Pair, normalize bool) float64 {
	p := diagram.Lifetimes(pairs)
	total := floats.Sum(p)
	if total == 0 {
		return math.NaN()
	}
	floats.Scale(1/total, p)
	h := stat.Entropy(p) / math.Ln2
	if normalize {
		h /= math.Log2(total)
	}
	return h
}

// nanToNum replaces NaN by fill and clamps infinities to the largest finite
// magnitude.
func nanToNum(v, fill float64) float64 {
	switch {
	case math.IsNaN(v):
		return fill
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	default:
		return v
	}
}

func (pe *PersistenceEntropy) modelKind() persistence.Kind { return persistence.KindEntropy }

func (pe *PersistenceEntropy) base() *estimator { return &pe.estimator }

func (pe *PersistenceEntropy) marshalState(c codec.Codec, comp persistence.Compression) ([]byte, error) {
	st := pe.state.Load()
	if st == nil {
		return nil, ErrNotFitted
	}
	return persistence.Marshal(persistence.KindEntropy, c, comp, st)
}

func (pe *PersistenceEntropy) unmarshalState(data []byte) error {
	var st entropyState
	if _, err := persistence.Unmarshal(data, persistence.KindEntropy, &st); err != nil {
		return err
	}
	if err := checkDims(st.Dims); err != nil {
		return err
	}
	pe.state.Store(&st)
	return nil
}
