package quantization

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/topovec/internal/kmeans"
)

// ErrInvalidParams is returned for malformed quantizer parameters.
var ErrInvalidParams = errors.New("quantization: invalid parameters")

// ErrTooFewPoints is returned when a point cloud has fewer points than clusters.
var ErrTooFewPoints = kmeans.ErrTooFewVectors

// Kind selects the clustering algorithm.
type Kind int

const (
	KMeans Kind = iota
	MiniBatchKMeans
)

func (k Kind) String() string {
	switch k {
	case KMeans:
		return "KMeans"
	case MiniBatchKMeans:
		return "MiniBatchKMeans"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// ParseKind maps a quantizer name to its Kind. Matching is case-insensitive.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "kmeans":
		return KMeans, nil
	case "minibatchkmeans":
		return MiniBatchKMeans, nil
	default:
		return 0, fmt.Errorf("%w: unknown quantiser %q", ErrInvalidParams, name)
	}
}

// DefaultNClusters is the cluster count used when Params.NClusters is zero.
const DefaultNClusters = 10

// Params configures a quantizer. Zero values select defaults.
type Params struct {
	NClusters int     `json:"n_clusters,omitempty" yaml:"n_clusters"`
	MaxIter   int     `json:"max_iter,omitempty" yaml:"max_iter"`
	NInit     int     `json:"n_init,omitempty" yaml:"n_init"`         // KMeans only
	Tol       float64 `json:"tol,omitempty" yaml:"tol"`               // KMeans only
	BatchSize int     `json:"batch_size,omitempty" yaml:"batch_size"` // MiniBatchKMeans only
	Seed      int64   `json:"seed,omitempty" yaml:"seed"`
}

// Clusters returns the effective number of clusters.
func (p Params) Clusters() int {
	if p.NClusters == 0 {
		return DefaultNClusters
	}
	return p.NClusters
}

// Validate checks p against the options accepted by kind.
func (p Params) Validate(kind Kind) error {
	switch {
	case p.NClusters < 0:
		return fmt.Errorf("%w: n_clusters must be >= 1, got %d", ErrInvalidParams, p.NClusters)
	case p.MaxIter < 0:
		return fmt.Errorf("%w: max_iter must be >= 1, got %d", ErrInvalidParams, p.MaxIter)
	case p.NInit < 0:
		return fmt.Errorf("%w: n_init must be >= 1, got %d", ErrInvalidParams, p.NInit)
	case p.Tol < 0:
		return fmt.Errorf("%w: tol must be >= 0, got %g", ErrInvalidParams, p.Tol)
	case p.BatchSize < 0:
		return fmt.Errorf("%w: batch_size must be >= 1, got %d", ErrInvalidParams, p.BatchSize)
	}
	switch kind {
	case KMeans:
		if p.BatchSize != 0 {
			return fmt.Errorf("%w: batch_size is not accepted by %s", ErrInvalidParams, kind)
		}
	case MiniBatchKMeans:
		if p.NInit != 0 || p.Tol != 0 {
			return fmt.Errorf("%w: n_init and tol are not accepted by %s", ErrInvalidParams, kind)
		}
	default:
		return fmt.Errorf("%w: unknown quantiser %s", ErrInvalidParams, kind)
	}
	return nil
}

// Quantizer learns cluster centers from a weighted point cloud.
type Quantizer interface {
	// Fit clusters points; weights may be nil for uniform weighting.
	Fit(ctx context.Context, points [][]float64, weights []float64) error
	// Centers returns the learned centers. Valid after Fit.
	Centers() [][]float64
	// Predict returns the index of the center closest to point.
	Predict(point []float64) int
	// NClusters returns the configured number of clusters.
	NClusters() int
}

// New returns a quantizer of the given kind.
func New(kind Kind, p Params) (Quantizer, error) {
	if err := p.Validate(kind); err != nil {
		return nil, err
	}
	return &clusterer{kind: kind, params: p}, nil
}

type clusterer struct {
	kind    Kind
	params  Params
	dim     int
	centers []float64
}

func (c *clusterer) NClusters() int { return c.params.Clusters() }

func (c *clusterer) Fit(ctx context.Context, points [][]float64, weights []float64) error {
	if len(points) == 0 {
		return fmt.Errorf("%w: no points to cluster", ErrTooFewPoints)
	}
	dim := len(points[0])
	flat := make([]float64, 0, len(points)*dim)
	for _, p := range points {
		flat = append(flat, p...)
	}

	cfg := kmeans.Config{
		K:         c.params.Clusters(),
		MaxIter:   c.params.MaxIter,
		NInit:     c.params.NInit,
		Tol:       c.params.Tol,
		BatchSize: c.params.BatchSize,
		Seed:      c.params.Seed,
	}

	var (
		res kmeans.Result
		err error
	)
	switch c.kind {
	case MiniBatchKMeans:
		res, err = kmeans.TrainMiniBatch(ctx, flat, dim, weights, cfg)
	default:
		res, err = kmeans.Train(ctx, flat, dim, weights, cfg)
	}
	if err != nil {
		return err
	}
	c.dim = dim
	c.centers = res.Centroids
	return nil
}

func (c *clusterer) Centers() [][]float64 {
	if c.dim == 0 {
		return nil
	}
	k := len(c.centers) / c.dim
	out := make([][]float64, k)
	for i := range out {
		out[i] = append([]float64(nil), c.centers[i*c.dim:(i+1)*c.dim]...)
	}
	return out
}

func (c *clusterer) Predict(point []float64) int {
	return kmeans.Assign(point, c.centers, c.dim)
}
