package topovec

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/topovec/blobstore"
	"github.com/hupe1980/topovec/codec"
	"github.com/hupe1980/topovec/persistence"
)

// Model is a Transformer whose fitted state can be saved and restored.
// PersistenceEntropy, Amplitude, and ATOL implement it.
type Model interface {
	Transformer

	modelKind() persistence.Kind
	base() *estimator
	marshalState(c codec.Codec, comp persistence.Compression) ([]byte, error)
	unmarshalState(data []byte) error
}

// SaveOption configures SaveModel and MarshalModel.
type SaveOption func(*saveOptions)

type saveOptions struct {
	codec       codec.Codec
	compression persistence.Compression
	noOverwrite bool
}

func defaultSaveOptions() saveOptions {
	return saveOptions{
		codec:       codec.Default,
		compression: persistence.CompressionZstd,
	}
}

// WithCodec selects the codec for the fitted state (default codec.Default).
func WithCodec(c codec.Codec) SaveOption {
	return func(o *saveOptions) {
		o.codec = c
	}
}

// WithCompression selects the frame compression (default zstd).
func WithCompression(c persistence.Compression) SaveOption {
	return func(o *saveOptions) {
		o.compression = c
	}
}

// WithoutOverwrite makes SaveModel fail with blobstore.ErrExists when name is
// already present. Stores implementing blobstore.ConditionalStore enforce
// this atomically; for others the check races with concurrent writers.
func WithoutOverwrite() SaveOption {
	return func(o *saveOptions) {
		o.noOverwrite = true
	}
}

// MarshalModel encodes the fitted state of m as a self-describing frame.
func MarshalModel(m Model, opts ...SaveOption) ([]byte, error) {
	o := defaultSaveOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return m.marshalState(o.codec, o.compression)
}

// UnmarshalModel replaces the fitted state of m with the one in data.
// The frame must hold the same estimator kind as m. The saved configuration
// takes precedence over the options m was constructed with.
func UnmarshalModel(data []byte, m Model) error {
	return m.unmarshalState(data)
}

// DecodeModel constructs the estimator recorded in data and restores its
// fitted state. opts apply to the new estimator and should be limited to
// common options such as WithNJobs, WithLogger, and WithMetricsCollector.
func DecodeModel(data []byte, opts ...Option) (Model, error) {
	h, err := persistence.ReadHeader(data)
	if err != nil {
		return nil, err
	}
	var m Model
	switch h.Kind {
	case persistence.KindEntropy:
		m, err = NewPersistenceEntropy(opts...)
	case persistence.KindAmplitude:
		m, err = NewAmplitude(opts...)
	case persistence.KindATOL:
		m, err = NewATOL(opts...)
	default:
		return nil, fmt.Errorf("%w: unknown model kind %d", persistence.ErrCorrupt, h.Kind)
	}
	if err != nil {
		return nil, err
	}
	if err := m.unmarshalState(data); err != nil {
		return nil, err
	}
	return m, nil
}

// SaveModel writes the fitted state of m to store under name.
func SaveModel(ctx context.Context, store blobstore.Store, name string, m Model, opts ...SaveOption) (err error) {
	o := defaultSaveOptions()
	for _, fn := range opts {
		fn(&o)
	}
	var data []byte
	defer func() {
		m.base().logger.LogSave(ctx, name, len(data), err)
	}()

	data, err = m.marshalState(o.codec, o.compression)
	if err != nil {
		return err
	}
	if !o.noOverwrite {
		return store.Put(ctx, name, data)
	}
	if cs, ok := store.(blobstore.ConditionalStore); ok {
		return cs.PutIfNotExists(ctx, name, data)
	}
	b, openErr := store.Open(ctx, name)
	switch {
	case openErr == nil:
		_ = b.Close()
		return fmt.Errorf("%w: %s", blobstore.ErrExists, name)
	case !errors.Is(openErr, blobstore.ErrNotFound):
		return openErr
	}
	return store.Put(ctx, name, data)
}

// LoadModel reads name from store into m, replacing its fitted state.
func LoadModel(ctx context.Context, store blobstore.Store, name string, m Model) (err error) {
	defer func() {
		m.base().logger.LogLoad(ctx, name, err)
	}()

	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return err
	}
	return m.unmarshalState(data)
}

// OpenModel reads name from store and returns the estimator it holds,
// whatever its kind. See DecodeModel for the meaning of opts.
func OpenModel(ctx context.Context, store blobstore.Store, name string, opts ...Option) (Model, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}
	m, err := DecodeModel(data, opts...)
	if m != nil {
		m.base().logger.LogLoad(ctx, name, err)
	}
	return m, err
}

// checkDims rejects saved dimension lists that are empty, negative, or not
// strictly ascending.
func checkDims(dims []int) error {
	if len(dims) == 0 {
		return fmt.Errorf("%w: no homology dimensions", persistence.ErrCorrupt)
	}
	if dims[0] < 0 {
		return fmt.Errorf("%w: negative homology dimension %d", persistence.ErrCorrupt, dims[0])
	}
	if !slices.IsSorted(dims) || len(slices.Compact(slices.Clone(dims))) != len(dims) {
		return fmt.Errorf("%w: homology dimensions %v are not strictly ascending", persistence.ErrCorrupt, dims)
	}
	return nil
}
