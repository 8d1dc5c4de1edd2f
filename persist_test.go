package topovec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/topovec/blobstore"
	"github.com/hupe1980/topovec/codec"
	"github.com/hupe1980/topovec/diagram"
	"github.com/hupe1980/topovec/kernel"
	"github.com/hupe1980/topovec/persistence"
	"github.com/hupe1980/topovec/quantization"
	"github.com/hupe1980/topovec/testutil"
)

type modelCase struct {
	name  string
	kind  persistence.Kind
	newFn func(t *testing.T) Model
	batch diagram.Batch
}

func modelCases() []modelCase {
	rng := testutil.NewRNG(21)
	fixed := rng.Batch(6, []int{0, 1}, []int{5, 3}, 4, 0.2)
	return []modelCase{
		{
			name: "PersistenceEntropy",
			kind: persistence.KindEntropy,
			newFn: func(t *testing.T) Model {
				m, err := NewPersistenceEntropy(WithNaNFillValue(7))
				require.NoError(t, err)
				return m
			},
			batch: fixed,
		},
		{
			name: "Amplitude",
			kind: persistence.KindAmplitude,
			newFn: func(t *testing.T) Model {
				m, err := NewAmplitude(WithMetric(kernel.Heat), WithOrder(2))
				require.NoError(t, err)
				return m
			},
			batch: fixed,
		},
		{
			name: "ATOL",
			kind: persistence.KindATOL,
			newFn: func(t *testing.T) Model {
				m, err := NewATOL(WithQuantizerParams(quantization.Params{NClusters: 2, Seed: 4}))
				require.NoError(t, err)
				return m
			},
			batch: rng.RaggedBatch(6, []int{0, 1}, 5, 4),
		},
	}
}

func TestSaveLoadModel(t *testing.T) {
	ctx := context.Background()

	stores := map[string]func(t *testing.T) blobstore.Store{
		"Memory": func(*testing.T) blobstore.Store { return blobstore.NewMemoryStore() },
		"Local": func(t *testing.T) blobstore.Store {
			return blobstore.NewLocalStore(t.TempDir())
		},
		"Caching": func(*testing.T) blobstore.Store {
			return blobstore.NewCachingStore(blobstore.NewMemoryStore(), 1<<20)
		},
	}

	for storeName, newStore := range stores {
		for _, tc := range modelCases() {
			t.Run(storeName+"/"+tc.name, func(t *testing.T) {
				store := newStore(t)
				m := tc.newFn(t)
				want, err := m.FitTransform(ctx, tc.batch)
				require.NoError(t, err)

				require.NoError(t, SaveModel(ctx, store, "models/"+tc.name, m))

				restored := tc.newFn(t)
				require.NoError(t, LoadModel(ctx, store, "models/"+tc.name, restored))
				got, err := restored.Transform(ctx, tc.batch)
				require.NoError(t, err)
				assert.True(t, testutil.MatrixEqualApprox(want, got, 1e-12))
				assert.Equal(t, m.HomologyDimensions(), restored.HomologyDimensions())

				opened, err := OpenModel(ctx, store, "models/"+tc.name)
				require.NoError(t, err)
				assert.Equal(t, tc.kind, opened.modelKind())
				got, err = opened.Transform(ctx, tc.batch)
				require.NoError(t, err)
				assert.True(t, testutil.MatrixEqualApprox(want, got, 1e-12))
			})
		}
	}
}

func TestMarshalModel_CodecsAndCompression(t *testing.T) {
	ctx := context.Background()
	a, err := NewAmplitude(WithMetric(kernel.Wasserstein))
	require.NoError(t, err)
	want, err := a.FitTransform(ctx, exampleBatch())
	require.NoError(t, err)

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		for _, comp := range []persistence.Compression{persistence.CompressionNone, persistence.CompressionLZ4, persistence.CompressionZstd} {
			t.Run(c.Name()+"/"+comp.String(), func(t *testing.T) {
				data, err := MarshalModel(a, WithCodec(c), WithCompression(comp))
				require.NoError(t, err)

				m, err := DecodeModel(data, WithNJobs(2))
				require.NoError(t, err)
				restored, ok := m.(*Amplitude)
				require.True(t, ok)
				assert.Equal(t, kernel.Wasserstein, restored.Metric())

				got, err := restored.Transform(ctx, exampleBatch())
				require.NoError(t, err)
				assert.True(t, testutil.MatrixEqualApprox(want, got, 0))
			})
		}
	}
}

func TestModelPersistenceErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("NotFitted", func(t *testing.T) {
		pe, err := NewPersistenceEntropy()
		require.NoError(t, err)
		err = SaveModel(ctx, blobstore.NewMemoryStore(), "m", pe)
		assert.ErrorIs(t, err, ErrNotFitted)
	})

	t.Run("KindMismatch", func(t *testing.T) {
		pe, err := NewPersistenceEntropy()
		require.NoError(t, err)
		require.NoError(t, pe.Fit(ctx, exampleBatch()))
		data, err := MarshalModel(pe)
		require.NoError(t, err)

		a, err := NewAmplitude()
		require.NoError(t, err)
		assert.ErrorIs(t, UnmarshalModel(data, a), persistence.ErrKindMismatch)
		assert.Nil(t, a.HomologyDimensions())
	})

	t.Run("Truncated", func(t *testing.T) {
		pe, err := NewPersistenceEntropy()
		require.NoError(t, err)
		require.NoError(t, pe.Fit(ctx, exampleBatch()))
		data, err := MarshalModel(pe)
		require.NoError(t, err)

		_, err = DecodeModel(data[:len(data)-3])
		assert.Error(t, err)
		_, err = DecodeModel([]byte{1, 2})
		assert.ErrorIs(t, err, persistence.ErrCorrupt)
	})

	t.Run("UnsortedDims", func(t *testing.T) {
		data, err := persistence.Marshal(persistence.KindEntropy, codec.JSON{}, persistence.CompressionNone,
			map[string]any{"dims": []int{1, 0}})
		require.NoError(t, err)
		_, err = DecodeModel(data)
		assert.ErrorIs(t, err, persistence.ErrCorrupt)
	})

	t.Run("NotFound", func(t *testing.T) {
		pe, err := NewPersistenceEntropy()
		require.NoError(t, err)
		assert.ErrorIs(t, LoadModel(ctx, blobstore.NewMemoryStore(), "missing", pe), blobstore.ErrNotFound)
		_, err = OpenModel(ctx, blobstore.NewMemoryStore(), "missing")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("WithoutOverwrite", func(t *testing.T) {
		pe, err := NewPersistenceEntropy()
		require.NoError(t, err)
		require.NoError(t, pe.Fit(ctx, exampleBatch()))

		local := blobstore.NewLocalStore(t.TempDir())
		for _, store := range []blobstore.Store{blobstore.NewMemoryStore(), local} {
			require.NoError(t, SaveModel(ctx, store, "m", pe, WithoutOverwrite()))
			err := SaveModel(ctx, store, "m", pe, WithoutOverwrite())
			assert.ErrorIs(t, err, blobstore.ErrExists)
			require.NoError(t, SaveModel(ctx, store, "m", pe))
		}
	})
}

func TestCheckDims(t *testing.T) {
	assert.NoError(t, checkDims([]int{0, 1, 2}))
	assert.NoError(t, checkDims([]int{3}))
	assert.ErrorIs(t, checkDims(nil), persistence.ErrCorrupt)
	assert.ErrorIs(t, checkDims([]int{-1, 0}), persistence.ErrCorrupt)
	assert.ErrorIs(t, checkDims([]int{0, 0}), persistence.ErrCorrupt)
	assert.ErrorIs(t, checkDims([]int{2, 1}), persistence.ErrCorrupt)
}
