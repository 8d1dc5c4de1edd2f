// Package blobstoretest checks blobstore.Store implementations against the
// behavior model persistence relies on.
package blobstoretest

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/topovec/blobstore"
)

// Run exercises store with names under a fresh prefix. The store should be
// empty below prefix.
func Run(t *testing.T, store blobstore.Store, prefix string) {
	t.Helper()
	ctx := context.Background()
	name := prefix + "models/entropy.tvm"
	data := []byte("frame: persistence entropy state")

	t.Run("PutOpen", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, name, data))

		b, err := store.Open(ctx, name)
		require.NoError(t, err)
		defer b.Close()
		assert.Equal(t, int64(len(data)), b.Size())

		buf := make([]byte, 5)
		n, err := b.ReadAt(ctx, buf, 7)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, data[7:12], buf)

		tail := make([]byte, 10)
		n, err = b.ReadAt(ctx, tail, int64(len(data)-4))
		require.ErrorIs(t, err, io.EOF)
		assert.Equal(t, data[len(data)-4:], tail[:n])
	})

	t.Run("Overwrite", func(t *testing.T) {
		next := []byte("frame: refitted")
		require.NoError(t, store.Put(ctx, name, next))
		got, err := blobstore.ReadAll(ctx, store, name)
		require.NoError(t, err)
		assert.Equal(t, next, got)
	})

	t.Run("List", func(t *testing.T) {
		other := prefix + "models/atol.tvm"
		require.NoError(t, store.Put(ctx, other, []byte("x")))
		names, err := store.List(ctx, prefix+"models/")
		require.NoError(t, err)
		assert.Subset(t, names, []string{name, other})
		require.NoError(t, store.Delete(ctx, other))
	})

	t.Run("Conditional", func(t *testing.T) {
		cs, ok := store.(blobstore.ConditionalStore)
		if !ok {
			t.Skip("store has no conditional create")
		}
		err := cs.PutIfNotExists(ctx, name, data)
		require.True(t, errors.Is(err, blobstore.ErrExists), "got %v", err)

		fresh := prefix + "models/fresh.tvm"
		require.NoError(t, cs.PutIfNotExists(ctx, fresh, data))
		require.NoError(t, store.Delete(ctx, fresh))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, name))
		_, err := store.Open(ctx, name)
		require.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}
