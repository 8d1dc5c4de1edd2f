package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte("frame")
	require.NoError(t, store.Put(ctx, "b", data))
	require.NoError(t, store.Put(ctx, "a", []byte("other")))

	// Mutating the caller's slice does not affect the stored blob.
	data[0] = 'X'

	got, err := ReadAll(ctx, store, "b")
	require.NoError(t, err)
	assert.Equal(t, "frame", string(got))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	blob, err := store.Open(ctx, "b")
	require.NoError(t, err)
	buf := make([]byte, 10)
	n, err := blob.ReadAt(ctx, buf, 3)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "me", string(buf[:n]))
	require.NoError(t, blob.Close())

	require.NoError(t, store.Delete(ctx, "b"))
	_, err = store.Open(ctx, "b")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReadAll_Empty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "empty", nil))

	got, err := ReadAll(ctx, store, "empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStore_PutIfNotExists(t *testing.T) {
	ctx := context.Background()
	var store ConditionalStore = NewMemoryStore()

	require.NoError(t, store.PutIfNotExists(ctx, "m", []byte("a")))
	require.ErrorIs(t, store.PutIfNotExists(ctx, "m", []byte("b")), ErrExists)
}
