package blobstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps models in a map. It backs tests and short-lived
// pipelines that fit and transform in one process.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ ConditionalStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Open returns a reader over the stored bytes. Stored slices are never
// mutated, so readers share them.
func (m *MemoryStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	data, ok := m.blobs[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return &bytesBlob{data: data}, nil
}

// Put stores a copy of data under name.
func (m *MemoryStore) Put(ctx context.Context, name string, data []byte) error {
	return m.put(ctx, name, data, true)
}

// PutIfNotExists stores data unless name is taken.
func (m *MemoryStore) PutIfNotExists(ctx context.Context, name string, data []byte) error {
	return m.put(ctx, name, data, false)
}

func (m *MemoryStore) put(ctx context.Context, name string, data []byte, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	blob := slices.Clone(data)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[name]; ok && !overwrite {
		return fmt.Errorf("%w: %s", ErrExists, name)
	}
	m.blobs[name] = blob
	return nil
}

// Delete removes name. Deleting a missing name is not an error.
func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.blobs, name)
	m.mu.Unlock()
	return nil
}

// List returns the sorted names starting with prefix.
func (m *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	all := slices.Sorted(maps.Keys(m.blobs))
	m.mu.RUnlock()
	return slices.DeleteFunc(all, func(n string) bool { return !strings.HasPrefix(n, prefix) }), nil
}
