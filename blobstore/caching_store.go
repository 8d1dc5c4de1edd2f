package blobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/topovec/internal/cache"
	"golang.org/x/sync/errgroup"
)

// prefetchConcurrency bounds parallel backend reads during Prefetch.
const prefetchConcurrency = 16

// CachingStore wraps a Store and caches whole blobs in a byte-bounded LRU.
// Model frames are small and read in full, so caching at blob granularity
// avoids repeated round trips to remote backends.
type CachingStore struct {
	inner Store
	cache *cache.LRUCache
}

// NewCachingStore creates a new CachingStore holding at most capacity bytes.
func NewCachingStore(inner Store, capacity int64) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: cache.NewLRUCache(capacity),
	}
}

// Open serves name from the cache, loading it from the inner store on a miss.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	data, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	return &bytesBlob{data: data}, nil
}

func (s *CachingStore) load(ctx context.Context, name string) ([]byte, error) {
	if data, ok := s.cache.Get(name); ok {
		return data, nil
	}
	data, err := ReadAll(ctx, s.inner, name)
	if err != nil {
		return nil, err
	}
	s.cache.Set(name, data)
	return data, nil
}

// Put writes through to the inner store and invalidates the cached copy.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.cache.Remove(name)
	err := s.inner.Put(ctx, name, data)
	s.cache.Remove(name)
	return err
}

// PutIfNotExists delegates to the inner store when it supports conditional
// writes and returns errors.ErrUnsupported otherwise.
func (s *CachingStore) PutIfNotExists(ctx context.Context, name string, data []byte) error {
	cs, ok := s.inner.(ConditionalStore)
	if !ok {
		return fmt.Errorf("blobstore: conditional put on %T: %w", s.inner, errors.ErrUnsupported)
	}
	s.cache.Remove(name)
	return cs.PutIfNotExists(ctx, name, data)
}

// Delete removes name from the inner store and the cache.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Remove(name)
	return s.inner.Delete(ctx, name)
}

// List is not cached.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Prefetch loads the named blobs into the cache in parallel.
func (s *CachingStore) Prefetch(ctx context.Context, names ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	// Limit concurrency to avoid FD exhaustion or rate limits
	g.SetLimit(prefetchConcurrency)

	for _, name := range names {
		g.Go(func() error {
			_, err := s.load(ctx, name)
			return err
		})
	}
	return g.Wait()
}

// Invalidate drops every cached blob whose name starts with prefix.
func (s *CachingStore) Invalidate(prefix string) {
	s.cache.RemovePrefix(prefix)
}

// Stats returns cache hits and misses.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}
