package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCache(t *testing.T) {
	c := NewLRUCache(10)

	c.Set("a", []byte("aaaa"))
	c.Set("b", []byte("bbbb"))
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("aaaa"), v)

	// "b" is least recently used and gets evicted.
	c.Set("c", []byte("cccc"))
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, int64(8), c.Size())
	assert.Equal(t, 2, c.Len())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRUCache_EdgeCases(t *testing.T) {
	c := NewLRUCache(4)

	c.Set("big", []byte("too large"))
	_, ok := c.Get("big")
	assert.False(t, ok)
	assert.Zero(t, c.Size())

	c.Set("k", []byte("ab"))
	c.Set("k", []byte("abc"))
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), v)
	assert.Equal(t, int64(3), c.Size())

	c.Remove("k")
	c.Remove("missing")
	assert.Zero(t, c.Len())
}

func TestLRUCache_RemovePrefix(t *testing.T) {
	c := NewLRUCache(100)
	c.Set("models/a", []byte("1"))
	c.Set("models/b", []byte("2"))
	c.Set("other", []byte("3"))

	c.RemovePrefix("models/")
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("other")
	assert.True(t, ok)
}

func TestLRUCache_Concurrent(t *testing.T) {
	c := NewLRUCache(64)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			for j := 0; j < 100; j++ {
				c.Set(key, []byte{byte(j)})
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Size(), int64(64))
}
