// Package cache provides a byte-bounded LRU cache for immutable blobs.
//
// Saved models are read far more often than they are written, so remote
// stores are fronted by an LRUCache keyed by blob name.
package cache
