// Package blobstore provides storage abstraction for saved topovec models.
//
// Store is the interface for reading and writing immutable model frames.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, intended for tests
//   - LocalStore: local filesystem with atomic temp-file-and-rename writes
//   - CachingStore: LRU read cache in front of any Store
//   - minio.Store: MinIO and other S3-compatible servers
//   - s3.Store: Amazon S3 with checksummed uploads
//   - s3.DDBCommitStore: versioned models on S3 with a DynamoDB commit pointer
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error         // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
