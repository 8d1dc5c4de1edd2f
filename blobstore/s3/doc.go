// Package s3 provides Amazon S3 implementations of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("models/"),
//	    s3.WithRegion("us-east-1"),
//	)
//	err = topovec.SaveModel(ctx, store, "atol.tvm", model)
//
// DDBCommitStore layers versioning on top of any Store: each save becomes
// a new immutable object and a DynamoDB conditional write publishes it.
//
// # Features
//
//   - Ranged reads
//   - CRC32C-checksummed uploads, multipart for large blobs
//   - Conditional create (If-None-Match) via PutIfNotExists
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
