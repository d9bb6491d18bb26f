// Package blobstore provides storage abstraction for immutable snapshots.
//
// BlobStore is the interface for reading and writing data blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with mmap support
//   - MemoryStore: In-memory store for testing
//   - s3.Store: Amazon S3 with range reads and parallel uploads
//   - minio.Store: MinIO and other S3-compatible object stores
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends.
// For cloud backends, implement ReadRange for efficient partial reads.
//
// CachingStore wraps any backend with a block-level read cache, which keeps
// repeated snapshot loads off the network for remote stores.
package blobstore
