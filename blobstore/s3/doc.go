// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", func(o *s3.Options) {
//	    o.Prefix = "scenes/"
//	    o.Region = "us-east-1"
//	})
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Multipart uploads for large snapshots
//   - CRC32C integrity validation on writes
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
