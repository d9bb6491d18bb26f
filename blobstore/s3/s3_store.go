package s3

import (
	"context"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/bvhgo/blobstore"
)

// Store implements blobstore.BlobStore for S3.
type Store struct {
	client    Client
	bucket    string
	prefix    string
	uploadCfg UploadConfig
}

// Options configure New.
type Options struct {
	// Prefix is prepended to all keys (e.g. "scenes/").
	Prefix string

	// Region overrides the region from the default AWS config chain.
	Region string

	// Upload configures multipart upload behavior.
	Upload UploadConfig
}

// New creates an S3 blob store using the default AWS config chain.
func New(ctx context.Context, bucket string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{
		Upload: DefaultUploadConfig(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	return &Store{
		client:    s3.NewFromConfig(cfg),
		bucket:    bucket,
		prefix:    opts.Prefix,
		uploadCfg: opts.Upload,
	}, nil
}

// NewStore creates an S3 blob store from an existing client.
// rootPrefix is prepended to all keys (e.g. "scenes/").
func NewStore(client Client, bucket, rootPrefix string) *Store {
	return &Store{
		client:    client,
		bucket:    bucket,
		prefix:    rootPrefix,
		uploadCfg: DefaultUploadConfig(),
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open opens a blob for reading.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	return openBlob(ctx, s.client, s.bucket, s.key(name))
}

// Create creates a new blob for streaming writes. The upload runs in the
// background and is finalized when the returned blob is closed.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	uploader := newUploader(s.client, s.uploadCfg)
	return newStreamingWritableBlob(ctx, s.client, uploader, s.bucket, s.key(name), s.uploadCfg.EnableChecksum), nil
}

// Put writes a blob atomically with CRC32C integrity validation.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return putWithChecksum(ctx, s.client, s.bucket, s.key(name), data)
}

// Delete removes a blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// List returns the names of all blobs with the given prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return listObjects(ctx, s.client, s.bucket, s.key(prefix), s.prefix)
}
