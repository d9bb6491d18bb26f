package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/hupe1980/bvhgo/blobstore"
	"github.com/minio/minio-go/v7"
)

// Store serves snapshot blobs from a MinIO (or any S3-compatible)
// bucket. Snapshots are immutable objects: reads use ranged GETs so a
// header or single section can be fetched without pulling the whole
// file, and writes stream through PutObject.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore returns a store rooted at rootPrefix inside bucket, so one
// bucket can hold snapshots for several scenes (e.g. "scenes/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: rootPrefix}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

func isMissing(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// Open stats the object once for its size and returns a Blob serving
// ranged reads against it.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isMissing(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}

	return &objectBlob{client: s.client, bucket: s.bucket, key: key, size: info.Size}, nil
}

// Create returns a WritableBlob streaming into a background upload.
// The object appears only once Close succeeds.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	pr, pw := io.Pipe()
	w := &objectWriter{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, s.key(name), pr, -1, minio.PutObjectOptions{})
		pr.CloseWithError(err)
		w.done <- err
	}()

	return w, nil
}

// Put uploads a whole snapshot in one request.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}

// Delete removes the object. A missing object is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isMissing(err) {
		return err
	}

	return nil
}

// List returns blob names under prefix, sorted, with the store's root
// prefix stripped back off.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.key(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}

		name := strings.TrimPrefix(strings.TrimPrefix(obj.Key, s.prefix), "/")
		if name != "" {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names, nil
}

type objectBlob struct {
	client *minio.Client
	bucket string
	key    string
	size   int64
}

func (b *objectBlob) Size() int64 {
	return b.size
}

func (b *objectBlob) clampEnd(off, length int64) int64 {
	end := off + length - 1
	if end >= b.size {
		end = b.size - 1
	}

	return end
}

func (b *objectBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	end := b.clampEnd(off, int64(len(p)))

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, end); err != nil {
		return 0, err
	}

	obj, err := b.client.GetObject(ctx, b.bucket, b.key, opts)
	if err != nil {
		return 0, err
	}
	defer obj.Close()

	return io.ReadFull(obj, p[:end-off+1])
}

func (b *objectBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, b.clampEnd(off, length)); err != nil {
		return nil, err
	}

	return b.client.GetObject(ctx, b.bucket, b.key, opts)
}

func (b *objectBlob) Close() error {
	return nil
}

// objectWriter feeds the background PutObject through a pipe and
// reports the upload's outcome on Close.
type objectWriter struct {
	pw       *io.PipeWriter
	done     chan error
	finished atomic.Bool
}

func (w *objectWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *objectWriter) Sync() error {
	return nil
}

func (w *objectWriter) Close() error {
	if !w.finished.CompareAndSwap(false, true) {
		return errors.New("already closed")
	}

	if err := w.pw.Close(); err != nil {
		return err
	}

	return <-w.done
}
