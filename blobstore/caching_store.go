package blobstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/bvhgo/hierarchy/flat"
	"github.com/hupe1980/bvhgo/internal/cache"
	"golang.org/x/sync/errgroup"
)

// DefaultBlockSize holds 1638 node records per block, just under
// 64 KiB, so ranged node reads straddle as few blocks as possible.
const DefaultBlockSize = 1638 * flat.NodeBinarySize

// prefetchConcurrency bounds parallel backend fetches per read.
const prefetchConcurrency = 16

// CachingStore wraps a BlobStore with a block-level read cache. Remote
// snapshot stores pay one ranged GET per missing block; repeated loads
// of the same snapshot are then served from memory.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore wraps inner with block caching. blockSize <= 0
// selects DefaultBlockSize.
func NewCachingStore(inner BlobStore, cache cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	return &CachingStore{inner: inner, cache: cache, blockSize: blockSize}
}

func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	return &CachingBlob{inner: b, cache: s.cache, name: name, blockSize: s.blockSize}, nil
}

// Create passes through. Snapshots are immutable once written, so
// writes are never cached.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return s.inner.Create(ctx, name)
}

func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.dropBlocks(name)
	return s.inner.Put(ctx, name, data)
}

func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.dropBlocks(name)
	return s.inner.Delete(ctx, name)
}

func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) dropBlocks(name string) {
	s.cache.Invalidate(func(key cache.CacheKey) bool {
		return key.Kind == cache.CacheKindBlob && key.Path == name
	})
}

// CachingBlob serves reads block by block out of the cache, fetching
// missing blocks from the backing blob in coalesced runs.
type CachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *CachingBlob) blockKey(idx int64) cache.CacheKey {
	return cache.CacheKey{Kind: cache.CacheKindBlob, Path: b.name, Offset: uint64(idx)}
}

func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	first := off / b.blockSize
	last := (off + int64(len(p)) - 1) / b.blockSize

	if err := b.prefetch(ctx, first, last); err != nil {
		return 0, err
	}

	total := 0
	for idx := first; idx <= last; idx++ {
		block, err := b.block(ctx, idx)
		if err != nil {
			return total, err
		}

		// Intersect the request with this block. The last block of a
		// blob may be short.
		blockOff := idx * b.blockSize
		from := max(blockOff, off) - blockOff
		to := min(blockOff+b.blockSize, off+int64(len(p))) - blockOff
		if to > int64(len(block)) {
			to = int64(len(block))
		}

		if to > from {
			total += copy(p[blockOff+from-off:], block[from:to])
		}
	}

	return total, nil
}

// prefetch loads every missing block in [first, last] into the cache,
// coalescing adjacent misses into single backend reads.
func (b *CachingBlob) prefetch(ctx context.Context, first, last int64) error {
	type run struct{ start, count int64 }

	var missing []run
	for idx := first; idx <= last; idx++ {
		if _, ok := b.cache.Get(ctx, b.blockKey(idx)); ok {
			continue
		}

		if n := len(missing); n > 0 && missing[n-1].start+missing[n-1].count == idx {
			missing[n-1].count++
		} else {
			missing = append(missing, run{start: idx, count: 1})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchConcurrency)

	for _, r := range missing {
		g.Go(func() error {
			start := r.start * b.blockSize

			length := r.count * b.blockSize
			if size := b.Size(); start+length > size {
				length = size - start
			}
			if length <= 0 {
				return nil
			}

			buf := make([]byte, length)
			n, err := b.inner.ReadAt(gctx, buf, start)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}

			for i := int64(0); i < r.count; i++ {
				from := i * b.blockSize
				if from >= int64(n) {
					break
				}

				to := min(from+b.blockSize, int64(n))

				// Copied out so the cache never pins the run buffer.
				block := make([]byte, to-from)
				copy(block, buf[from:to])
				b.cache.Set(gctx, b.blockKey(r.start+i), block)
			}

			return nil
		})
	}

	return g.Wait()
}

// block returns one cached block, fetching it alone on a miss.
func (b *CachingBlob) block(ctx context.Context, idx int64) ([]byte, error) {
	key := b.blockKey(idx)
	if data, ok := b.cache.Get(ctx, key); ok {
		return data, nil
	}

	buf := make([]byte, b.blockSize)

	n, err := b.inner.ReadAt(ctx, buf, idx*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if n > 0 {
		b.cache.Set(ctx, key, buf[:n])
	}

	return buf[:n], nil
}

// ReadRange serves ranged reads through the block cache.
func (b *CachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	return io.NopCloser(&cachedRangeReader{blob: b, ctx: ctx, off: off, end: off + length}), nil
}

type cachedRangeReader struct {
	blob *CachingBlob
	ctx  context.Context
	off  int64
	end  int64
}

func (r *cachedRangeReader) Read(p []byte) (int, error) {
	if r.off >= r.end {
		return 0, io.EOF
	}

	if remaining := r.end - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)

	return n, err
}
