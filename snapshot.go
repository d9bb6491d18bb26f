package bvhgo

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hupe1980/bvhgo/blobstore"
	"github.com/hupe1980/bvhgo/hierarchy"
	"github.com/hupe1980/bvhgo/hierarchy/bvh"
	"github.com/hupe1980/bvhgo/hierarchy/flat"
	"github.com/hupe1980/bvhgo/persistence"
	"github.com/hupe1980/bvhgo/resource"
)

// SaveSnapshotTo writes the flattened hierarchy to w in the snapshot
// container format. The codec and compression configured on the tree
// determine how the sections are encoded.
func (t *Tree[S]) SaveSnapshotTo(ctx context.Context, w io.Writer) error {
	start := time.Now()

	err := t.saveSnapshotTo(ctx, w)

	t.logger.LogSnapshot(ctx, "save", "", err)
	t.metrics.RecordSnapshotSave(time.Since(start), err)

	return err
}

func (t *Tree[S]) saveSnapshotTo(ctx context.Context, w io.Writer) error {
	t.mu.Lock()
	f := t.flattenLocked()
	m := t.manifestLocked()
	t.mu.Unlock()

	if f == nil {
		return fmt.Errorf("save snapshot: empty tree")
	}

	lw := resource.NewRateLimitedWriter(w, t.rc, ctx)

	return persistence.Save(lw, f, m, func(o *persistence.SaveOptions) {
		o.Codec = t.opts.codec
		o.Compression = t.opts.compression
	})
}

func (t *Tree[S]) manifestLocked() persistence.Manifest {
	m := persistence.Manifest{
		LeafSize:    t.buildOpts.LeafSize,
		BucketCount: t.buildOpts.BucketCount,
		MaxDepth:    t.buildOpts.MaxDepth,
	}

	switch {
	case t.tree != nil && t.tree.NodeCount() > 0:
		m.RootBounds = t.tree.Nodes()[t.tree.Root()].AABB
	case t.flattened != nil && t.flattened.NodeCount() > 0:
		m.RootBounds = t.flattened.Nodes()[0].AABB
	}

	return m
}

// SaveSnapshot writes the flattened hierarchy to a file at path. The file
// is created fresh; an existing file is truncated.
func (t *Tree[S]) SaveSnapshot(ctx context.Context, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	bw := bufio.NewWriter(file)

	if err := t.SaveSnapshotTo(ctx, bw); err != nil {
		_ = file.Close()
		return err
	}

	if err := bw.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("save snapshot: %w", err)
	}

	return file.Close()
}

// SaveSnapshotToStore writes the flattened hierarchy to a named blob.
func (t *Tree[S]) SaveSnapshotToStore(ctx context.Context, store blobstore.BlobStore, name string) error {
	blob, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}

	if err := t.SaveSnapshotTo(ctx, blob); err != nil {
		_ = blob.Close()
		return err
	}

	if err := blob.Close(); err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}

	return nil
}

// LoadSnapshotFrom restores a tree from a snapshot stream. The shapes must
// be the same collection, in the same order, the snapshot was built from.
func LoadSnapshotFrom[S hierarchy.Shape](ctx context.Context, r io.Reader, shapes []S, optFns ...Option) (*Tree[S], error) {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	t := newRestoredTree(shapes, opts)

	start := time.Now()

	lr := resource.NewRateLimitedReader(r, t.rc, ctx)

	f, m, err := persistence.Load(lr)
	if err == nil {
		err = bindSnapshot(t, f, m)
	} else {
		err = translateError(err)
	}

	t.logger.LogSnapshot(ctx, "load", "", err)
	t.metrics.RecordSnapshotLoad(time.Since(start), err)

	if err != nil {
		return nil, err
	}

	return t, nil
}

// LoadSnapshot restores a tree from a snapshot file at path.
func LoadSnapshot[S hierarchy.Shape](ctx context.Context, path string, shapes []S, optFns ...Option) (*Tree[S], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer file.Close()

	return LoadSnapshotFrom(ctx, bufio.NewReader(file), shapes, optFns...)
}

// LoadSnapshotFromStore restores a tree from a named blob.
func LoadSnapshotFromStore[S hierarchy.Shape](ctx context.Context, store blobstore.BlobStore, name string, shapes []S, optFns ...Option) (*Tree[S], error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", name, err)
	}
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", name, err)
	}
	defer rc.Close()

	return LoadSnapshotFrom(ctx, rc, shapes, optFns...)
}

// OpenSnapshot memory maps a snapshot file and restores a tree whose node
// and shape sections alias the mapping. The returned closer unmaps the
// file; the tree must not be used after Close. Only uncompressed snapshots
// can be mapped.
func OpenSnapshot[S hierarchy.Shape](ctx context.Context, path string, shapes []S, optFns ...Option) (*Tree[S], io.Closer, error) {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	t := newRestoredTree(shapes, opts)

	start := time.Now()

	f, m, closer, err := persistence.LoadMmap(path)
	if err == nil {
		if err = bindSnapshot(t, f, m); err != nil {
			_ = closer.Close()
		}
	} else {
		err = translateError(err)
	}

	t.logger.LogSnapshot(ctx, "open", path, err)
	t.metrics.RecordSnapshotLoad(time.Since(start), err)

	if err != nil {
		return nil, nil, err
	}

	return t, closer, nil
}

func newRestoredTree[S hierarchy.Shape](shapes []S, opts options) *Tree[S] {
	return &Tree[S]{
		shapes:  shapes,
		opts:    opts,
		logger:  opts.logger,
		metrics: opts.metricsCollector,
		rc:      resource.NewController(opts.resourceConfig),
	}
}

// bindSnapshot attaches a loaded hierarchy to t after checking that every
// shape table entry resolves against the supplied shapes.
func bindSnapshot[S hierarchy.Shape](t *Tree[S], f *flat.FlatBVH, m persistence.Manifest) error {
	required := 0
	for _, id := range f.ShapeTable() {
		if int(id) >= required {
			required = int(id) + 1
		}
	}

	if required > len(t.shapes) {
		return &ErrShapeMismatch{Expected: required, Actual: len(t.shapes)}
	}

	t.mu.Lock()
	t.flattened = f
	t.buildOpts = bvh.Options{
		LeafSize:    m.LeafSize,
		BucketCount: m.BucketCount,
		MaxDepth:    m.MaxDepth,
	}
	t.mu.Unlock()

	return nil
}
