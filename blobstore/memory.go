package blobstore

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
)

// MemoryStore keeps snapshot blobs in process memory. It backs tests
// and short-lived trees that never touch disk. Safe for concurrent
// use; every Put and Open copies, so callers never alias store state.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Open returns a reader over a copy of the named blob.
func (m *MemoryStore) Open(_ context.Context, name string) (Blob, error) {
	m.mu.RLock()
	data, ok := m.objects[name]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	return &memBlob{data: bytes.Clone(data)}, nil
}

// Create returns a writable blob that commits to the store on Close.
func (m *MemoryStore) Create(_ context.Context, name string) (WritableBlob, error) {
	return &memWriter{store: m, name: name}, nil
}

// Put stores a copy of data under name, replacing any existing blob.
func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	m.commit(name, bytes.Clone(data))
	return nil
}

// Delete removes the named blob. Deleting a missing blob is not an
// error.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.objects, name)
	m.mu.Unlock()
	return nil
}

// List returns the names of all blobs with the given prefix, in map
// iteration order.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name := range m.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}

	return names, nil
}

func (m *MemoryStore) commit(name string, data []byte) {
	m.mu.Lock()
	m.objects[name] = data
	m.mu.Unlock()
}

type memBlob struct {
	data []byte
}

func (b *memBlob) Size() int64 {
	return int64(len(b.data))
}

func (b *memBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}

	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

func (b *memBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= int64(len(b.data)) {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}

	if end := off + length; end < int64(len(b.data)) {
		return io.NopCloser(bytes.NewReader(b.data[off:end])), nil
	}

	return io.NopCloser(bytes.NewReader(b.data[off:])), nil
}

func (b *memBlob) Close() error {
	return nil
}

// memWriter buffers writes and commits the blob atomically on Close,
// matching the rename step of LocalStore.
type memWriter struct {
	store *MemoryStore
	name  string
	buf   bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memWriter) Sync() error {
	return nil
}

func (w *memWriter) Close() error {
	w.store.commit(w.name, bytes.Clone(w.buf.Bytes()))
	return nil
}
