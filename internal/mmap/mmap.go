package mmap

import (
	"fmt"
	"io"
	"os"
)

// File is a read-only memory mapping of a snapshot file. Data aliases
// the mapped pages directly; it must not be written to or retained
// past Close.
type File struct {
	Data []byte
	f    *os.File
}

// Open maps the file at path read-only. A zero-length file maps to a
// nil Data slice with the descriptor held open so Close stays uniform.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if fi.Size() == 0 {
		return &File{f: f}, nil
	}

	data, err := mapFile(f, int(fi.Size()))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	return &File{Data: data, f: f}, nil
}

// ReadAt serves io.ReaderAt reads out of the mapping.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(m.Data)) {
		return 0, io.EOF
	}

	n := copy(p, m.Data[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// Close unmaps the pages and closes the descriptor. Safe on a nil
// receiver and idempotent.
func (m *File) Close() error {
	if m == nil {
		return nil
	}

	var err error
	if m.Data != nil {
		err = unmapFile(m.Data)
		m.Data = nil
	}

	if m.f != nil {
		if cerr := m.f.Close(); err == nil {
			err = cerr
		}
		m.f = nil
	}

	return err
}
