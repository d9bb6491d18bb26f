// Package mmap provides read-only memory-mapped file access.
//
// Mapping a snapshot lets the traversal code walk node records straight
// out of the page cache without copying them onto the heap.
//
//	m, err := mmap.Open("scene.bvh")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Data
//
// Unix hosts use mmap(2) via golang.org/x/sys; Windows uses
// CreateFileMapping/MapViewOfFile. Callers must not touch Data after
// Close returns.
package mmap
