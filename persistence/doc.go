// Package persistence implements the binary snapshot format used to save
// and load flattened hierarchies. A snapshot is a sectioned container: a
// fixed header, followed by a manifest section and the raw node and shape
// table sections, each protected by a CRC32-C checksum and optionally
// compressed. Uncompressed snapshots can be memory mapped and traversed
// without copying the node records into the heap.
package persistence
