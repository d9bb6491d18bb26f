// Package hash provides the CRC32-Castagnoli checksums that guard
// snapshot sections and object-store uploads. Castagnoli is the
// polynomial S3 and the snapshot container both speak, and the stdlib
// implementation uses SSE4.2 / ARM CRC instructions when available.
package hash

import (
	"hash"
	"hash/crc32"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C returns the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// NewCRC32C returns a streaming CRC32-Castagnoli hash.Hash32 for
// checksumming a section payload as it is written out.
func NewCRC32C() hash.Hash32 {
	return crc32.New(castagnoli)
}
