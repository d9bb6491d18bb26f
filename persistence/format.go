package persistence

import (
	"errors"
	"fmt"

	"github.com/hupe1980/bvhgo/geometry"
)

const (
	// Magic identifies a snapshot file ("BVH1" in big endian byte order).
	Magic uint32 = 0x42564831

	// Version is the current snapshot format version.
	Version uint32 = 1

	// HeaderSize is the fixed size of the file header in bytes.
	HeaderSize = 32

	// SectionHeaderSize is the fixed size of each section header in bytes.
	SectionHeaderSize = 32

	// maxSectionLen caps the stored and uncompressed length a section
	// header may declare. Lengths come from untrusted input and size
	// allocations before any checksum runs.
	maxSectionLen = 1 << 32
)

// Section identifiers.
const (
	SectionManifest uint32 = 1
	SectionNodes    uint32 = 2
	SectionShapes   uint32 = 3
)

var (
	// ErrBadMagic is returned when a snapshot does not start with Magic.
	ErrBadMagic = errors.New("persistence: bad magic")

	// ErrUnsupportedVersion is returned for snapshot versions newer than
	// this package understands.
	ErrUnsupportedVersion = errors.New("persistence: unsupported version")

	// ErrCorruptSnapshot is returned when the container structure is
	// inconsistent, for example a truncated section or a missing
	// mandatory section.
	ErrCorruptSnapshot = errors.New("persistence: corrupt snapshot")

	// ErrCompressedSnapshot is returned by LoadMmap when the node or
	// shape table sections are compressed and cannot be mapped in place.
	ErrCompressedSnapshot = errors.New("persistence: snapshot is compressed, use Load")
)

// FileHeader is the fixed-size header at the start of every snapshot.
type FileHeader struct {
	Magic        uint32
	Version      uint32
	SectionCount uint32
	CodecName    [16]byte
	_            [4]byte
}

// SectionHeader precedes each section payload. Payloads are padded to an
// 8 byte boundary so that node records stay aligned for in-place casts.
type SectionHeader struct {
	ID              uint32
	Compression     uint32
	UncompressedLen uint64
	StoredLen       uint64
	Checksum        uint32
	_               [4]byte
}

// checkSectionLens rejects headers whose declared lengths exceed
// maxSectionLen before any buffer is sized from them.
func checkSectionLens(sh SectionHeader) error {
	if sh.StoredLen > maxSectionLen || sh.UncompressedLen > maxSectionLen {
		return fmt.Errorf("%w: section %d declares lengths %d/%d", ErrCorruptSnapshot, sh.ID, sh.StoredLen, sh.UncompressedLen)
	}
	return nil
}

// Manifest carries the metadata section of a snapshot. It is encoded with
// the codec named in the file header.
type Manifest struct {
	NodeCount     uint32        `json:"nodeCount"`
	ShapeCount    uint32        `json:"shapeCount"`
	LeafSize      int           `json:"leafSize"`
	BucketCount   int           `json:"bucketCount"`
	MaxDepth      int           `json:"maxDepth"`
	RootBounds    geometry.AABB `json:"rootBounds"`
	CreatedAtUnix int64         `json:"createdAtUnix"`
}

// ChecksumMismatchError is returned when a section payload does not match
// its stored CRC32-C checksum.
type ChecksumMismatchError struct {
	Section  uint32
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("persistence: checksum mismatch in section %d: expected %08x, got %08x", e.Section, e.Expected, e.Actual)
}
