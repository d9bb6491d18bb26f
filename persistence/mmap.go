package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/bvhgo/codec"
	"github.com/hupe1980/bvhgo/hierarchy/flat"
	"github.com/hupe1980/bvhgo/internal/hash"
	"github.com/hupe1980/bvhgo/internal/mmap"
)

// LoadMmap maps the snapshot at path into memory and builds a FlatBVH
// directly over the mapped node and shape table sections, without copying
// them onto the heap. The snapshot must have been written with
// CompressionNone; compressed snapshots return ErrCompressedSnapshot.
//
// The returned closer unmaps the file. The FlatBVH aliases the mapping and
// must not be used after Close.
func LoadMmap(path string) (*flat.FlatBVH, Manifest, io.Closer, error) {
	var m Manifest

	mf, err := mmap.Open(path)
	if err != nil {
		return nil, m, nil, fmt.Errorf("persistence: mmap snapshot: %w", err)
	}

	f, m, err := loadMapped(mf.Data)
	if err != nil {
		mf.Close()
		return nil, m, nil, err
	}

	return f, m, mf, nil
}

func loadMapped(data []byte) (*flat.FlatBVH, Manifest, error) {
	var m Manifest

	header, err := readFileHeader(bytes.NewReader(data))
	if err != nil {
		return nil, m, err
	}

	c, ok := codec.ByName(codecName(header))
	if !ok {
		return nil, m, fmt.Errorf("%w: unknown codec %q", ErrCorruptSnapshot, codecName(header))
	}

	var (
		nodeData  []byte
		shapeData []byte
	)

	off := HeaderSize

	for i := uint32(0); i < header.SectionCount; i++ {
		if off+SectionHeaderSize > len(data) {
			return nil, m, fmt.Errorf("%w: truncated section header at offset %d", ErrCorruptSnapshot, off)
		}

		var sh SectionHeader
		if err := binary.Read(bytes.NewReader(data[off:off+SectionHeaderSize]), binary.LittleEndian, &sh); err != nil {
			return nil, m, fmt.Errorf("%w: read section header: %v", ErrCorruptSnapshot, err)
		}

		off += SectionHeaderSize

		if err := checkSectionLens(sh); err != nil {
			return nil, m, err
		}

		if sh.StoredLen > uint64(len(data)-off) {
			return nil, m, fmt.Errorf("%w: truncated section %d payload", ErrCorruptSnapshot, sh.ID)
		}

		end := off + int(sh.StoredLen)

		payload := data[off:end]
		off = end + sectionPadding(int(sh.StoredLen))

		if actual := hash.CRC32C(payload); actual != sh.Checksum {
			return nil, m, &ChecksumMismatchError{Section: sh.ID, Expected: sh.Checksum, Actual: actual}
		}

		switch sh.ID {
		case SectionManifest:
			// The manifest is stored uncompressed but is heap decoded
			// either way, so compression would be tolerable here.
			raw, err := decompressPayload(Compression(sh.Compression), payload, sh.UncompressedLen)
			if err != nil {
				return nil, m, err
			}

			if err := c.Unmarshal(raw, &m); err != nil {
				return nil, m, fmt.Errorf("persistence: decode manifest: %w", err)
			}
		case SectionNodes:
			if Compression(sh.Compression) != CompressionNone {
				return nil, m, ErrCompressedSnapshot
			}

			nodeData = payload
		case SectionShapes:
			if Compression(sh.Compression) != CompressionNone {
				return nil, m, ErrCompressedSnapshot
			}

			shapeData = payload
		}
	}

	if nodeData == nil || shapeData == nil {
		return nil, m, fmt.Errorf("%w: missing node or shape table section", ErrCorruptSnapshot)
	}

	nodes, err := decodeNodes(nodeData)
	if err != nil {
		return nil, m, err
	}

	shapes, err := decodeShapeTable(shapeData)
	if err != nil {
		return nil, m, err
	}

	return flat.FromSections(nodes, shapes), m, nil
}
