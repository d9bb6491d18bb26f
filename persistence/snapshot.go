package persistence

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/bvhgo/codec"
	"github.com/hupe1980/bvhgo/hierarchy/flat"
	"github.com/hupe1980/bvhgo/internal/hash"
)

// SaveOptions configure snapshot writing.
type SaveOptions struct {
	// Codec encodes the manifest section. Its name is recorded in the
	// file header so that Load can pick the matching decoder.
	Codec codec.Codec

	// Compression is applied to the node and shape table sections. The
	// manifest is always stored uncompressed.
	Compression Compression
}

// Save writes f and its manifest to w as a snapshot.
func Save(w io.Writer, f *flat.FlatBVH, m Manifest, optFns ...func(o *SaveOptions)) error {
	opts := SaveOptions{
		Codec:       codec.Default,
		Compression: CompressionNone,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if m.CreatedAtUnix == 0 {
		m.CreatedAtUnix = time.Now().Unix()
	}

	m.NodeCount = uint32(f.NodeCount())
	m.ShapeCount = uint32(len(f.ShapeTable()))

	manifestData, err := opts.Codec.Marshal(m)
	if err != nil {
		return fmt.Errorf("persistence: encode manifest: %w", err)
	}

	header := FileHeader{
		Magic:        Magic,
		Version:      Version,
		SectionCount: 3,
	}
	copy(header.CodecName[:], opts.Codec.Name())

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("persistence: write header: %w", err)
	}

	if err := writeSection(w, SectionManifest, CompressionNone, manifestData); err != nil {
		return err
	}

	if err := writeSection(w, SectionNodes, opts.Compression, flat.NodeBytes(f.Nodes())); err != nil {
		return err
	}

	return writeSection(w, SectionShapes, opts.Compression, flat.ShapeTableBytes(f.ShapeTable()))
}

func writeSection(w io.Writer, id uint32, c Compression, payload []byte) error {
	stored, err := compressPayload(c, payload)
	if err != nil {
		return err
	}

	sh := SectionHeader{
		ID:              id,
		Compression:     uint32(c),
		UncompressedLen: uint64(len(payload)),
		StoredLen:       uint64(len(stored)),
		Checksum:        hash.CRC32C(stored),
	}

	if err := binary.Write(w, binary.LittleEndian, &sh); err != nil {
		return fmt.Errorf("persistence: write section %d header: %w", id, err)
	}

	if _, err := w.Write(stored); err != nil {
		return fmt.Errorf("persistence: write section %d payload: %w", id, err)
	}

	if pad := sectionPadding(len(stored)); pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return fmt.Errorf("persistence: pad section %d: %w", id, err)
		}
	}

	return nil
}

// sectionPadding returns the number of zero bytes appended after a payload
// of the given length to keep the next section header 8 byte aligned.
func sectionPadding(n int) int {
	return (8 - n%8) % 8
}

// Load reads a snapshot from r. The returned FlatBVH owns copies of the
// node and shape table sections.
func Load(r io.Reader) (*flat.FlatBVH, Manifest, error) {
	var m Manifest

	header, err := readFileHeader(r)
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
		seen      = make(map[uint32]bool, header.SectionCount)
	)

	for i := uint32(0); i < header.SectionCount; i++ {
		sh, payload, err := readSection(r)
		if err != nil {
			return nil, m, err
		}

		if seen[sh.ID] {
			return nil, m, fmt.Errorf("%w: duplicate section %d", ErrCorruptSnapshot, sh.ID)
		}

		seen[sh.ID] = true

		switch sh.ID {
		case SectionManifest:
			if err := c.Unmarshal(payload, &m); err != nil {
				return nil, m, fmt.Errorf("persistence: decode manifest: %w", err)
			}
		case SectionNodes:
			nodeData = payload
		case SectionShapes:
			shapeData = payload
		default:
			// Unknown sections are skipped for forward compatibility.
		}
	}

	for _, id := range []uint32{SectionManifest, SectionNodes, SectionShapes} {
		if !seen[id] {
			return nil, m, fmt.Errorf("%w: missing section %d", ErrCorruptSnapshot, id)
		}
	}

	nodes, err := decodeNodes(nodeData)
	if err != nil {
		return nil, m, err
	}

	shapes, err := decodeShapeTable(shapeData)
	if err != nil {
		return nil, m, err
	}

	if uint32(len(nodes)) != m.NodeCount {
		return nil, m, fmt.Errorf("%w: manifest declares %d nodes, section holds %d", ErrCorruptSnapshot, m.NodeCount, len(nodes))
	}

	return flat.FromSections(nodes, shapes), m, nil
}

func readFileHeader(r io.Reader) (FileHeader, error) {
	var header FileHeader

	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return header, fmt.Errorf("persistence: read header: %w", err)
	}

	if header.Magic != Magic {
		return header, ErrBadMagic
	}

	if header.Version > Version {
		return header, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header.Version)
	}

	return header, nil
}

func codecName(h FileHeader) string {
	n := 0
	for n < len(h.CodecName) && h.CodecName[n] != 0 {
		n++
	}

	return string(h.CodecName[:n])
}

// readSection reads one section header and its decompressed, checksum
// verified payload, consuming the trailing alignment padding.
func readSection(r io.Reader) (SectionHeader, []byte, error) {
	var sh SectionHeader

	if err := binary.Read(r, binary.LittleEndian, &sh); err != nil {
		return sh, nil, fmt.Errorf("%w: read section header: %v", ErrCorruptSnapshot, err)
	}

	if err := checkSectionLens(sh); err != nil {
		return sh, nil, err
	}

	stored := make([]byte, sh.StoredLen)
	if _, err := io.ReadFull(r, stored); err != nil {
		return sh, nil, fmt.Errorf("%w: read section %d payload: %v", ErrCorruptSnapshot, sh.ID, err)
	}

	if pad := sectionPadding(len(stored)); pad > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(pad)); err != nil {
			return sh, nil, fmt.Errorf("%w: read section %d padding: %v", ErrCorruptSnapshot, sh.ID, err)
		}
	}

	if actual := hash.CRC32C(stored); actual != sh.Checksum {
		return sh, nil, &ChecksumMismatchError{Section: sh.ID, Expected: sh.Checksum, Actual: actual}
	}

	payload, err := decompressPayload(Compression(sh.Compression), stored, sh.UncompressedLen)
	if err != nil {
		return sh, nil, err
	}

	if uint64(len(payload)) != sh.UncompressedLen {
		return sh, nil, fmt.Errorf("%w: section %d decompressed to %d bytes, want %d", ErrCorruptSnapshot, sh.ID, len(payload), sh.UncompressedLen)
	}

	return sh, payload, nil
}

func decodeNodes(data []byte) ([]flat.Node, error) {
	nodes, err := flat.CastNodes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	return nodes, nil
}

func decodeShapeTable(data []byte) ([]uint32, error) {
	shapes, err := flat.CastShapeTable(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	return shapes, nil
}
