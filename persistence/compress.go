package persistence

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the codec applied to section payloads.
type Compression uint32

const (
	// CompressionNone stores payloads verbatim. Required for LoadMmap.
	CompressionNone Compression = iota

	// CompressionZstd compresses payloads with zstandard.
	CompressionZstd

	// CompressionLZ4 compresses payloads with the lz4 frame format.
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("compression(%d)", uint32(c))
	}
}

func compressPayload(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("persistence: create zstd writer: %w", err)
		}

		defer enc.Close()

		return enc.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer

		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("persistence: lz4 compress: %w", err)
		}

		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("persistence: lz4 flush: %w", err)
		}

		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("persistence: unknown compression %d", uint32(c))
	}
}

func decompressPayload(c Compression, data []byte, uncompressedLen uint64) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("persistence: create zstd reader: %w", err)
		}

		defer dec.Close()

		out, err := dec.DecodeAll(data, make([]byte, 0, uncompressedLen))
		if err != nil {
			return nil, fmt.Errorf("persistence: zstd decompress: %w", err)
		}

		return out, nil
	case CompressionLZ4:
		out := make([]byte, 0, uncompressedLen)

		buf := bytes.NewBuffer(out)
		if _, err := io.Copy(buf, lz4.NewReader(bytes.NewReader(data))); err != nil {
			return nil, fmt.Errorf("persistence: lz4 decompress: %w", err)
		}

		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("persistence: unknown compression %d", uint32(c))
	}
}
