package persistence

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bvhgo/codec"
	"github.com/hupe1980/bvhgo/hierarchy/flat"
	"github.com/hupe1980/bvhgo/testutil"
)

func buildFixture(t *testing.T, n int) (*flat.FlatBVH, []*testutil.Box) {
	t.Helper()

	boxes := testutil.GridBoxes(n)

	f, err := flat.Build(boxes)
	require.NoError(t, err)

	return f, boxes
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	f, _ := buildFixture(t, 32)

	m := Manifest{
		LeafSize:    1,
		BucketCount: 8,
		MaxDepth:    64,
		RootBounds:  f.Nodes()[0].AABB,
	}

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, f, m))

	loaded, lm, err := Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, f.Nodes(), loaded.Nodes())
	assert.Equal(t, f.ShapeTable(), loaded.ShapeTable())
	assert.Equal(t, uint32(f.NodeCount()), lm.NodeCount)
	assert.Equal(t, uint32(len(f.ShapeTable())), lm.ShapeCount)
	assert.Equal(t, 1, lm.LeafSize)
	assert.Equal(t, m.RootBounds, lm.RootBounds)
	assert.NotZero(t, lm.CreatedAtUnix, "save stamps the creation time")
}

func TestSaveLoad_Compression(t *testing.T) {
	f, _ := buildFixture(t, 64)

	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Save(&buf, f, Manifest{}, func(o *SaveOptions) {
				o.Compression = c
			}))

			loaded, _, err := Load(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)

			assert.Equal(t, f.Nodes(), loaded.Nodes())
			assert.Equal(t, f.ShapeTable(), loaded.ShapeTable())
		})
	}
}

func TestSaveLoad_Codecs(t *testing.T) {
	f, _ := buildFixture(t, 8)

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Save(&buf, f, Manifest{LeafSize: 2}, func(o *SaveOptions) {
				o.Codec = c
			}))

			_, m, err := Load(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, 2, m.LeafSize)
		})
	}
}

func TestSaveLoad_EmptyTree(t *testing.T) {
	f := flat.FromSections(nil, nil)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, f, Manifest{}))

	loaded, m, err := Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, 0, loaded.NodeCount())
	assert.Zero(t, m.NodeCount)
}

func TestLoad_BadMagic(t *testing.T) {
	_, _, err := Load(bytes.NewReader(make([]byte, HeaderSize)))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestLoad_Truncated(t *testing.T) {
	f, _ := buildFixture(t, 16)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, f, Manifest{}))

	data := buf.Bytes()

	_, _, err := Load(bytes.NewReader(data[:len(data)-10]))
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestLoad_ChecksumMismatch(t *testing.T) {
	f, _ := buildFixture(t, 16)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, f, Manifest{}))

	// Flip one byte in the node section payload, past the manifest.
	data := buf.Bytes()
	data[len(data)-20] ^= 0xff

	_, _, err := Load(bytes.NewReader(data))

	var cm *ChecksumMismatchError
	require.ErrorAs(t, err, &cm)
	assert.NotEqual(t, cm.Expected, cm.Actual)
}

func TestLoad_UnsupportedVersion(t *testing.T) {
	f, _ := buildFixture(t, 4)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, f, Manifest{}))

	// Version lives right after the magic, little endian.
	data := buf.Bytes()
	data[4] = 0xff

	_, _, err := Load(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestLoad_UnknownCodec(t *testing.T) {
	f, _ := buildFixture(t, 4)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, f, Manifest{}))

	data := buf.Bytes()
	copy(data[12:28], []byte("nonexistent\x00\x00\x00\x00\x00"))

	_, _, err := Load(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestLoad_OversizedSection(t *testing.T) {
	f, _ := buildFixture(t, 4)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, f, Manifest{}))

	// StoredLen of the first section header, at offset 16 within it.
	data := bytes.Clone(buf.Bytes())
	binary.LittleEndian.PutUint64(data[HeaderSize+16:], 1<<40)

	_, _, err := Load(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrCorruptSnapshot)

	// Same for a runaway UncompressedLen, at offset 8.
	data = bytes.Clone(buf.Bytes())
	binary.LittleEndian.PutUint64(data[HeaderSize+8:], 1<<40)

	_, _, err = Load(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestSectionPadding(t *testing.T) {
	assert.Equal(t, 0, sectionPadding(0))
	assert.Equal(t, 7, sectionPadding(1))
	assert.Equal(t, 1, sectionPadding(7))
	assert.Equal(t, 0, sectionPadding(8))
	assert.Equal(t, 4, sectionPadding(12))
}

func TestCompression_String(t *testing.T) {
	assert.Equal(t, "none", CompressionNone.String())
	assert.Equal(t, "zstd", CompressionZstd.String())
	assert.Equal(t, "lz4", CompressionLZ4.String())
	assert.Equal(t, "compression(9)", Compression(9).String())
}

func TestSave_UnknownCompression(t *testing.T) {
	f, _ := buildFixture(t, 4)

	var buf bytes.Buffer
	err := Save(&buf, f, Manifest{}, func(o *SaveOptions) {
		o.Compression = Compression(42)
	})
	assert.Error(t, err)
}

func BenchmarkSave(b *testing.B) {
	rng := testutil.NewRNG(1)
	boxes := testutil.RandomBoxes(rng, 10000, 1000, 10)

	f, err := flat.Build(boxes)
	if err != nil {
		b.Fatal(err)
	}

	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		b.Run(c.String(), func(b *testing.B) {
			b.ReportAllocs()

			for b.Loop() {
				var buf bytes.Buffer
				if err := Save(&buf, f, Manifest{}, func(o *SaveOptions) { o.Compression = c }); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkLoad(b *testing.B) {
	rng := testutil.NewRNG(1)
	boxes := testutil.RandomBoxes(rng, 10000, 1000, 10)

	f, err := flat.Build(boxes)
	if err != nil {
		b.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Save(&buf, f, Manifest{}); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.SetBytes(int64(buf.Len()))

	for b.Loop() {
		if _, _, err := Load(bytes.NewReader(buf.Bytes())); err != nil {
			b.Fatal(err)
		}
	}
}
