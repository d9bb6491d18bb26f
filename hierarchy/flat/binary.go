package flat

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// NodeBinarySize is the fixed width of one encoded node: six float32 bounds
// followed by four uint32 fields, little endian.
const NodeBinarySize = 40

// MarshalBinary encodes the flat hierarchy as a self-contained byte block:
// node count, shape-table length, the fixed-width node records, then the
// shape table.
func (f *FlatBVH) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 8+len(f.nodes)*NodeBinarySize+len(f.shapes)*4)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(f.nodes)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(f.shapes)))

	for i := range f.nodes {
		n := &f.nodes[i]
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(n.AABB.Min.X))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(n.AABB.Min.Y))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(n.AABB.Min.Z))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(n.AABB.Max.X))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(n.AABB.Max.Y))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(n.AABB.Max.Z))
		buf = binary.LittleEndian.AppendUint32(buf, n.EntryIndex)
		buf = binary.LittleEndian.AppendUint32(buf, n.ExitIndex)
		buf = binary.LittleEndian.AppendUint32(buf, n.ShapeOffset)
		buf = binary.LittleEndian.AppendUint32(buf, n.ShapeCount)
	}
	for _, si := range f.shapes {
		buf = binary.LittleEndian.AppendUint32(buf, si)
	}
	return buf, nil
}

// UnmarshalBinary decodes a block produced by MarshalBinary.
func (f *FlatBVH) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("flat: truncated header: %d bytes", len(data))
	}
	nodeCount := binary.LittleEndian.Uint32(data[0:4])
	shapeCount := binary.LittleEndian.Uint32(data[4:8])

	want := 8 + int(nodeCount)*NodeBinarySize + int(shapeCount)*4
	if len(data) != want {
		return fmt.Errorf("flat: size mismatch: have %d bytes, want %d", len(data), want)
	}

	nodes := make([]Node, nodeCount)
	off := 8
	for i := range nodes {
		rec := data[off : off+NodeBinarySize]
		nodes[i] = Node{}
		nodes[i].AABB.Min.X = math.Float32frombits(binary.LittleEndian.Uint32(rec[0:4]))
		nodes[i].AABB.Min.Y = math.Float32frombits(binary.LittleEndian.Uint32(rec[4:8]))
		nodes[i].AABB.Min.Z = math.Float32frombits(binary.LittleEndian.Uint32(rec[8:12]))
		nodes[i].AABB.Max.X = math.Float32frombits(binary.LittleEndian.Uint32(rec[12:16]))
		nodes[i].AABB.Max.Y = math.Float32frombits(binary.LittleEndian.Uint32(rec[16:20]))
		nodes[i].AABB.Max.Z = math.Float32frombits(binary.LittleEndian.Uint32(rec[20:24]))
		nodes[i].EntryIndex = binary.LittleEndian.Uint32(rec[24:28])
		nodes[i].ExitIndex = binary.LittleEndian.Uint32(rec[28:32])
		nodes[i].ShapeOffset = binary.LittleEndian.Uint32(rec[32:36])
		nodes[i].ShapeCount = binary.LittleEndian.Uint32(rec[36:40])
		off += NodeBinarySize
	}

	shapes := make([]uint32, shapeCount)
	for i := range shapes {
		shapes[i] = binary.LittleEndian.Uint32(data[off : off+4])
		off += 4
	}

	f.nodes = nodes
	f.shapes = shapes
	return nil
}

// FromSections builds a FlatBVH directly over externally owned node and
// shape-table slices, e.g. sections cast out of a memory-mapped snapshot.
// The FlatBVH aliases the slices; they must stay valid while it is in use.
func FromSections(nodes []Node, shapes []uint32) *FlatBVH {
	return &FlatBVH{nodes: nodes, shapes: shapes}
}

// NodeBytes reinterprets the node records as their raw little-endian wire
// bytes without copying. Only valid on little-endian hosts.
func NodeBytes(nodes []Node) []byte {
	if len(nodes) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&nodes[0])), len(nodes)*NodeBinarySize)
}

// ShapeTableBytes reinterprets a shape table as its raw little-endian wire
// bytes without copying.
func ShapeTableBytes(shapes []uint32) []byte {
	if len(shapes) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&shapes[0])), len(shapes)*4)
}

// CastNodes reinterprets a raw little-endian node section as a []Node
// without copying. The in-memory layout of Node matches the wire layout
// exactly (40 bytes, four-byte aligned, no padding), which this function
// asserts. Only valid on little-endian hosts; the snapshot loader checks
// the section length first.
func CastNodes(data []byte) ([]Node, error) {
	if unsafe.Sizeof(Node{}) != NodeBinarySize {
		return nil, fmt.Errorf("flat: node layout is %d bytes, want %d", unsafe.Sizeof(Node{}), NodeBinarySize)
	}
	if len(data)%NodeBinarySize != 0 {
		return nil, fmt.Errorf("flat: node section length %d not a multiple of %d", len(data), NodeBinarySize)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return unsafe.Slice((*Node)(unsafe.Pointer(&data[0])), len(data)/NodeBinarySize), nil
}

// CastShapeTable reinterprets a raw little-endian shape-table section as a
// []uint32 without copying.
func CastShapeTable(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("flat: shape table length %d not a multiple of 4", len(data))
	}
	if len(data) == 0 {
		return nil, nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4), nil
}
