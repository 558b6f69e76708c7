package metadata

import (
	"encoding/binary"
	"math"
)

// MeshData is the geometry provider consumed by the geometry system. Vertex
// data is interleaved little-endian float32; index data is little-endian uint16.
type MeshData interface {
	VertexData() []byte
	IndexData() []byte
}

// LayoutProvider is implemented by meshes whose vertices do not use
// DefaultVertexLayout.
type LayoutProvider interface {
	Layout() VertexLayout
}

// IndexSize is the byte width of one index on the wire.
const IndexSize = 2

/** @brief A single vertex attribute inside an interleaved vertex. */
type VertexAttribute struct {
	/** @brief The attribute location in the active program. */
	Location uint32
	/** @brief The number of float32 components. */
	Components uint32
}

/** @brief Describes how an interleaved vertex buffer is laid out. */
type VertexLayout struct {
	Attributes []VertexAttribute
	/** @brief The size of one vertex in bytes. */
	Stride uint32
}

// DefaultVertexLayout is position (vec3) followed by normal (vec3).
var DefaultVertexLayout = VertexLayout{
	Attributes: []VertexAttribute{
		{Location: AttribPosition, Components: 3},
		{Location: AttribNormal, Components: 3},
	},
	Stride: 24,
}

// Offset returns the byte offset of the i-th attribute inside one vertex.
func (l VertexLayout) Offset(i int) uint32 {
	var off uint32
	for _, a := range l.Attributes[:i] {
		off += a.Components * 4
	}
	return off
}

// LayoutOf returns the layout advertised by data, or DefaultVertexLayout.
func LayoutOf(data MeshData) VertexLayout {
	if lp, ok := data.(LayoutProvider); ok {
		return lp.Layout()
	}
	return DefaultVertexLayout
}

// Mesh is a MeshData built from plain slices.
type Mesh struct {
	Name     string
	Vertices []float32
	Indices  []uint16
	// Optional; DefaultVertexLayout when zero.
	VertexLayout VertexLayout
}

func (m *Mesh) VertexData() []byte {
	out := make([]byte, len(m.Vertices)*4)
	for i, v := range m.Vertices {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func (m *Mesh) IndexData() []byte {
	out := make([]byte, len(m.Indices)*IndexSize)
	for i, v := range m.Indices {
		binary.LittleEndian.PutUint16(out[i*IndexSize:], v)
	}
	return out
}

func (m *Mesh) Layout() VertexLayout {
	if m.VertexLayout.Stride == 0 {
		return DefaultVertexLayout
	}
	return m.VertexLayout
}

/**
 * @brief Geometry that lives on the remote: the buffer ids it returned for a
 * mesh upload plus what is needed to draw it.
 */
type Geometry struct {
	/** @brief The remote vertex buffer id. */
	VertexBufferID uint32
	/** @brief The remote index buffer id. */
	IndexBufferID uint32
	/** @brief Number of indices to draw. */
	IndexCount uint32
	Layout     VertexLayout
	Name       string
}
