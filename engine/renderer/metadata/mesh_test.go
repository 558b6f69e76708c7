package metadata

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeshEncoding(t *testing.T) {
	m := &Mesh{Vertices: []float32{1.5, -2}, Indices: []uint16{7, 0x0102}}

	v := m.VertexData()
	assert.Len(t, v, 8)
	assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(v)))
	assert.Equal(t, float32(-2), math.Float32frombits(binary.LittleEndian.Uint32(v[4:])))

	assert.Equal(t, []byte{7, 0, 2, 1}, m.IndexData())
}

func TestLayout(t *testing.T) {
	m := &Mesh{}
	assert.Equal(t, DefaultVertexLayout, LayoutOf(m))
	assert.Equal(t, uint32(0), DefaultVertexLayout.Offset(0))
	assert.Equal(t, uint32(12), DefaultVertexLayout.Offset(1))

	custom := VertexLayout{
		Attributes: []VertexAttribute{{Location: AttribPosition, Components: 3}, {Location: AttribTexcoord, Components: 2}},
		Stride:     20,
	}
	m.VertexLayout = custom
	assert.Equal(t, custom, LayoutOf(m))
}
