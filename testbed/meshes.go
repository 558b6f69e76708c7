package testbed

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tether/engine/renderer/metadata"
)

// cubeFaces lists each face's normal and the two axes spanning it.
var cubeFaces = [6][3]mgl32.Vec3{
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
}

// NewCube builds an axis aligned box centered at the origin with flat
// per-face normals.
func NewCube(name string, size mgl32.Vec3) *metadata.Mesh {
	half := size.Mul(0.5)
	mesh := &metadata.Mesh{
		Name:     name,
		Vertices: make([]float32, 0, 6*4*6),
		Indices:  make([]uint16, 0, 6*6),
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for f, face := range cubeFaces {
		normal, u, v := face[0], face[1], face[2]
		for _, c := range corners {
			p := normal.Add(u.Mul(c[0])).Add(v.Mul(c[1]))
			p = mgl32.Vec3{p[0] * half[0], p[1] * half[1], p[2] * half[2]}
			mesh.Vertices = append(mesh.Vertices, p[0], p[1], p[2], normal[0], normal[1], normal[2])
		}
		base := uint16(f * 4)
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return mesh
}
