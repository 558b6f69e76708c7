package math

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform holds a position, an Euler rotation (radians, applied X then Y then Z)
// and a scale. The composed matrix is cached until one of them changes.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
	IsDirty  bool
	Local    mgl32.Mat4
}

func TransformCreate() *Transform {
	return &Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.Vec3{0, 0, 0},
		Scale:    mgl32.Vec3{1, 1, 1},
		Local:    mgl32.Ident4(),
	}
}

func (t *Transform) SetPositionRotationScale(position, rotation, scale mgl32.Vec3) {
	t.Position = position
	t.Rotation = rotation
	t.Scale = scale
	t.IsDirty = true
}

// GetLocal returns T * R * S: scale first, then rotate, then translate.
func (t *Transform) GetLocal() mgl32.Mat4 {
	if t == nil {
		return mgl32.Ident4()
	}
	if t.IsDirty {
		t.Local = ComposeModel(t.Position, t.Rotation, t.Scale)
		t.IsDirty = false
	}
	return t.Local
}

// ComposeModel builds a column-major model matrix from its parts.
func ComposeModel(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	translate := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	rotate := EulerRotation(rotation)
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return translate.Mul4(rotate).Mul4(s)
}

// EulerRotation converts XYZ Euler angles in radians to a rotation matrix.
func EulerRotation(rotation mgl32.Vec3) mgl32.Mat4 {
	if rotation == (mgl32.Vec3{}) {
		return mgl32.Ident4()
	}
	return mgl32.AnglesToQuat(rotation.X(), rotation.Y(), rotation.Z(), mgl32.XYZ).Normalize().Mat4()
}
