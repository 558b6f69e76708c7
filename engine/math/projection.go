package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Orthographic validates the bounds and builds an orthographic projection.
// ok is false for zero-width ranges or non-finite input.
func Orthographic(left, right, bottom, top, near, far float32) (mgl32.Mat4, bool) {
	if !IsFinite(left, right, bottom, top, near, far) {
		return mgl32.Mat4{}, false
	}
	if left == right || bottom == top || near == far {
		return mgl32.Mat4{}, false
	}
	return mgl32.Ortho(left, right, bottom, top, near, far), true
}

// Perspective validates the parameters and builds a perspective projection.
// fovy is in radians.
func Perspective(fovy, aspect, near, far float32) (mgl32.Mat4, bool) {
	if !IsFinite(fovy, aspect, near, far) {
		return mgl32.Mat4{}, false
	}
	if fovy <= 0 || fovy >= gomath.Pi || aspect <= 0 || near <= 0 || near == far {
		return mgl32.Mat4{}, false
	}
	return mgl32.Perspective(fovy, aspect, near, far), true
}

// LookAt builds a view matrix from eye toward center. ok is false when the
// forward vector has zero length or is parallel to up, which would produce NaN.
func LookAt(eye, center, up mgl32.Vec3) (mgl32.Mat4, bool) {
	forward := center.Sub(eye)
	if forward.Len() < 1e-6 {
		return mgl32.Mat4{}, false
	}
	if forward.Normalize().Cross(up.Normalize()).Len() < 1e-6 {
		return mgl32.Mat4{}, false
	}
	m := mgl32.LookAtV(eye, center, up)
	if !IsFinite(m[:]...) {
		return mgl32.Mat4{}, false
	}
	return m, true
}
