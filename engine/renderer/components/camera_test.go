package components

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tether/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrthoCamera(t *testing.T) *Camera {
	c := NewCamera()
	require.NoError(t, c.SetOrthographicProjection(-10, 10, -10, 10, 0.1, 100))
	return c
}

func TestOrthographicRejectsDegenerateBounds(t *testing.T) {
	c := newOrthoCamera(t)
	before := c.Projection

	err := c.SetOrthographicProjection(5, 5, -1, 1, 0, 1)
	assert.ErrorIs(t, err, core.ErrInvalidProjectionBounds)
	assert.Equal(t, before, c.Projection)
	for _, v := range c.ViewProjection {
		assert.False(t, v != v, "NaN in view projection")
	}

	assert.ErrorIs(t, c.SetOrthographicProjection(-1, 1, 3, 3, 0, 1), core.ErrInvalidProjectionBounds)
	assert.ErrorIs(t, c.SetOrthographicProjection(-1, 1, -1, 1, 2, 2), core.ErrInvalidProjectionBounds)
}

func TestPerspectiveRejectsBadParameters(t *testing.T) {
	c := NewCamera()
	assert.ErrorIs(t, c.SetPerspectiveProjection(1, 1, 5, 5), core.ErrInvalidProjectionBounds)
	assert.NoError(t, c.SetPerspectiveProjection(mgl32.DegToRad(60), 16.0/9.0, 0.1, 100))
}

func TestFollowTarget(t *testing.T) {
	c := newOrthoCamera(t)
	target := mgl32.Vec3{1, 0, 2}
	offset := mgl32.Vec3{0, 5, 10}

	c.FollowTarget(target, offset)
	assert.Equal(t, target.Add(offset), c.Position)
	assert.Equal(t, target, c.Target)

	want := c.Projection.Mul4(mgl32.LookAtV(c.Position, c.Target, mgl32.Vec3{0, 1, 0}))
	assert.True(t, want.ApproxEqualThreshold(c.GetViewProjection(), 1e-5))
}

func TestViewProjectionChangesOnlyWithInputs(t *testing.T) {
	c := newOrthoCamera(t)
	target := mgl32.Vec3{0, 0, 0}
	offset := mgl32.Vec3{0, 5, 10}

	c.FollowTarget(target, offset)
	vp := c.GetViewProjection()
	builds := c.ViewBuilds()

	c.FollowTarget(target, offset)
	assert.Equal(t, vp, c.GetViewProjection())
	assert.Equal(t, builds, c.ViewBuilds())

	c.FollowTarget(mgl32.Vec3{1, 0, 0}, offset)
	assert.NotEqual(t, vp, c.GetViewProjection())
	vp = c.GetViewProjection()

	c.FollowTarget(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 6, 10})
	assert.NotEqual(t, vp, c.GetViewProjection())
}

func TestUpdateViewMatrixDeduplicates(t *testing.T) {
	c := newOrthoCamera(t)
	c.FollowTarget(mgl32.Vec3{}, mgl32.Vec3{0, 1, 5})
	assert.False(t, c.UpdateViewMatrix())
	assert.Equal(t, uint64(1), c.ViewBuilds())
}

func TestZeroLengthForwardKeepsPreviousView(t *testing.T) {
	c := newOrthoCamera(t)
	c.FollowTarget(mgl32.Vec3{}, mgl32.Vec3{0, 1, 5})
	view := c.View

	c.FollowTarget(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{0, 0, 0})
	assert.Equal(t, view, c.View)
	for _, v := range c.GetViewProjection() {
		assert.False(t, v != v, "NaN in view projection")
	}
}
