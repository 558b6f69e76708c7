package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneHandlesAreSequentialUpToCapacity(t *testing.T) {
	s, err := NewSceneSystem(&SceneSystemConfig{MaxObjectCount: DefaultMaxObjectCount})
	require.NoError(t, err)

	geometry := &metadata.Geometry{VertexBufferID: 1, IndexBufferID: 2, IndexCount: 3}
	for i := uint32(0); i < DefaultMaxObjectCount; i++ {
		h, err := s.AddMesh(geometry)
		require.NoError(t, err)
		assert.Equal(t, i, h)
	}
	assert.True(t, s.Full())

	h, err := s.AddMesh(geometry)
	assert.ErrorIs(t, err, core.ErrCapacityExceeded)
	assert.Equal(t, InvalidHandle, h)
	assert.Equal(t, int(DefaultMaxObjectCount), s.Count())
}

func TestSceneNewObjectDefaults(t *testing.T) {
	s, err := NewSceneSystem(&SceneSystemConfig{MaxObjectCount: 2})
	require.NoError(t, err)

	h, err := s.AddMesh(&metadata.Geometry{})
	require.NoError(t, err)

	obj, ok := s.Get(h)
	require.True(t, ok)
	assert.Equal(t, mgl32.Ident4(), obj.ModelMatrix)
	assert.True(t, obj.Visible)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, obj.Tint)
}

func TestSceneUpdateModelMatrix(t *testing.T) {
	s, err := NewSceneSystem(&SceneSystemConfig{MaxObjectCount: 2})
	require.NoError(t, err)
	h, err := s.AddMesh(&metadata.Geometry{})
	require.NoError(t, err)

	require.NoError(t, s.UpdateModelMatrix(h, mgl32.Vec3{1, 2, 3}, mgl32.Vec3{}, mgl32.Vec3{2, 2, 2}))
	obj, _ := s.Get(h)
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, obj.ModelMatrix.Col(3))
	assert.Equal(t, float32(2), obj.ModelMatrix.At(0, 0))
	assert.Equal(t, float32(2), obj.ModelMatrix.At(1, 1))

	// Scale is applied before the rotation.
	require.NoError(t, s.UpdateModelMatrix(h, mgl32.Vec3{}, mgl32.Vec3{0, 0, mgl32.DegToRad(90)}, mgl32.Vec3{2, 1, 1}))
	obj, _ = s.Get(h)
	p := obj.ModelMatrix.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec4{0, 2, 0, 1}, 1e-5), "got %v", p)
}

func TestSceneUnknownHandle(t *testing.T) {
	s, err := NewSceneSystem(&SceneSystemConfig{MaxObjectCount: 2})
	require.NoError(t, err)

	assert.ErrorIs(t, s.UpdateModelMatrix(0, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}), core.ErrInvalidHandle)
	assert.ErrorIs(t, s.SetVisibility(InvalidHandle, false), core.ErrInvalidHandle)
	assert.ErrorIs(t, s.SetTint(5, mgl32.Vec4{}), core.ErrInvalidHandle)
	_, ok := s.Get(0)
	assert.False(t, ok)
}

func TestSceneEachIsAscendingAndStoppable(t *testing.T) {
	s, err := NewSceneSystem(&SceneSystemConfig{MaxObjectCount: 4})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := s.AddMesh(&metadata.Geometry{})
		require.NoError(t, err)
	}

	var seen []uint32
	s.Each(func(obj *SceneObject) bool {
		seen = append(seen, obj.Handle)
		return obj.Handle < 2
	})
	assert.Equal(t, []uint32{0, 1, 2}, seen)
}

func TestSceneShutdownInvalidatesHandles(t *testing.T) {
	s, err := NewSceneSystem(&SceneSystemConfig{MaxObjectCount: 2})
	require.NoError(t, err)
	h, err := s.AddMesh(&metadata.Geometry{})
	require.NoError(t, err)

	require.NoError(t, s.Shutdown())
	assert.Equal(t, 0, s.Count())
	assert.ErrorIs(t, s.SetVisibility(h, true), core.ErrInvalidHandle)
}

func TestNewSceneSystemRejectsZeroCapacity(t *testing.T) {
	_, err := NewSceneSystem(&SceneSystemConfig{})
	assert.Error(t, err)
}
