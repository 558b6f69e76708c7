package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tether/engine/config"
	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/protocol"
	"github.com/spaghettifunk/tether/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderFrame(t *testing.T, r *RendererSystem) {
	t.Helper()
	require.NoError(t, r.BeginFrame(mgl32.Vec4{0, 0, 0, 1}))
	require.NoError(t, r.RenderScene())
	require.NoError(t, r.EndFrame())
}

func TestInvisibleObjectIsNotDrawn(t *testing.T) {
	h := newInitializedHarness(t, nil)
	first, err := h.sm.AddMesh("a", triangle())
	require.NoError(t, err)
	second, err := h.sm.AddMesh("b", triangle())
	require.NoError(t, err)
	require.Equal(t, uint32(0), first)
	require.Equal(t, uint32(1), second)
	require.NoError(t, h.sm.SceneSystem.SetVisibility(second, false))

	renderFrame(t, h.sm.RendererSystem)

	obj, _ := h.sm.SceneSystem.Get(first)
	draws := h.remote.LastFrame().Draws
	require.Len(t, draws, 1)
	assert.Equal(t, obj.Geometry.VertexBufferID, draws[0].VertexBuffer)
	assert.Equal(t, obj.Geometry.IndexBufferID, draws[0].IndexBuffer)
	assert.Equal(t, uint32(3), draws[0].Count)
	assert.Equal(t, protocol.ModeTriangles, draws[0].Mode)
	assert.Empty(t, h.remote.LastFrame().Errors)
}

func TestOneDispatchPerFrame(t *testing.T) {
	h := newInitializedHarness(t, nil)
	_, err := h.sm.AddMesh("a", triangle())
	require.NoError(t, err)

	before := h.remote.Dispatches()
	for i := 0; i < 3; i++ {
		renderFrame(t, h.sm.RendererSystem)
		assert.Equal(t, before+i+1, h.remote.Dispatches())
	}
	assert.Equal(t, uint64(3), h.sm.RendererSystem.Stats().FramesDispatched)
}

func TestFrameCommandOrder(t *testing.T) {
	h := newInitializedHarness(t, nil)
	_, err := h.sm.AddMesh("a", triangle())
	require.NoError(t, err)

	renderFrame(t, h.sm.RendererSystem)

	var ops []protocol.Opcode
	for _, c := range h.remote.LastFrame().Commands {
		ops = append(ops, c.Opcode)
	}
	assert.Equal(t, []protocol.Opcode{
		protocol.OpClear,
		protocol.OpEnableDepthTest,
		protocol.OpUseProgram,
		protocol.OpBindBuffer,
		protocol.OpVertexAttribPointer,
		protocol.OpEnableVertexAttribArray,
		protocol.OpVertexAttribPointer,
		protocol.OpEnableVertexAttribArray,
		protocol.OpBindBuffer,
		protocol.OpUniformMatrix4fv,
		protocol.OpUniformMatrix4fv,
		protocol.OpUniform3f,
		protocol.OpUniform3f,
		protocol.OpUniform4f,
		protocol.OpDrawElements,
	}, ops)

	normal := h.remote.LastFrame().Commands[6]
	components, offset := protocol.UnpackAttrib(normal.Operand1)
	assert.Equal(t, metadata.AttribNormal, normal.Operand0)
	assert.Equal(t, uint32(3), components)
	assert.Equal(t, uint32(12), offset)
	assert.Equal(t, uint32(24), normal.Operand2)
}

func TestDrawUniforms(t *testing.T) {
	h := newInitializedHarness(t, nil)
	handle, err := h.sm.AddMesh("a", triangle())
	require.NoError(t, err)
	require.NoError(t, h.sm.SceneSystem.UpdateModelMatrix(handle, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}))
	require.NoError(t, h.sm.SceneSystem.SetTint(handle, mgl32.Vec4{1, 0, 0, 1}))
	cam := h.sm.CameraSystem.GetDefault()
	cam.FollowTarget(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 10, 10})

	renderFrame(t, h.sm.RendererSystem)

	obj, _ := h.sm.SceneSystem.Get(handle)
	draw := h.remote.LastFrame().Draws[0]
	assert.Equal(t, cam.GetViewProjection().Mul4(obj.ModelMatrix), draw.MVP)
	assert.Equal(t, obj.ModelMatrix, draw.Model)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, draw.Tint)
	assert.Equal(t, mgl32.Vec3{1, 10, 10}, draw.ViewPosition)
	assert.Equal(t, h.sm.Config().LightDirection(), draw.LightDir)
	assert.True(t, draw.DepthTest)
	assert.Equal(t, []uint32{metadata.AttribPosition, metadata.AttribNormal}, draw.EnabledAttrib)
}

func TestClearColorIsClamped(t *testing.T) {
	h := newInitializedHarness(t, nil)
	r := h.sm.RendererSystem

	require.NoError(t, r.BeginFrame(mgl32.Vec4{2, -1, 0.5, 1}))
	require.NoError(t, r.EndFrame())
	assert.Equal(t, mgl32.Vec4{1, 0, 0.5, 1}, h.remote.LastFrame().ClearColor)
}

func TestFrameStateMachine(t *testing.T) {
	h := newInitializedHarness(t, nil)
	r := h.sm.RendererSystem
	assert.Equal(t, FrameIdle, r.State())

	assert.ErrorIs(t, r.RenderScene(), core.ErrFrameState)
	assert.ErrorIs(t, r.EndFrame(), core.ErrFrameState)

	require.NoError(t, r.BeginFrame(mgl32.Vec4{}))
	assert.Equal(t, FrameRecording, r.State())
	assert.ErrorIs(t, r.BeginFrame(mgl32.Vec4{}), core.ErrFrameState)

	require.NoError(t, r.EndFrame())
	assert.Equal(t, FrameFlushed, r.State())
	assert.ErrorIs(t, r.EndFrame(), core.ErrFrameState)
	require.NoError(t, r.BeginFrame(mgl32.Vec4{}))
}

func TestFrameDropsAreAbsorbed(t *testing.T) {
	h := newInitializedHarness(t, func(cfg *config.Config) {
		cfg.Renderer.CommandCapacity = 4
	})
	_, err := h.sm.AddMesh("a", triangle())
	require.NoError(t, err)

	renderFrame(t, h.sm.RendererSystem)

	stats := h.sm.RendererSystem.Stats()
	assert.Equal(t, uint64(1), stats.FramesDispatched)
	assert.Equal(t, uint64(11), stats.DroppedCommands)
	assert.Len(t, h.remote.LastFrame().Commands, 4)
	assert.Empty(t, h.remote.LastFrame().Draws)
}

func TestRemoteErrorsDuringFrameAreAbsorbed(t *testing.T) {
	h := newInitializedHarness(t, nil)
	_, err := h.sm.AddMesh("a", triangle())
	require.NoError(t, err)
	h.remote.FailNext(protocol.OpDrawElements, "context lost")

	renderFrame(t, h.sm.RendererSystem)
	assert.Equal(t, uint64(1), h.sm.RendererSystem.Stats().AbsorbedErrors)
	assert.Zero(t, h.bridge.Stray())

	renderFrame(t, h.sm.RendererSystem)
	assert.Equal(t, uint64(1), h.sm.RendererSystem.Stats().AbsorbedErrors)
	assert.Len(t, h.remote.LastFrame().Draws, 1)
}

func TestCompositePassRunsLast(t *testing.T) {
	h := newInitializedHarness(t, nil)
	r := h.sm.RendererSystem
	r.SetCompositePass(func(cb *protocol.CommandBuffer) {
		cb.Append(protocol.OpDrawArrays, protocol.ModeLines, 0, 2)
	})

	renderFrame(t, r)
	cmds := h.remote.LastFrame().Commands
	assert.Equal(t, protocol.OpDrawArrays, cmds[len(cmds)-1].Opcode)
	assert.Equal(t, 1, len(h.remote.LastFrame().Draws))
}

func TestViewIsBuiltOncePerFrame(t *testing.T) {
	h := newInitializedHarness(t, nil)
	cam := h.sm.CameraSystem.GetDefault()
	r := h.sm.RendererSystem

	cam.FollowTarget(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 10, 10})
	renderFrame(t, r)
	builds := cam.ViewBuilds()

	cam.FollowTarget(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 10, 10})
	renderFrame(t, r)
	assert.Equal(t, builds, cam.ViewBuilds())
}

func TestAddMeshOnFullSceneUploadsNothing(t *testing.T) {
	h := newInitializedHarness(t, func(cfg *config.Config) {
		cfg.Scene.MaxObjects = 1
	})
	_, err := h.sm.AddMesh("a", triangle())
	require.NoError(t, err)
	dispatches := h.remote.Dispatches()

	handle, err := h.sm.AddMesh("b", triangle())
	assert.ErrorIs(t, err, core.ErrCapacityExceeded)
	assert.Equal(t, InvalidHandle, handle)
	assert.Equal(t, dispatches, h.remote.Dispatches())
}

func TestInitializeFailsWhenProgramCreationFails(t *testing.T) {
	h := newHarness(t, nil)
	h.remote.FailNext(protocol.OpCreateProgram, "compile error")

	err := h.sm.Initialize()
	assert.ErrorIs(t, err, core.ErrShaderProgramCreationFailed)
}
