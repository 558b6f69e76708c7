package systems

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tether/engine/bridge"
	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/math"
	"github.com/spaghettifunk/tether/engine/protocol"
	"github.com/spaghettifunk/tether/engine/remote"
	"github.com/spaghettifunk/tether/engine/renderer/components"
	"github.com/spaghettifunk/tether/engine/renderer/metadata"
)

type FrameState uint8

const (
	FrameIdle FrameState = iota
	FrameRecording
	FrameFlushed
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameRecording:
		return "recording"
	case FrameFlushed:
		return "flushed"
	}
	return fmt.Sprintf("FrameState(%d)", uint8(s))
}

/** @brief The frame controller configuration. */
type RendererSystemConfig struct {
	/** @brief Records available to one frame. Commands past this are dropped. */
	CommandCapacity int
	/** @brief Payload bytes available to one frame (uniform data). */
	PayloadCapacity int
	/** @brief Directional light sent with every draw. */
	LightDirection mgl32.Vec3
}

/** @brief A snapshot of the frame controller's counters. */
type FrameStats struct {
	FramesDispatched uint64
	DroppedCommands  uint64
	AbsorbedErrors   uint64
	FPS              float64
	FrameTimeMS      float64
}

// CompositePass appends the trailing commands of a frame, after the scene.
type CompositePass func(cb *protocol.CommandBuffer)

/**
 * @brief The frame controller. Records one frame into its own encoder and
 * hands it to the remote in exactly one dispatch. Nothing that goes wrong
 * while a frame is running stops the loop: drops and remote errors are
 * counted in the metrics instead.
 */
type RendererSystem struct {
	Config *RendererSystemConfig

	encoder    *protocol.CommandBuffer
	dispatcher remote.Dispatcher
	bridge     *bridge.Bridge
	scene      *SceneSystem
	camera     *components.Camera
	metrics    *core.Metrics
	composite  CompositePass

	state       FrameState
	program     uint32
	dispatching bool

	FramebufferWidth  uint32
	FramebufferHeight uint32
}

func NewRendererSystem(config *RendererSystemConfig, d remote.Dispatcher, b *bridge.Bridge, scene *SceneSystem, camera *components.Camera, metrics *core.Metrics) (*RendererSystem, error) {
	if config.CommandCapacity <= 0 {
		err := fmt.Errorf("func NewRendererSystem - config.CommandCapacity must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if d == nil || b == nil || scene == nil || camera == nil {
		err := fmt.Errorf("func NewRendererSystem - dispatcher, bridge, scene and camera are required")
		core.LogError(err.Error())
		return nil, err
	}
	if metrics == nil {
		metrics = core.NewMetrics()
	}
	r := &RendererSystem{
		Config:     config,
		encoder:    protocol.NewCommandBuffer(config.CommandCapacity, config.PayloadCapacity),
		dispatcher: d,
		bridge:     b,
		scene:      scene,
		camera:     camera,
		metrics:    metrics,
	}
	if !b.RegisterCallback(bridge.EventError, r.onRemoteError) {
		err := fmt.Errorf("func NewRendererSystem - could not register the remote error callback")
		core.LogError(err.Error())
		return nil, err
	}
	return r, nil
}

func (r *RendererSystem) onRemoteError(e bridge.Event) {
	if r.dispatching {
		r.metrics.AbsorbedErrors++
	}
}

func (r *RendererSystem) SetProgram(id uint32) { r.program = id }
func (r *RendererSystem) SetCamera(camera *components.Camera) { r.camera = camera }
func (r *RendererSystem) SetCompositePass(pass CompositePass) { r.composite = pass }
func (r *RendererSystem) SetLightDirection(direction mgl32.Vec3) { r.Config.LightDirection = direction }
func (r *RendererSystem) State() FrameState { return r.state }
func (r *RendererSystem) Encoder() *protocol.CommandBuffer { return r.encoder }
func (r *RendererSystem) Camera() *components.Camera { return r.camera }

func (r *RendererSystem) OnResize(width, height uint32) {
	r.FramebufferWidth, r.FramebufferHeight = width, height
	core.LogDebug("renderer resized to %dx%d", width, height)
}

func (r *RendererSystem) stateError(op string, want ...FrameState) error {
	err := fmt.Errorf("%s: %w: renderer is %s, want %v", op, core.ErrFrameState, r.state, want)
	core.LogError(err.Error())
	return err
}

/**
 * @brief Starts recording a frame: clears color and depth, enables depth
 * testing and selects the active program. Clear color channels are clamped
 * to [0, 1].
 */
func (r *RendererSystem) BeginFrame(clearColor mgl32.Vec4) error {
	if r.state == FrameRecording {
		return r.stateError("begin frame", FrameIdle, FrameFlushed)
	}
	r.encoder.Reset()
	for i := range clearColor {
		clearColor[i] = math.Clamp(clearColor[i], 0, 1)
	}
	r.encoder.AppendClear(protocol.ClearColorBit|protocol.ClearDepthBit, clearColor)
	r.encoder.Append(protocol.OpEnableDepthTest, 1)
	r.encoder.Append(protocol.OpUseProgram, r.program)
	r.state = FrameRecording
	return nil
}

/**
 * @brief Records every visible scene object in ascending handle order. The
 * camera view is brought up to date once per call.
 */
func (r *RendererSystem) RenderScene() error {
	if r.state != FrameRecording {
		return r.stateError("render scene", FrameRecording)
	}
	r.camera.UpdateViewMatrix()
	viewProjection := r.camera.GetViewProjection()
	eye := r.camera.Position
	light := r.Config.LightDirection

	r.scene.Each(func(obj *SceneObject) bool {
		if !obj.Visible || obj.Geometry == nil {
			return true
		}
		g := obj.Geometry
		cb := r.encoder
		cb.Append(protocol.OpBindBuffer, protocol.TargetArrayBuffer, g.VertexBufferID)
		for i, a := range g.Layout.Attributes {
			cb.Append(protocol.OpVertexAttribPointer, a.Location, protocol.PackAttrib(a.Components, g.Layout.Offset(i)), g.Layout.Stride)
			cb.Append(protocol.OpEnableVertexAttribArray, a.Location)
		}
		cb.Append(protocol.OpBindBuffer, protocol.TargetElementBuffer, g.IndexBufferID)
		cb.AppendUniformMatrix4fv(metadata.UniformMVP, viewProjection.Mul4(obj.ModelMatrix))
		cb.AppendUniformMatrix4fv(metadata.UniformModel, obj.ModelMatrix)
		cb.AppendUniform3f(metadata.UniformLightDirection, light)
		cb.AppendUniform3f(metadata.UniformViewPosition, eye)
		cb.AppendUniform4f(metadata.UniformTint, obj.Tint)
		cb.Append(protocol.OpDrawElements, protocol.ModeTriangles, g.IndexCount, 0)
		return true
	})
	return nil
}

/**
 * @brief Appends the composite pass, if any, and dispatches the frame. A
 * failed dispatch is logged and counted, never returned.
 */
func (r *RendererSystem) EndFrame() error {
	if r.state != FrameRecording {
		return r.stateError("end frame", FrameRecording)
	}
	if r.composite != nil {
		r.composite(r.encoder)
	}
	if dropped := r.encoder.Dropped(); dropped > 0 {
		r.metrics.DroppedCommands += dropped
		core.LogWarn("frame %d: encoder full, dropped %d commands", r.metrics.FramesDispatched, dropped)
		r.encoder.ResetStats()
	}

	// A request keeps remote reports for this frame from counting as stray.
	req, err := r.bridge.Begin()
	if err != nil {
		r.metrics.AbsorbedErrors++
		core.LogError("frame %d not dispatched: %s", r.metrics.FramesDispatched, err.Error())
		r.state = FrameFlushed
		return nil
	}
	reported := r.metrics.AbsorbedErrors
	r.dispatching = true
	err = r.dispatcher.Dispatch(r.encoder.Batch(), r.FramebufferWidth, r.FramebufferHeight)
	r.dispatching = false
	req.Close()

	r.metrics.FramesDispatched++
	if err != nil {
		// The remote may already have reported this failure through the bridge.
		if r.metrics.AbsorbedErrors == reported {
			r.metrics.AbsorbedErrors++
		}
		core.LogError("frame %d dispatch failed: %s", r.metrics.FramesDispatched, err.Error())
	}
	r.state = FrameFlushed
	return nil
}

// Stats returns the frame counters and timing.
func (r *RendererSystem) Stats() FrameStats {
	fps, frameTime := r.metrics.Frame()
	return FrameStats{
		FramesDispatched: r.metrics.FramesDispatched,
		DroppedCommands:  r.metrics.DroppedCommands,
		AbsorbedErrors:   r.metrics.AbsorbedErrors,
		FPS:              fps,
		FrameTimeMS:      frameTime,
	}
}

func (r *RendererSystem) Shutdown() error {
	r.encoder.Reset()
	r.encoder.ResetStats()
	r.state = FrameIdle
	return nil
}
