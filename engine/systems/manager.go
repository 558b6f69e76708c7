package systems

import (
	"fmt"

	"github.com/spaghettifunk/tether/engine/bridge"
	"github.com/spaghettifunk/tether/engine/config"
	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/remote"
	"github.com/spaghettifunk/tether/engine/renderer/metadata"
)

type SystemManager struct {
	Bridge  *bridge.Bridge
	Metrics *core.Metrics

	ResourceSystem *ResourceSystem
	GeometrySystem *GeometrySystem
	TextureSystem  *TextureSystem
	ShaderSystem   *ShaderSystem
	CameraSystem   *CameraSystem
	SceneSystem    *SceneSystem
	RendererSystem *RendererSystem

	config *config.Config
}

func NewSystemManager(cfg *config.Config, d remote.Dispatcher, b *bridge.Bridge) (*SystemManager, error) {
	metrics := core.NewMetrics()

	rs, err := NewResourceSystem(&ResourceSystemConfig{
		CommandCapacity: cfg.Renderer.SetupCommandCapacity,
		PayloadCapacity: cfg.Renderer.SetupPayloadCapacity,
	}, d, b)
	if err != nil {
		return nil, err
	}
	gs, err := NewGeometrySystem(rs)
	if err != nil {
		return nil, err
	}
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: uint32(cfg.Scene.MaxTextures),
	}, rs)
	if err != nil {
		return nil, err
	}
	ssys, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: cfg.Scene.MaxShaders,
	}, rs)
	if err != nil {
		return nil, err
	}
	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: cfg.Scene.MaxCameras,
	})
	if err != nil {
		return nil, err
	}
	scene, err := NewSceneSystem(&SceneSystemConfig{
		MaxObjectCount: cfg.Scene.MaxObjects,
	})
	if err != nil {
		return nil, err
	}
	rend, err := NewRendererSystem(&RendererSystemConfig{
		CommandCapacity: cfg.Renderer.CommandCapacity,
		PayloadCapacity: cfg.Renderer.PayloadCapacity,
		LightDirection:  cfg.LightDirection(),
	}, d, b, scene, cs.GetDefault(), metrics)
	if err != nil {
		return nil, err
	}

	return &SystemManager{
		Bridge:         b,
		Metrics:        metrics,
		ResourceSystem: rs,
		GeometrySystem: gs,
		TextureSystem:  ts,
		ShaderSystem:   ssys,
		CameraSystem:   cs,
		SceneSystem:    scene,
		RendererSystem: rend,
		config:         cfg,
	}, nil
}

/**
 * @brief Prepares the remote for drawing: sets the surface size, creates the
 * built-in world program and configures the default camera. Any failure here
 * must abort startup.
 */
func (sm *SystemManager) Initialize() error {
	app := sm.config.Application
	sm.OnResize(app.Width, app.Height)

	shader, err := sm.ShaderSystem.Create(BuiltinWorldShader)
	if err != nil {
		return err
	}
	sm.RendererSystem.SetProgram(shader.ID)

	cam := sm.config.Camera
	if err := sm.CameraSystem.GetDefault().SetOrthographicProjection(cam.Left, cam.Right, cam.Bottom, cam.Top, cam.Near, cam.Far); err != nil {
		return err
	}
	core.LogInfo("systems initialized: program %d, %d scene slots", shader.ID, sm.SceneSystem.Capacity())
	return nil
}

/**
 * @brief Uploads a mesh and registers it in the scene.
 *
 * @return The scene handle of the new object.
 */
func (sm *SystemManager) AddMesh(name string, mesh metadata.MeshData) (uint32, error) {
	// Checked up front so a full scene does not leak remote buffers.
	if sm.SceneSystem.Full() {
		err := fmt.Errorf("add mesh '%s': %w: scene holds %d objects", name, core.ErrCapacityExceeded, sm.SceneSystem.Capacity())
		core.LogError(err.Error())
		return InvalidHandle, err
	}
	geometry, err := sm.GeometrySystem.Upload(name, mesh)
	if err != nil {
		return InvalidHandle, err
	}
	return sm.SceneSystem.AddMesh(geometry)
}

func (sm *SystemManager) OnResize(width, height uint32) {
	sm.ResourceSystem.SetViewport(width, height)
	sm.RendererSystem.OnResize(width, height)
}

// ApplyConfig applies the settings that can change while running.
func (sm *SystemManager) ApplyConfig(cfg *config.Config) {
	sm.config = cfg
	sm.RendererSystem.SetLightDirection(cfg.LightDirection())
	core.SetLogLevel(cfg.LogLevel())
	cam := cfg.Camera
	if err := sm.CameraSystem.GetDefault().SetOrthographicProjection(cam.Left, cam.Right, cam.Bottom, cam.Top, cam.Near, cam.Far); err != nil {
		core.LogWarn("keeping previous projection: %s", err.Error())
	}
}

func (sm *SystemManager) Config() *config.Config {
	return sm.config
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.RendererSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.SceneSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.GeometrySystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.ShaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.TextureSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.ResourceSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.CameraSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
