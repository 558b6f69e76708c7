package testbed

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tether/engine"
	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/renderer/components"
	"github.com/spaghettifunk/tether/engine/renderer/metadata"
	"github.com/spaghettifunk/tether/engine/systems"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	WorldCamera *components.Camera

	ground  uint32
	rover   uint32
	beacons []uint32

	elapsed float64
	target  mgl32.Vec3
	frames  uint64

	width  uint32
	height uint32
}

// The rover drives a circle of this radius, in world units per second.
const (
	orbitRadius = 6.0
	orbitSpeed  = 0.5
)

func NewTestGame(configPath string) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				StartWidth:  1280,
				StartHeight: 720,
				Name:        "Tether Testbed",
				LogLevel:    core.LogLevelDebug,
				ConfigPath:  configPath,
			},
			State: &gameState{},
		},
	}

	tg.FnBoot = tg.Boot
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Boot() error {
	core.LogInfo("booting testbed...")
	return nil
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.SystemManager == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers")
	}
	state := g.State.(*gameState)
	sm := g.SystemManager

	state.WorldCamera = sm.CameraSystem.GetDefault()

	// 1x1 white texture for untextured surfaces.
	white := image.NewRGBA(image.Rect(0, 0, 1, 1))
	white.Set(0, 0, color.White)
	if _, err := sm.TextureSystem.Upload(metadata.DEFAULT_TEXTURE_NAME, white); err != nil {
		return err
	}

	ground, err := sm.AddMesh("ground", NewCube("ground", mgl32.Vec3{1, 1, 1}))
	if err != nil {
		return err
	}
	if err := sm.SceneSystem.UpdateModelMatrix(ground, mgl32.Vec3{0, -0.5, 0}, mgl32.Vec3{}, mgl32.Vec3{20, 0.2, 20}); err != nil {
		return err
	}
	if err := sm.SceneSystem.SetTint(ground, mgl32.Vec4{0.3, 0.5, 0.3, 1}); err != nil {
		return err
	}
	state.ground = ground

	rover, err := sm.AddMesh("rover", NewCube("rover", mgl32.Vec3{1, 0.6, 2}))
	if err != nil {
		return err
	}
	if err := sm.SceneSystem.SetTint(rover, mgl32.Vec4{0.9, 0.4, 0.1, 1}); err != nil {
		return err
	}
	state.rover = rover

	// Beacons on the orbit; they blink by toggling visibility.
	for i := 0; i < 4; i++ {
		angle := float32(i) * math.Pi / 2
		h, err := sm.AddMesh(fmt.Sprintf("beacon-%d", i), NewCube("beacon", mgl32.Vec3{0.4, 1.5, 0.4}))
		if err != nil {
			return err
		}
		pos := mgl32.Vec3{orbitRadius * float32(math.Cos(float64(angle))), 0.5, orbitRadius * float32(math.Sin(float64(angle)))}
		if err := sm.SceneSystem.UpdateModelMatrix(h, pos, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}); err != nil {
			return err
		}
		state.beacons = append(state.beacons, h)
	}

	core.LogInfo("testbed scene ready: %d/%d objects", sm.SceneSystem.Count(), sm.SceneSystem.Capacity())
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	sm := g.SystemManager
	state.elapsed += deltaTime

	angle := state.elapsed * orbitSpeed
	state.target = mgl32.Vec3{
		float32(orbitRadius * math.Cos(angle)),
		0,
		float32(orbitRadius * math.Sin(angle)),
	}
	// Heading is tangent to the circle.
	heading := mgl32.Vec3{0, float32(-angle), 0}
	if err := sm.SceneSystem.UpdateModelMatrix(state.rover, state.target, heading, mgl32.Vec3{1, 1, 1}); err != nil {
		return err
	}

	blink := int(state.elapsed) % 2
	for i, h := range state.beacons {
		if err := sm.SceneSystem.SetVisibility(h, i%2 == blink); err != nil {
			return err
		}
	}

	state.WorldCamera.FollowTarget(state.target, sm.Config().FollowOffset())
	return nil
}

func (g *TestGame) Render(deltaTime float64) error {
	state := g.State.(*gameState)
	state.frames++
	if state.frames%300 == 0 {
		stats := g.SystemManager.RendererSystem.Stats()
		core.LogInfo("frame %d: %.1f fps, %.2f ms, %d dropped, %d absorbed",
			stats.FramesDispatched, stats.FPS, stats.FrameTimeMS, stats.DroppedCommands, stats.AbsorbedErrors)
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	state.beacons = nil
	state.ground, state.rover = systems.InvalidHandle, systems.InvalidHandle
	return nil
}
