package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/math"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type ApplicationConfig struct {
	// The application name, used in logs.
	Name string `toml:"name"`
	// Surface width passed along with every dispatch.
	Width uint32 `toml:"width"`
	// Surface height passed along with every dispatch.
	Height   uint32 `toml:"height"`
	LogLevel string `toml:"log_level"`
	// Frames to run before exiting; 0 runs until stopped.
	Frames uint64 `toml:"frames"`
}

type RendererConfig struct {
	// Records per frame. Commands past this are dropped and counted.
	CommandCapacity int `toml:"command_capacity"`
	// Payload bytes per frame.
	PayloadCapacity int `toml:"payload_capacity"`
	// Records per setup dispatch. Running out is fatal.
	SetupCommandCapacity int `toml:"setup_command_capacity"`
	// Payload bytes per setup dispatch; bounds the largest mesh or texture upload.
	SetupPayloadCapacity int        `toml:"setup_payload_capacity"`
	ClearColor           [4]float32 `toml:"clear_color"`
}

type SceneConfig struct {
	MaxObjects  uint32 `toml:"max_objects"`
	MaxTextures uint16 `toml:"max_textures"`
	MaxShaders  uint16 `toml:"max_shaders"`
	MaxCameras  uint16 `toml:"max_cameras"`
}

type CameraConfig struct {
	Left   float32 `toml:"left"`
	Right  float32 `toml:"right"`
	Bottom float32 `toml:"bottom"`
	Top    float32 `toml:"top"`
	Near   float32 `toml:"near"`
	Far    float32 `toml:"far"`
	// Camera position relative to the followed target.
	FollowOffset [3]float32 `toml:"follow_offset"`
}

type LightingConfig struct {
	Direction [3]float32 `toml:"direction"`
}

// Config is the TOML document the engine is started from.
type Config struct {
	Application ApplicationConfig `toml:"application"`
	Renderer    RendererConfig    `toml:"renderer"`
	Scene       SceneConfig       `toml:"scene"`
	Camera      CameraConfig      `toml:"camera"`
	Lighting    LightingConfig    `toml:"lighting"`
}

func Default() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:     "Tether",
			Width:    1280,
			Height:   720,
			LogLevel: "info",
		},
		Renderer: RendererConfig{
			CommandCapacity:      1024,
			PayloadCapacity:      64 * 1024,
			SetupCommandCapacity: 16,
			SetupPayloadCapacity: 4 * 1024 * 1024,
			ClearColor:           [4]float32{0.05, 0.05, 0.1, 1},
		},
		Scene: SceneConfig{
			MaxObjects:  32,
			MaxTextures: 64,
			MaxShaders:  16,
			MaxCameras:  8,
		},
		Camera: CameraConfig{
			Left:         -16,
			Right:        16,
			Bottom:       -9,
			Top:          9,
			Near:         0.1,
			Far:          100,
			FollowOffset: [3]float32{0, 10, 10},
		},
		Lighting: LightingConfig{
			Direction: [3]float32{-0.5, -1, -0.3},
		},
	}
}

// Parse decodes a TOML document on top of the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		core.LogError(err.Error())
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Marshal renders the config back to TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Application.Width == 0 || c.Application.Height == 0 {
		errs = append(errs, fmt.Errorf("application size %dx%d", c.Application.Width, c.Application.Height))
	}
	if c.Renderer.CommandCapacity <= 0 || c.Renderer.SetupCommandCapacity <= 0 {
		errs = append(errs, fmt.Errorf("command capacities must be > 0"))
	}
	if c.Renderer.PayloadCapacity < 0 || c.Renderer.SetupPayloadCapacity < 0 {
		errs = append(errs, fmt.Errorf("payload capacities must be >= 0"))
	}
	if c.Scene.MaxObjects == 0 || c.Scene.MaxTextures == 0 || c.Scene.MaxShaders == 0 || c.Scene.MaxCameras == 0 {
		errs = append(errs, fmt.Errorf("scene limits must be > 0"))
	}
	cam := c.Camera
	if !math.IsFinite(cam.Left, cam.Right, cam.Bottom, cam.Top, cam.Near, cam.Far) ||
		cam.Left == cam.Right || cam.Bottom == cam.Top || cam.Near == cam.Far {
		errs = append(errs, fmt.Errorf("camera bounds l=%g r=%g b=%g t=%g n=%g f=%g", cam.Left, cam.Right, cam.Bottom, cam.Top, cam.Near, cam.Far))
	}
	if mgl32.Vec3(c.Lighting.Direction).Len() == 0 {
		errs = append(errs, fmt.Errorf("light direction is zero"))
	}
	if len(errs) > 0 {
		err := fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (c *Config) ClearColor() mgl32.Vec4 {
	return mgl32.Vec4(c.Renderer.ClearColor)
}

func (c *Config) FollowOffset() mgl32.Vec3 {
	return mgl32.Vec3(c.Camera.FollowOffset)
}

func (c *Config) LightDirection() mgl32.Vec3 {
	return mgl32.Vec3(c.Lighting.Direction).Normalize()
}

func (c *Config) LogLevel() core.LogLevel {
	return core.ParseLogLevel(c.Application.LogLevel)
}
