package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/tether/engine/bridge"
	"github.com/spaghettifunk/tether/engine/config"
	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/remote"
	"github.com/spaghettifunk/tether/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// RemoteFactory builds the dispatcher for the display engine. The reporter
// is what the remote must call back into.
type RemoteFactory func(reporter remote.Reporter) (remote.Dispatcher, error)

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     atomic.Bool
	config        *config.Config
	watcher       *config.Watcher
	bridge        *bridge.Bridge
	dispatcher    remote.Dispatcher
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	lastTime      float64
}

func New(g *Game, newRemote RemoteFactory) (*Engine, error) {
	app := g.ApplicationConfig
	cfg := config.Default()
	if app.ConfigPath != "" {
		loaded, err := config.Load(app.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if app.Name != "" {
		cfg.Application.Name = app.Name
	}
	if app.StartWidth != 0 && app.StartHeight != 0 {
		cfg.Application.Width, cfg.Application.Height = app.StartWidth, app.StartHeight
	}
	if app.MaxFrames != 0 {
		cfg.Application.Frames = app.MaxFrames
	}
	core.SetLogLevel(app.LogLevel)
	if cfg.Application.LogLevel != "" {
		core.SetLogLevel(cfg.LogLevel())
	}

	if data, err := cfg.Marshal(); err == nil {
		core.LogDebug("effective configuration:\n%s", string(data))
	}

	b := bridge.New()
	d, err := newRemote(b)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	sm, err := systems.NewSystemManager(cfg, d, b)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	g.SystemManager = sm

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		config:        cfg,
		bridge:        b,
		dispatcher:    d,
		systemManager: sm,
		clock:         core.NewClock(),
		width:         cfg.Application.Width,
		height:        cfg.Application.Height,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageBooting
	if e.gameInstance.FnBoot != nil {
		if err := e.gameInstance.FnBoot(); err != nil {
			core.LogError("game failed to boot: %s", err.Error())
			return err
		}
	}
	e.currentStage = EngineStageBootComplete

	e.currentStage = EngineStageInitializing
	if err := e.systemManager.Initialize(); err != nil {
		core.LogError("failed to initialize the systems: %s", err.Error())
		return err
	}

	if path := e.gameInstance.ApplicationConfig.ConfigPath; path != "" {
		w, err := config.NewWatcher(path)
		if err != nil {
			// Not fatal: the engine runs on the config it started with.
			core.LogWarn("config hot reload disabled: %s", err.Error())
		} else {
			e.watcher = w
		}
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			core.LogError("game failed to initialize: %s", err.Error())
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized (%dx%d)", e.config.Application.Name, e.width, e.height)
	return nil
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine not initialized")
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var targetFrameSeconds float64 = 1.0 / 60.0
	var frames uint64 = 0
	metrics := e.systemManager.Metrics
	renderer := e.systemManager.RendererSystem

	for e.isRunning.Load() {
		e.applyConfigUpdates()

		// Update clock and get delta time.
		e.clock.Update()
		var currentTime float64 = e.clock.Elapsed()
		var delta float64 = (currentTime - e.lastTime)
		frameStart := time.Now()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("Game update failed, shutting down: %s", err.Error())
				e.isRunning.Store(false)
				return err
			}
		}

		// Frame-state errors are programming errors; everything the remote
		// reports is absorbed by the renderer.
		if err := renderer.BeginFrame(e.config.ClearColor()); err != nil {
			return err
		}
		if err := renderer.RenderScene(); err != nil {
			return err
		}
		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(delta); err != nil {
				core.LogError("Game render failed, shutting down: %s", err.Error())
				e.isRunning.Store(false)
				return err
			}
		}
		if err := renderer.EndFrame(); err != nil {
			return err
		}

		// Figure out how long the frame took and, if below the target, give
		// the rest back.
		frameElapsed := time.Since(frameStart).Seconds()
		metrics.Update(delta)
		if remaining := targetFrameSeconds - frameElapsed; remaining > 0 && e.config.Application.Frames == 0 {
			time.Sleep(time.Duration(remaining * float64(time.Second)))
		}

		e.lastTime = currentTime
		frames++
		if limit := e.config.Application.Frames; limit > 0 && frames >= limit {
			e.isRunning.Store(false)
		}
	}

	stats := renderer.Stats()
	core.LogInfo("stopped after %d frames (%d dropped commands, %d absorbed errors)",
		stats.FramesDispatched, stats.DroppedCommands, stats.AbsorbedErrors)
	return nil
}

// Stop asks Run to return after the current frame. Safe to call from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

func (e *Engine) applyConfigUpdates() {
	if e.watcher == nil {
		return
	}
	select {
	case cfg := <-e.watcher.Updates():
		// Sizes and capacities are fixed at startup.
		cfg.Application = e.config.Application
		cfg.Renderer.CommandCapacity = e.config.Renderer.CommandCapacity
		cfg.Renderer.PayloadCapacity = e.config.Renderer.PayloadCapacity
		cfg.Renderer.SetupCommandCapacity = e.config.Renderer.SetupCommandCapacity
		cfg.Renderer.SetupPayloadCapacity = e.config.Renderer.SetupPayloadCapacity
		cfg.Scene = e.config.Scene
		e.config = cfg
		e.systemManager.ApplyConfig(cfg)
	case err := <-e.watcher.Errors():
		core.LogWarn("config reload failed, keeping current config: %s", err.Error())
	default:
	}
}

// OnResize propagates a new surface size to the systems and the game.
func (e *Engine) OnResize(width, height uint32) error {
	if width == e.width && height == e.height {
		return nil
	}
	if width == 0 || height == 0 {
		core.LogInfo("surface minimized, keeping %dx%d", e.width, e.height)
		return nil
	}
	e.width, e.height = width, height
	e.systemManager.OnResize(width, height)
	if e.gameInstance.FnOnResize != nil {
		return e.gameInstance.FnOnResize(width, height)
	}
	return nil
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.isRunning.Store(false)
	e.clock.Stop()
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			return err
		}
	}
	if err := e.systemManager.Shutdown(); err != nil {
		return err
	}
	e.currentStage = EngineStageUninitialized
	return nil
}

// GetFramebufferSize returns the width and height (in this order)
// of the application surface
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Config returns the configuration currently in effect.
func (e *Engine) Config() *config.Config {
	return e.config
}
