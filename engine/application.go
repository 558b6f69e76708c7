package engine

import (
	"github.com/spaghettifunk/tether/engine/core"
)

type ApplicationConfig struct {
	// Surface starting width. Overrides the config file when set.
	StartWidth uint32
	// Surface starting height. Overrides the config file when set.
	StartHeight uint32
	// The application name used in logs. Overrides the config file when set.
	Name     string
	LogLevel core.LogLevel
	// Optional TOML config file. It is watched and reloaded while running.
	ConfigPath string
	// Frames to run before Run returns; 0 uses the config file value.
	MaxFrames uint64
}
