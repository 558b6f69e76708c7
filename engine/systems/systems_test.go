package systems

import (
	"testing"

	"github.com/spaghettifunk/tether/engine/bridge"
	"github.com/spaghettifunk/tether/engine/config"
	"github.com/spaghettifunk/tether/engine/remote/loopback"
	"github.com/spaghettifunk/tether/engine/renderer/metadata"
	"github.com/stretchr/testify/require"
)

// triangle is a single position+normal triangle.
func triangle() *metadata.Mesh {
	return &metadata.Mesh{
		Name: "triangle",
		Vertices: []float32{
			0, 0, 0, 0, 0, 1,
			1, 0, 0, 0, 0, 1,
			0, 1, 0, 0, 0, 1,
		},
		Indices: []uint16{0, 1, 2},
	}
}

type harness struct {
	sm     *SystemManager
	remote *loopback.Engine
	bridge *bridge.Bridge
}

func newHarness(t *testing.T, mutate func(cfg *config.Config)) *harness {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())
	b := bridge.New()
	eng := loopback.New(b)
	sm, err := NewSystemManager(cfg, eng, b)
	require.NoError(t, err)
	return &harness{sm: sm, remote: eng, bridge: b}
}

func newInitializedHarness(t *testing.T, mutate func(cfg *config.Config)) *harness {
	t.Helper()
	h := newHarness(t, mutate)
	require.NoError(t, h.sm.Initialize())
	return h
}
