package testbed

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tether/engine"
	"github.com/spaghettifunk/tether/engine/remote"
	"github.com/spaghettifunk/tether/engine/remote/loopback"
	"github.com/spaghettifunk/tether/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubeMesh(t *testing.T) {
	mesh := NewCube("unit", mgl32.Vec3{2, 2, 2})
	assert.Len(t, mesh.Vertices, 24*6)
	assert.Len(t, mesh.Indices, 36)
	for i := 0; i < len(mesh.Vertices); i += 6 {
		for _, c := range mesh.Vertices[i : i+3] {
			assert.InDelta(t, 1, float64(c*c), 1e-6)
		}
	}
	for _, idx := range mesh.Indices {
		assert.Less(t, idx, uint16(24))
	}
}

func TestTestbedRuns(t *testing.T) {
	tg := NewTestGame("")
	tg.ApplicationConfig.MaxFrames = 5

	var remotes []*loopback.Engine
	e, err := engine.New(tg.Game, func(reporter remote.Reporter) (remote.Dispatcher, error) {
		r := loopback.New(reporter)
		remotes = append(remotes, r)
		return r, nil
	})
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())

	frame := remotes[0].LastFrame()
	assert.Empty(t, frame.Errors)
	// Ground, rover and the two beacons visible this second.
	assert.Len(t, frame.Draws, 4)

	_, ok := tg.SystemManager.TextureSystem.Get(metadata.DEFAULT_TEXTURE_NAME)
	assert.True(t, ok)

	state := tg.State.(*gameState)
	assert.Equal(t, state.target.Add(tg.SystemManager.Config().FollowOffset()), state.WorldCamera.Position)
	require.NoError(t, e.Shutdown())
}
