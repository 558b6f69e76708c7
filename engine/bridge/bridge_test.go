package bridge

import (
	"testing"

	"github.com/spaghettifunk/tether/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCallback(t *testing.T) {
	b := New()
	assert.True(t, b.RegisterCallback(EventResourceCreated, func(Event) {}))
	assert.True(t, b.RegisterCallback(EventError, func(Event) {}))
	assert.False(t, b.RegisterCallback("frame_done", func(Event) {}))
	assert.False(t, b.RegisterCallback(EventError, nil))
}

func TestRegisterCallbackTableIsBounded(t *testing.T) {
	b := New()
	for i := 0; i < MaxCallbacks; i++ {
		require.True(t, b.RegisterCallback(EventError, func(Event) {}))
	}
	assert.False(t, b.RegisterCallback(EventError, func(Event) {}))
}

func TestHandlersReceiveEvents(t *testing.T) {
	b := New()
	var ids []uint32
	var messages []string
	b.RegisterCallback(EventResourceCreated, func(e Event) { ids = append(ids, e.ID) })
	b.RegisterCallback(EventError, func(e Event) { messages = append(messages, string(e.Message)) })

	b.ResourceCreated(7)
	b.Error([]byte("out of memory"))

	assert.Equal(t, []uint32{7}, ids)
	assert.Equal(t, []string{"out of memory"}, messages)
	assert.Equal(t, []string{"out of memory"}, b.RecentErrors())
}

func TestRequestResult(t *testing.T) {
	b := New()
	req, err := b.Begin()
	require.NoError(t, err)
	defer req.Close()

	b.ResourceCreated(42)
	id, err := req.Result()
	require.NoError(t, err)
	assert.Equal(t, uint32(42), id)

	// the cell is consumed
	_, err = req.Result()
	assert.ErrorIs(t, err, core.ErrNoResult)
}

func TestRequestErrorBeforeCreated(t *testing.T) {
	b := New()
	req, err := b.Begin()
	require.NoError(t, err)
	defer req.Close()

	b.Error([]byte("shader compile failed"))
	b.ResourceCreated(3)

	id, err := req.Result()
	assert.ErrorIs(t, err, core.ErrResourceCreationFailed)
	assert.Contains(t, err.Error(), "shader compile failed")
	assert.Zero(t, id)
}

func TestRequestZeroID(t *testing.T) {
	b := New()
	req, _ := b.Begin()
	defer req.Close()

	b.ResourceCreated(0)
	_, err := req.Result()
	assert.ErrorIs(t, err, core.ErrResourceCreationFailed)
}

func TestRequestNoReport(t *testing.T) {
	b := New()
	req, _ := b.Begin()
	defer req.Close()

	_, err := req.Result()
	assert.ErrorIs(t, err, core.ErrResourceCreationFailed)
	assert.ErrorIs(t, err, core.ErrNoResult)
}

func TestSingleRequestInFlight(t *testing.T) {
	b := New()
	first, err := b.Begin()
	require.NoError(t, err)
	assert.True(t, b.InFlight())

	_, err = b.Begin()
	assert.ErrorIs(t, err, core.ErrRequestInFlight)

	first.Close()
	first.Close()
	assert.False(t, b.InFlight())

	second, err := b.Begin()
	require.NoError(t, err)
	defer second.Close()
	assert.Greater(t, second.Seq, first.Seq)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestStrayReports(t *testing.T) {
	b := New()
	b.ResourceCreated(9)
	assert.Equal(t, uint64(1), b.Stray())

	req, _ := b.Begin()
	defer req.Close()
	b.ResourceCreated(1)
	b.ResourceCreated(2)
	assert.Equal(t, uint64(2), b.Stray())
	id, err := req.Result()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id)
}

func TestStrayErrorReport(t *testing.T) {
	b := New()
	b.Error([]byte("lost"))
	assert.Equal(t, uint64(1), b.Stray())
	assert.Equal(t, []string{"lost"}, b.RecentErrors())

	req, _ := b.Begin()
	defer req.Close()
	b.Error([]byte("boom"))
	assert.Equal(t, uint64(1), b.Stray())
	assert.ErrorContains(t, req.Err(), "boom")
}

func TestStaleRequestCannotCloseNewOne(t *testing.T) {
	b := New()
	old, _ := b.Begin()
	old.Close()
	cur, _ := b.Begin()
	old.Close()
	assert.True(t, b.InFlight())
	cur.Close()
}

func TestRequestErr(t *testing.T) {
	b := New()
	req, _ := b.Begin()
	defer req.Close()

	assert.NoError(t, req.Err())
	b.Error([]byte("buffer data: nothing bound"))
	assert.ErrorIs(t, req.Err(), core.ErrResourceCreationFailed)
	assert.NoError(t, req.Err())
}
