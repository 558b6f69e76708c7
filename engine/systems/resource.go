package systems

import (
	"fmt"

	"github.com/spaghettifunk/tether/engine/bridge"
	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/protocol"
	"github.com/spaghettifunk/tether/engine/remote"
)

/** @brief The configuration for the resource system */
type ResourceSystemConfig struct {
	/** @brief Records available to a single setup dispatch. */
	CommandCapacity int
	/** @brief Payload bytes available to a single setup dispatch; bounds the largest upload. */
	PayloadCapacity int
}

/**
 * @brief The setup-time channel to the remote. Every resource-creating
 * dispatch goes through here, one at a time: open the bridge request,
 * record, dispatch, consume the result, close. Unlike per-frame recording,
 * a full encoder here is fatal.
 */
type ResourceSystem struct {
	Config     *ResourceSystemConfig
	encoder    *protocol.CommandBuffer
	dispatcher remote.Dispatcher
	bridge     *bridge.Bridge
	width      uint32
	height     uint32
}

func NewResourceSystem(config *ResourceSystemConfig, d remote.Dispatcher, b *bridge.Bridge) (*ResourceSystem, error) {
	if config.CommandCapacity <= 0 {
		err := fmt.Errorf("func NewResourceSystem - config.CommandCapacity must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if d == nil || b == nil {
		err := fmt.Errorf("func NewResourceSystem - dispatcher and bridge are required")
		core.LogError(err.Error())
		return nil, err
	}
	return &ResourceSystem{
		Config:     config,
		encoder:    protocol.NewCommandBuffer(config.CommandCapacity, config.PayloadCapacity),
		dispatcher: d,
		bridge:     b,
	}, nil
}

// SetViewport records the surface size passed along with setup dispatches.
func (rs *ResourceSystem) SetViewport(width, height uint32) {
	rs.width, rs.height = width, height
}

func (rs *ResourceSystem) dispatch(what string, record func(cb *protocol.CommandBuffer)) (*bridge.Request, error) {
	req, err := rs.bridge.Begin()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	rs.encoder.Reset()
	record(rs.encoder)
	if rs.encoder.Overflowed() {
		req.Close()
		err := fmt.Errorf("%s: %w: setup batch needs more than %d records or %d payload bytes",
			what, core.ErrCapacityExceeded, rs.encoder.Capacity(), rs.encoder.PayloadCapacity())
		core.LogError(err.Error())
		return nil, err
	}

	if err := rs.dispatcher.Dispatch(rs.encoder.Batch(), rs.width, rs.height); err != nil {
		req.Close()
		err = fmt.Errorf("%s: %w: %w", what, core.ErrResourceCreationFailed, err)
		core.LogError(err.Error())
		return nil, err
	}
	return req, nil
}

/**
 * @brief Dispatches a batch that must make the remote report exactly one new
 * resource id, and returns it.
 */
func (rs *ResourceSystem) Create(what string, record func(cb *protocol.CommandBuffer)) (uint32, error) {
	req, err := rs.dispatch(what, record)
	if err != nil {
		return 0, err
	}
	defer req.Close()

	id, err := req.Result()
	if err != nil {
		err = fmt.Errorf("%s (request %d): %w", what, req.Seq, err)
		core.LogError(err.Error())
		return 0, err
	}
	core.LogDebug("%s created remote id %d", what, id)
	return id, nil
}

/**
 * @brief Dispatches a setup batch that creates nothing and fails if the
 * remote fired its error callback while processing it.
 */
func (rs *ResourceSystem) Flush(what string, record func(cb *protocol.CommandBuffer)) error {
	req, err := rs.dispatch(what, record)
	if err != nil {
		return err
	}
	defer req.Close()

	if err := req.Err(); err != nil {
		err = fmt.Errorf("%s (request %d): %w", what, req.Seq, err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (rs *ResourceSystem) Shutdown() error {
	rs.encoder.Reset()
	return nil
}
