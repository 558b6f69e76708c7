package bridge

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/tether/engine/core"
)

// Request is the result cell of one resource-creating dispatch.
type Request struct {
	// ID tags the request in logs.
	ID uuid.UUID
	// Seq increases with every request opened on the bridge.
	Seq uint32

	bridge   *Bridge
	id       uint32
	reported bool
	failed   bool
	message  string
	closed   bool
}

/**
 * Consumes the reported outcome and clears the cell. An error callback wins
 * over any reported id. No report at all and id 0 are failures too.
 */
func (r *Request) Result() (uint32, error) {
	b := r.bridge
	b.mu.Lock()
	id, reported, failed, message := r.id, r.reported, r.failed, r.message
	r.id, r.reported, r.failed, r.message = 0, false, false, ""
	b.mu.Unlock()

	switch {
	case failed:
		return 0, fmt.Errorf("%w: %s", core.ErrResourceCreationFailed, message)
	case !reported:
		return 0, fmt.Errorf("%w: request %s: %w", core.ErrResourceCreationFailed, r.ID, core.ErrNoResult)
	case id == 0:
		return 0, fmt.Errorf("%w: remote returned id 0", core.ErrResourceCreationFailed)
	}
	return id, nil
}

// Close releases the bridge for the next request. Safe to call twice.
func (r *Request) Close() {
	b := r.bridge
	b.mu.Lock()
	defer b.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if b.inflight == r {
		b.inflight = nil
	}
}

// Err consumes the outcome of a dispatch that creates nothing and only needs
// to know whether the remote complained.
func (r *Request) Err() error {
	b := r.bridge
	b.mu.Lock()
	failed, message := r.failed, r.message
	r.id, r.reported, r.failed, r.message = 0, false, false, ""
	b.mu.Unlock()

	if failed {
		return fmt.Errorf("%w: %s", core.ErrResourceCreationFailed, message)
	}
	return nil
}
