// Package bridge carries results from the remote display engine back to the
// core. The remote reports through two named events, resource_created and
// error, which it fires synchronously while it processes a dispatched batch.
package bridge

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/tether/engine/containers"
	"github.com/spaghettifunk/tether/engine/core"
)

const (
	EventResourceCreated = "resource_created"
	EventError           = "error"
)

const (
	// MaxCallbacks bounds the callback table.
	MaxCallbacks = 16
	// ErrorHistorySize is how many remote error messages are retained.
	ErrorHistorySize = 16
)

// Event is what a handler receives. ID is set for resource_created,
// Message for error.
type Event struct {
	Name    string
	ID      uint32
	Message []byte
}

type Handler func(event Event)

type registeredCallback struct {
	name    string
	handler Handler
}

type Bridge struct {
	mu sync.Mutex

	callbacks     [MaxCallbacks]registeredCallback
	callbackCount int

	inflight *Request
	seq      uint32
	stray    uint64
	errors   *containers.RingQueue[string]
}

func New() *Bridge {
	return &Bridge{
		errors: containers.NewRingQueue[string](ErrorHistorySize),
	}
}

/**
 * Registers a handler for a named event. Returns false for unknown event
 * names, a nil handler, or when the callback table is full.
 */
func (b *Bridge) RegisterCallback(eventName string, handler Handler) bool {
	if handler == nil {
		return false
	}
	if eventName != EventResourceCreated && eventName != EventError {
		core.LogWarn("bridge: refusing callback for unknown event '%s'", eventName)
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.callbackCount == MaxCallbacks {
		core.LogWarn("bridge: callback table full (%d), '%s' not registered", MaxCallbacks, eventName)
		return false
	}
	b.callbacks[b.callbackCount] = registeredCallback{name: eventName, handler: handler}
	b.callbackCount++
	return true
}

func (b *Bridge) handlers(name string) []Handler {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Handler
	for i := 0; i < b.callbackCount; i++ {
		if b.callbacks[i].name == name {
			out = append(out, b.callbacks[i].handler)
		}
	}
	return out
}

// ResourceCreated is called by the remote after it allocated a resource.
func (b *Bridge) ResourceCreated(id uint32) {
	b.mu.Lock()
	req := b.inflight
	if req == nil {
		b.stray++
		b.mu.Unlock()
		core.LogWarn("bridge: resource_created(%d) with no request in flight", id)
	} else {
		if req.reported {
			b.stray++
			core.LogWarn("bridge: request %s already has id %d, ignoring %d", req.ID, req.id, id)
		} else {
			req.id = id
			req.reported = true
		}
		b.mu.Unlock()
	}

	for _, h := range b.handlers(EventResourceCreated) {
		h(Event{Name: EventResourceCreated, ID: id})
	}
}

// Error is called by the remote when processing failed. message is UTF-8.
func (b *Bridge) Error(message []byte) {
	msg := string(message)
	b.mu.Lock()
	b.errors.Push(msg)
	if req := b.inflight; req != nil {
		req.failed = true
		if req.message == "" {
			req.message = msg
		}
	} else {
		b.stray++
	}
	b.mu.Unlock()
	core.LogError("remote error: %s", msg)

	for _, h := range b.handlers(EventError) {
		h(Event{Name: EventError, Message: append([]byte(nil), message...)})
	}
}

// RecentErrors returns the last error messages reported by the remote, oldest first.
func (b *Bridge) RecentErrors() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errors.Items()
}

// Stray returns how many reports arrived without a matching request.
func (b *Bridge) Stray() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stray
}

// InFlight reports whether a request is currently open.
func (b *Bridge) InFlight() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inflight != nil
}

/**
 * Opens the single in-flight resource request. The caller dispatches the
 * creating batch, reads Result, then Closes the request. A second Begin
 * before Close fails with core.ErrRequestInFlight.
 */
func (b *Bridge) Begin() (*Request, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inflight != nil {
		return nil, fmt.Errorf("%w: request %s still open", core.ErrRequestInFlight, b.inflight.ID)
	}
	b.seq++
	req := &Request{
		ID:     uuid.New(),
		Seq:    b.seq,
		bridge: b,
	}
	b.inflight = req
	return req, nil
}
