// Package remote defines the boundary between the core and the display
// engine that consumes its command batches.
package remote

import "github.com/spaghettifunk/tether/engine/protocol"

// Dispatcher hands one batch to the remote display engine. The call returns
// only after the remote has processed the whole batch, including any
// callbacks it fired through the Reporter.
type Dispatcher interface {
	Dispatch(batch protocol.Batch, width, height uint32) error
}

// Reporter is the callback surface the remote reports to. *bridge.Bridge
// implements it.
type Reporter interface {
	ResourceCreated(id uint32)
	Error(message []byte)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(batch protocol.Batch, width, height uint32) error

func (f DispatcherFunc) Dispatch(batch protocol.Batch, width, height uint32) error {
	return f(batch, width, height)
}
