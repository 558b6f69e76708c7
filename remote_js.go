//go:build js && wasm

package main

import (
	"github.com/spaghettifunk/tether/engine/remote"
	"github.com/spaghettifunk/tether/engine/remote/wasm"
)

// newRemote hands batches to the page hosting the module.
func newRemote(reporter remote.Reporter) (remote.Dispatcher, error) {
	return wasm.New(reporter)
}
