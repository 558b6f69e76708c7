//go:build !js

package main

import (
	"github.com/spaghettifunk/tether/engine/remote"
	"github.com/spaghettifunk/tether/engine/remote/loopback"
)

// newRemote runs the display engine in process.
func newRemote(reporter remote.Reporter) (remote.Dispatcher, error) {
	return loopback.New(reporter), nil
}
