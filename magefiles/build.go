//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the native demo driven by the in-process loopback remote.
func (Build) Engine() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/tether", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Builds the demo for a browser host; the page provides the display engine.
func (Build) Wasm() error {
	_, err := executeCmd("go",
		withArgs("build", "-o", "bin/tether.wasm", "."),
		withEnv("GOOS=js", "GOARCH=wasm"),
		withStream())
	return err
}
