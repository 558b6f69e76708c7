//go:build js && wasm

// Package wasm dispatches batches to a display engine written for the page
// that hosts the module.
//
// The host must define tetherDispatch(words, payload, width, height), where
// words is a Uint32Array and payload a Uint8Array. While processing a batch
// it reports back, synchronously, through the tetherResourceCreated(id) and
// tetherError(message) functions this package installs on the global object.
package wasm

import (
	"encoding/binary"
	"fmt"
	"syscall/js"

	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/protocol"
	"github.com/spaghettifunk/tether/engine/remote"
)

const (
	HostDispatch          = "tetherDispatch"
	ExportResourceCreated = "tetherResourceCreated"
	ExportError           = "tetherError"
)

type Dispatcher struct {
	dispatch js.Value
	funcs    []js.Func
	scratch  []byte
}

var _ remote.Dispatcher = (*Dispatcher)(nil)

func New(reporter remote.Reporter) (*Dispatcher, error) {
	dispatch := js.Global().Get(HostDispatch)
	if dispatch.Type() != js.TypeFunction {
		err := fmt.Errorf("wasm remote: host does not define %s", HostDispatch)
		core.LogError(err.Error())
		return nil, err
	}

	created := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) < 1 {
			reporter.ResourceCreated(0)
			return nil
		}
		reporter.ResourceCreated(uint32(args[0].Int()))
		return nil
	})
	failed := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		msg := "unknown remote error"
		if len(args) > 0 {
			msg = args[0].String()
		}
		reporter.Error([]byte(msg))
		return nil
	})
	js.Global().Set(ExportResourceCreated, created)
	js.Global().Set(ExportError, failed)

	return &Dispatcher{
		dispatch: dispatch,
		funcs:    []js.Func{created, failed},
	}, nil
}

// Dispatch copies the batch into JS typed arrays and calls the host. The
// host's callbacks run before this returns.
func (d *Dispatcher) Dispatch(batch protocol.Batch, width, height uint32) error {
	d.scratch = d.scratch[:0]
	for _, w := range batch.Words {
		d.scratch = binary.LittleEndian.AppendUint32(d.scratch, w)
	}
	wordBytes := js.Global().Get("Uint8Array").New(len(d.scratch))
	js.CopyBytesToJS(wordBytes, d.scratch)
	words := js.Global().Get("Uint32Array").New(wordBytes.Get("buffer"))

	payload := js.Global().Get("Uint8Array").New(len(batch.Payload))
	js.CopyBytesToJS(payload, batch.Payload)

	result := d.dispatch.Invoke(words, payload, width, height)
	if result.Type() == js.TypeString {
		return fmt.Errorf("wasm remote: %s", result.String())
	}
	return nil
}

// Release removes the exported callbacks from the global object.
func (d *Dispatcher) Release() {
	js.Global().Delete(ExportResourceCreated)
	js.Global().Delete(ExportError)
	for _, f := range d.funcs {
		f.Release()
	}
	d.funcs = nil
}
