// Package loopback is an in-process display engine. It decodes batches the
// way a real remote would, keeps the resulting resource state in memory and
// reports back synchronously, which makes it the reference consumer of the
// protocol for tests and for running the engine without a host.
package loopback

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/protocol"
	"github.com/spaghettifunk/tether/engine/remote"
	"github.com/spaghettifunk/tether/engine/renderer/metadata"
	"golang.org/x/exp/slices"
)

type buffer struct {
	target uint32
	data   []byte
}

type texture struct {
	width, height uint32
	pixels        []byte
}

type attrib struct {
	components uint32
	offset     uint32
	stride     uint32
	enabled    bool
}

// Draw is one draw call observed by the engine.
type Draw struct {
	Opcode        protocol.Opcode
	Mode          uint32
	Count         uint32
	Program       uint32
	VertexBuffer  uint32
	IndexBuffer   uint32
	MVP           mgl32.Mat4
	Model         mgl32.Mat4
	LightDir      mgl32.Vec3
	ViewPosition  mgl32.Vec3
	Tint          mgl32.Vec4
	DepthTest     bool
	EnabledAttrib []uint32
}

// Frame is what the engine saw in one dispatch.
type Frame struct {
	Width, Height uint32
	Commands      []protocol.Command
	ClearColor    mgl32.Vec4
	Draws         []Draw
	Errors        []string
}

type fault struct {
	op      protocol.Opcode
	message string
	zeroID  bool
	silent  bool
}

type Engine struct {
	reporter remote.Reporter

	nextID   uint32
	buffers  map[uint32]*buffer
	textures map[uint32]*texture
	programs map[uint32]string

	bound     map[uint32]uint32
	program   uint32
	depthTest bool
	attribs   map[uint32]*attrib
	uniforms  map[uint32][]float32

	faults     []fault
	dispatches int
	last       Frame
}

var _ remote.Dispatcher = (*Engine)(nil)

func New(reporter remote.Reporter) *Engine {
	return &Engine{
		reporter: reporter,
		buffers:  make(map[uint32]*buffer),
		textures: make(map[uint32]*texture),
		programs: make(map[uint32]string),
		bound:    make(map[uint32]uint32),
		attribs:  make(map[uint32]*attrib),
		uniforms: make(map[uint32][]float32),
	}
}

// FailNext makes the next command with opcode op report message through the
// error callback instead of executing.
func (e *Engine) FailNext(op protocol.Opcode, message string) {
	e.faults = append(e.faults, fault{op: op, message: message})
}

// ReturnZeroNext makes the next resource creation of op report id 0.
func (e *Engine) ReturnZeroNext(op protocol.Opcode) {
	e.faults = append(e.faults, fault{op: op, zeroID: true})
}

// SwallowNext makes the next resource creation of op report nothing at all.
func (e *Engine) SwallowNext(op protocol.Opcode) {
	e.faults = append(e.faults, fault{op: op, silent: true})
}

func (e *Engine) takeFault(op protocol.Opcode, failing bool) (fault, bool) {
	for i, f := range e.faults {
		if f.op == op && (f.message != "") == failing {
			e.faults = append(e.faults[:i], e.faults[i+1:]...)
			return f, true
		}
	}
	return fault{}, false
}

// Dispatches returns how many batches were processed.
func (e *Engine) Dispatches() int { return e.dispatches }

// LastFrame returns what the most recent dispatch contained.
func (e *Engine) LastFrame() Frame { return e.last }

func (e *Engine) BufferData(id uint32) ([]byte, bool) {
	b, ok := e.buffers[id]
	if !ok {
		return nil, false
	}
	return b.data, true
}

func (e *Engine) Texture(id uint32) (width, height uint32, pixels []byte, ok bool) {
	t, ok := e.textures[id]
	if !ok {
		return 0, 0, nil, false
	}
	return t.width, t.height, t.pixels, true
}

func (e *Engine) Program(id uint32) (string, bool) {
	src, ok := e.programs[id]
	return src, ok
}

func (e *Engine) Dispatch(batch protocol.Batch, width, height uint32) error {
	cmds, err := protocol.Decode(batch.Words)
	if err != nil {
		e.reporter.Error([]byte(err.Error()))
		return err
	}
	e.dispatches++
	e.last = Frame{Width: width, Height: height, Commands: cmds}
	for _, c := range cmds {
		if err := e.execute(c, batch.Payload); err != nil {
			e.last.Errors = append(e.last.Errors, err.Error())
			e.reporter.Error([]byte(err.Error()))
		}
	}
	return nil
}

func (e *Engine) allocate() uint32 {
	e.nextID++
	return e.nextID
}

// created reports a new resource, honoring any injected fault.
func (e *Engine) created(op protocol.Opcode, id uint32) error {
	if f, ok := e.takeFault(op, false); ok {
		if f.zeroID {
			e.reporter.ResourceCreated(0)
		}
		return nil
	}
	e.reporter.ResourceCreated(id)
	return nil
}

func (e *Engine) execute(c protocol.Command, arena []byte) error {
	if f, ok := e.takeFault(c.Opcode, true); ok {
		return fmt.Errorf("%s: %s", c.Opcode, f.message)
	}
	payload, err := c.Payload(arena)
	if err != nil {
		return err
	}

	switch c.Opcode {
	case protocol.OpClear:
		if len(payload) != 16 {
			return fmt.Errorf("clear: color payload is %d bytes", len(payload))
		}
		copy(e.last.ClearColor[:], protocol.Floats(payload))

	case protocol.OpCreateBuffer:
		return e.createBuffer(c)

	case protocol.OpBindBuffer:
		if c.Operand1 != 0 {
			if _, ok := e.buffers[c.Operand1]; !ok {
				return fmt.Errorf("bind buffer: unknown buffer %d", c.Operand1)
			}
		}
		e.bound[c.Operand0] = c.Operand1

	case protocol.OpBufferData:
		b, ok := e.buffers[e.bound[c.Operand0]]
		if !ok {
			return fmt.Errorf("buffer data: nothing bound to target 0x%x", c.Operand0)
		}
		b.data = append(b.data[:0], payload...)

	case protocol.OpVertexAttribPointer:
		a := e.attrib(c.Operand0)
		a.components, a.offset = protocol.UnpackAttrib(c.Operand1)
		if a.components == 0 || a.components > 4 {
			return fmt.Errorf("vertex attrib pointer: %d components at location %d", a.components, c.Operand0)
		}
		a.stride = c.Operand2

	case protocol.OpEnableVertexAttribArray:
		e.attrib(c.Operand0).enabled = true

	case protocol.OpDrawElements:
		return e.drawElements(c)

	case protocol.OpUniformMatrix4fv, protocol.OpUniform3f, protocol.OpUniform4f:
		if e.program == 0 {
			return fmt.Errorf("%s: no program in use", c.Opcode)
		}
		e.uniforms[c.Operand0] = protocol.Floats(payload)

	case protocol.OpEnableDepthTest:
		e.depthTest = c.Operand0 != 0

	case protocol.OpUploadTexture:
		w, h := protocol.UnpackSize(c.Operand0)
		if w == 0 || h == 0 || uint64(len(payload)) != uint64(w)*uint64(h)*4 {
			return fmt.Errorf("upload texture: %dx%d does not match %d bytes", w, h, len(payload))
		}
		id := e.allocate()
		e.textures[id] = &texture{width: w, height: h, pixels: append([]byte(nil), payload...)}
		return e.created(c.Opcode, id)

	case protocol.OpDrawArrays:
		if e.program == 0 {
			return fmt.Errorf("draw arrays: no program in use")
		}
		e.last.Draws = append(e.last.Draws, e.snapshot(c.Opcode, c.Operand0, c.Operand2))

	case protocol.OpCreateProgram:
		vsLen := uint64(c.Operand0)
		if vsLen == 0 || vsLen >= uint64(len(payload)) {
			return fmt.Errorf("create program: empty shader stage")
		}
		id := e.allocate()
		e.programs[id] = string(payload)
		return e.created(c.Opcode, id)

	case protocol.OpUseProgram:
		if _, ok := e.programs[c.Operand0]; !ok {
			return fmt.Errorf("use program: unknown program %d", c.Operand0)
		}
		e.program = c.Operand0
	}
	return nil
}

func (e *Engine) createBuffer(c protocol.Command) error {
	id := e.allocate()
	e.buffers[id] = &buffer{target: c.Operand0}
	return e.created(c.Opcode, id)
}

func (e *Engine) attrib(location uint32) *attrib {
	a, ok := e.attribs[location]
	if !ok {
		a = &attrib{}
		e.attribs[location] = a
	}
	return a
}

func (e *Engine) drawElements(c protocol.Command) error {
	if e.program == 0 {
		return fmt.Errorf("draw elements: no program in use")
	}
	ib, ok := e.buffers[e.bound[protocol.TargetElementBuffer]]
	if !ok {
		return fmt.Errorf("draw elements: no element buffer bound")
	}
	if uint64(c.Operand2)+uint64(c.Operand1)*2 > uint64(len(ib.data)) {
		return fmt.Errorf("draw elements: %d indices at offset %d exceed %d bytes", c.Operand1, c.Operand2, len(ib.data))
	}
	if _, ok := e.buffers[e.bound[protocol.TargetArrayBuffer]]; !ok {
		return fmt.Errorf("draw elements: no vertex buffer bound")
	}
	e.last.Draws = append(e.last.Draws, e.snapshot(c.Opcode, c.Operand0, c.Operand1))
	return nil
}

func (e *Engine) snapshot(op protocol.Opcode, mode, count uint32) Draw {
	d := Draw{
		Opcode:       op,
		Mode:         mode,
		Count:        count,
		Program:      e.program,
		VertexBuffer: e.bound[protocol.TargetArrayBuffer],
		IndexBuffer:  e.bound[protocol.TargetElementBuffer],
		DepthTest:    e.depthTest,
	}
	copy(d.MVP[:], e.uniforms[metadata.UniformMVP])
	copy(d.Model[:], e.uniforms[metadata.UniformModel])
	copy(d.LightDir[:], e.uniforms[metadata.UniformLightDirection])
	copy(d.ViewPosition[:], e.uniforms[metadata.UniformViewPosition])
	copy(d.Tint[:], e.uniforms[metadata.UniformTint])
	for loc, a := range e.attribs {
		if a.enabled {
			d.EnabledAttrib = append(d.EnabledAttrib, loc)
		}
	}
	slices.Sort(d.EnabledAttrib)
	core.LogDebug("loopback: %s mode=%d count=%d", op, mode, count)
	return d
}
