package protocol

import "fmt"

// ProtocolVersion identifies the opcode table below. Values are append-only:
// an opcode is never renumbered, so an older remote can reject what it does
// not know instead of misreading it.
const ProtocolVersion uint32 = 2

// Opcode discriminates a command record on the wire.
type Opcode uint32

const (
	OpInvalid Opcode = iota
	// version 1
	OpClear
	OpCreateBuffer
	OpBindBuffer
	OpBufferData
	OpVertexAttribPointer
	OpEnableVertexAttribArray
	OpDrawElements
	OpUniformMatrix4fv
	OpUniform3f
	OpUniform4f
	OpEnableDepthTest
	OpUploadTexture
	OpDrawArrays
	// version 2
	OpCreateProgram
	OpUseProgram

	opcodeCount
)

var opcodeNames = [...]string{
	OpInvalid:                 "Invalid",
	OpClear:                   "Clear",
	OpCreateBuffer:            "CreateBuffer",
	OpBindBuffer:              "BindBuffer",
	OpBufferData:              "BufferData",
	OpVertexAttribPointer:     "VertexAttribPointer",
	OpEnableVertexAttribArray: "EnableVertexAttribArray",
	OpDrawElements:            "DrawElements",
	OpUniformMatrix4fv:        "UniformMatrix4fv",
	OpUniform3f:               "Uniform3f",
	OpUniform4f:               "Uniform4f",
	OpEnableDepthTest:         "EnableDepthTest",
	OpUploadTexture:           "UploadTexture",
	OpDrawArrays:              "DrawArrays",
	OpCreateProgram:           "CreateProgram",
	OpUseProgram:              "UseProgram",
}

func (o Opcode) String() string {
	if o < opcodeCount {
		return opcodeNames[o]
	}
	return fmt.Sprintf("Opcode(%d)", uint32(o))
}

// Valid reports whether o is a known opcode of the current version.
func (o Opcode) Valid() bool {
	return o > OpInvalid && o < opcodeCount
}

// Clear mask bits for OpClear.
const (
	ClearColorBit   uint32 = 0x4000
	ClearDepthBit   uint32 = 0x0100
	ClearStencilBit uint32 = 0x0400
)

// Buffer targets for OpCreateBuffer, OpBindBuffer and OpBufferData.
const (
	TargetArrayBuffer   uint32 = 0x8892
	TargetElementBuffer uint32 = 0x8893
)

// Primitive modes for OpDrawElements and OpDrawArrays.
const (
	ModeLines     uint32 = 0x0001
	ModeTriangles uint32 = 0x0004
)
