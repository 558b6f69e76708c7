package protocol

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// RecordWords is the fixed stride of one command on the wire.
	RecordWords = 4
	// HeaderWords precedes the records and holds the command count.
	HeaderWords = 1
)

// Command is one fixed-width record: an opcode and three operands.
type Command struct {
	Opcode   Opcode
	Operand0 uint32
	Operand1 uint32
	Operand2 uint32
}

func (c Command) String() string {
	return fmt.Sprintf("%s(%d, %d, %d)", c.Opcode, c.Operand0, c.Operand1, c.Operand2)
}

// HasPayload reports whether operands 1 and 2 are an (offset, length) pair
// into the batch payload arena.
func (c Command) HasPayload() bool {
	switch c.Opcode {
	case OpClear, OpBufferData, OpUniformMatrix4fv, OpUniform3f, OpUniform4f, OpUploadTexture, OpCreateProgram:
		return true
	}
	return false
}

// Payload resolves the command's payload reference against arena.
func (c Command) Payload(arena []byte) ([]byte, error) {
	if !c.HasPayload() {
		return nil, nil
	}
	off, n := uint64(c.Operand1), uint64(c.Operand2)
	if off+n > uint64(len(arena)) {
		return nil, fmt.Errorf("%w: %s payload [%d:%d] outside arena of %d bytes", ErrMalformedBatch, c.Opcode, off, off+n, len(arena))
	}
	return arena[off : off+n], nil
}

// Floats decodes a payload of little-endian IEEE-754 words.
func Floats(payload []byte) []float32 {
	out := make([]float32, len(payload)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return out
}

// Mat4 decodes a 64 byte column-major matrix payload.
func Mat4(payload []byte) (mgl32.Mat4, error) {
	var m mgl32.Mat4
	if len(payload) != 64 {
		return m, fmt.Errorf("%w: matrix payload is %d bytes", ErrMalformedBatch, len(payload))
	}
	copy(m[:], Floats(payload))
	return m, nil
}

// PackSize packs texture dimensions into one operand.
func PackSize(width, height uint32) uint32 {
	return (width&0xFFFF)<<16 | height&0xFFFF
}

func UnpackSize(v uint32) (width, height uint32) {
	return v >> 16, v & 0xFFFF
}

// PackAttrib packs a vertex attribute's component count and byte offset
// within the interleaved vertex into one operand.
func PackAttrib(components, offset uint32) uint32 {
	return components&0xFF | offset<<8
}

func UnpackAttrib(v uint32) (components, offset uint32) {
	return v & 0xFF, v >> 8
}
