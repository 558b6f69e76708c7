package protocol

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Batch is what crosses the boundary on a dispatch: the serialized command
// words and the payload arena the records point into.
type Batch struct {
	Words   []uint32
	Payload []byte
}

// Count returns the number of records announced by the header word.
func (b Batch) Count() uint32 {
	if len(b.Words) == 0 {
		return 0
	}
	return b.Words[0]
}

// CommandBuffer encodes commands into a fixed-capacity word stream. Storage is
// allocated once; Reset rewinds it so the same memory is reused every frame.
type CommandBuffer struct {
	words    []uint32
	payload  []byte
	capacity int
	count    int

	// drops since the last Reset
	overflow uint64
	// drops since creation or the last ResetStats
	dropped uint64
}

// NewCommandBuffer creates an encoder holding up to capacity records and
// payloadCapacity bytes of inline payload.
func NewCommandBuffer(capacity, payloadCapacity int) *CommandBuffer {
	if capacity < 0 {
		capacity = 0
	}
	if payloadCapacity < 0 {
		payloadCapacity = 0
	}
	return &CommandBuffer{
		words:    make([]uint32, HeaderWords+RecordWords*capacity),
		payload:  make([]byte, 0, payloadCapacity),
		capacity: capacity,
	}
}

func (b *CommandBuffer) Capacity() int        { return b.capacity }
func (b *CommandBuffer) Count() int           { return b.count }
func (b *CommandBuffer) PayloadCapacity() int { return cap(b.payload) }
func (b *CommandBuffer) PayloadLen() int      { return len(b.payload) }

// Dropped returns how many commands were discarded since the last ResetStats.
func (b *CommandBuffer) Dropped() uint64 { return b.dropped }

// Overflowed reports whether anything was dropped since the last Reset.
func (b *CommandBuffer) Overflowed() bool { return b.overflow > 0 }

func (b *CommandBuffer) ResetStats() { b.dropped = 0 }

// Reset empties the buffer while keeping its backing storage.
func (b *CommandBuffer) Reset() {
	b.count = 0
	b.payload = b.payload[:0]
	b.overflow = 0
}

func (b *CommandBuffer) drop() bool {
	b.overflow++
	b.dropped++
	return false
}

// Append writes one record. When the buffer is full, or more than three
// operands are given, nothing is written and false is returned.
func (b *CommandBuffer) Append(op Opcode, operands ...uint32) bool {
	if b.count >= b.capacity || len(operands) > RecordWords-1 {
		return b.drop()
	}
	base := HeaderWords + b.count*RecordWords
	rec := b.words[base : base+RecordWords]
	rec[0] = uint32(op)
	rec[1], rec[2], rec[3] = 0, 0, 0
	copy(rec[1:], operands)
	b.count++
	return true
}

// reserve grows the payload arena by n bytes, 4-byte aligned. It returns the
// offset of the reserved region or false if the arena is full.
func (b *CommandBuffer) reserve(n int) (int, bool) {
	off := (len(b.payload) + 3) &^ 3
	if off+n > cap(b.payload) {
		return 0, false
	}
	for i := len(b.payload); i < off; i++ {
		b.payload = append(b.payload, 0)
	}
	b.payload = b.payload[:off+n]
	return off, true
}

// AppendPayload copies data into the payload arena and writes a record whose
// operands 1 and 2 are the (offset, length) of the copy. Either both the
// record and the payload are written or neither is.
func (b *CommandBuffer) AppendPayload(op Opcode, operand0 uint32, data []byte) bool {
	if b.count >= b.capacity {
		return b.drop()
	}
	mark := len(b.payload)
	off, ok := b.reserve(len(data))
	if !ok {
		return b.drop()
	}
	copy(b.payload[off:], data)
	if !b.Append(op, operand0, uint32(off), uint32(len(data))) {
		b.payload = b.payload[:mark]
		return false
	}
	return true
}

// AppendFloats stores values bit-exact (IEEE-754, little-endian) in the
// payload arena and references them from one record.
func (b *CommandBuffer) AppendFloats(op Opcode, operand0 uint32, values ...float32) bool {
	if b.count >= b.capacity {
		return b.drop()
	}
	n := len(values) * 4
	off, ok := b.reserve(n)
	if !ok {
		return b.drop()
	}
	for i, v := range values {
		binary.LittleEndian.PutUint32(b.payload[off+i*4:], math.Float32bits(v))
	}
	return b.Append(op, operand0, uint32(off), uint32(n))
}

func (b *CommandBuffer) AppendClear(mask uint32, color mgl32.Vec4) bool {
	return b.AppendFloats(OpClear, mask, color[:]...)
}

func (b *CommandBuffer) AppendUniformMatrix4fv(location uint32, m mgl32.Mat4) bool {
	return b.AppendFloats(OpUniformMatrix4fv, location, m[:]...)
}

func (b *CommandBuffer) AppendUniform3f(location uint32, v mgl32.Vec3) bool {
	return b.AppendFloats(OpUniform3f, location, v[:]...)
}

func (b *CommandBuffer) AppendUniform4f(location uint32, v mgl32.Vec4) bool {
	return b.AppendFloats(OpUniform4f, location, v[:]...)
}

// Record returns the i-th command written since the last Reset.
func (b *CommandBuffer) Record(i int) (Command, bool) {
	if i < 0 || i >= b.count {
		return Command{}, false
	}
	base := HeaderWords + i*RecordWords
	return Command{
		Opcode:   Opcode(b.words[base]),
		Operand0: b.words[base+1],
		Operand1: b.words[base+2],
		Operand2: b.words[base+3],
	}, true
}

// Serialize returns the wire form: the count word followed by count records.
// The slice aliases the buffer's storage and is only valid until the next
// Append or Reset.
func (b *CommandBuffer) Serialize() []uint32 {
	b.words[0] = uint32(b.count)
	return b.words[:HeaderWords+b.count*RecordWords]
}

// Payload returns the payload arena the serialized records point into.
func (b *CommandBuffer) Payload() []byte {
	return b.payload
}

func (b *CommandBuffer) Batch() Batch {
	return Batch{Words: b.Serialize(), Payload: b.Payload()}
}
