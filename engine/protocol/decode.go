package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedBatch = errors.New("malformed batch")
	ErrUnknownOpcode  = errors.New("unknown opcode")
)

// Decode splits a serialized word stream back into commands. It is the
// entry point of the remote side: the header must match the stream length
// and every opcode must be known to this protocol version.
func Decode(words []uint32) ([]Command, error) {
	if len(words) < HeaderWords {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedBatch)
	}
	n := uint64(words[0])
	if want := uint64(HeaderWords) + n*RecordWords; uint64(len(words)) != want {
		return nil, fmt.Errorf("%w: header announces %d records (%d words), got %d words", ErrMalformedBatch, n, want, len(words))
	}
	cmds := make([]Command, 0, n)
	for i := uint64(0); i < n; i++ {
		base := HeaderWords + i*RecordWords
		c := Command{
			Opcode:   Opcode(words[base]),
			Operand0: words[base+1],
			Operand1: words[base+2],
			Operand2: words[base+3],
		}
		if !c.Opcode.Valid() {
			return nil, fmt.Errorf("%w: %s at record %d", ErrUnknownOpcode, c.Opcode, i)
		}
		cmds = append(cmds, c)
	}
	return cmds, nil
}
