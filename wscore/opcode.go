package wscore

import "fmt"

// Opcode is a WebSocket frame opcode.
// See https://tools.ietf.org/html/rfc6455#section-11.8.
type Opcode int

const (
	OpContinuation Opcode = iota
	OpText
	OpBinary
	// 3 - 7 are reserved for further non-control frames.
	_
	_
	_
	_
	_
	OpClose
	OpPing
	OpPong
	// 11 - 15 are reserved for further control frames.
)

// IsControl reports whether the opcode identifies a control frame,
// including the reserved control opcodes 11-15.
func (o Opcode) IsControl() bool {
	return o >= OpClose && o <= 0xF
}

// IsData reports whether the opcode identifies a data frame,
// including the reserved data opcodes 3-7.
func (o Opcode) IsData() bool {
	return o >= OpContinuation && o < OpClose
}

func (o Opcode) String() string {
	switch o {
	case OpContinuation:
		return "OpContinuation"
	case OpText:
		return "OpText"
	case OpBinary:
		return "OpBinary"
	case OpClose:
		return "OpClose"
	case OpPing:
		return "OpPing"
	case OpPong:
		return "OpPong"
	}
	return fmt.Sprintf("Opcode(%d)", int(o))
}
