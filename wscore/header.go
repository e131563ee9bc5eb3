package wscore

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// MaskKey is the 4 byte key XORed with client to server payloads.
// See https://tools.ietf.org/html/rfc6455#section-5.3.
type MaskKey [4]byte

// NewMaskKey returns a fresh cryptographically random masking key.
// It panics if the system random source fails.
func NewMaskKey() MaskKey {
	var k MaskKey
	_, err := rand.Read(k[:])
	if err != nil {
		panic(fmt.Sprintf("wscore: failed to generate mask key: %v", err))
	}
	return k
}

// MaxControlPayload is the maximum length of a control frame payload.
// See https://tools.ietf.org/html/rfc6455#section-5.5.
const MaxControlPayload = 125

// MaxHeaderSize is the largest possible encoded header:
// 2 base bytes, 8 extended length bytes and a 4 byte mask key.
const MaxHeaderSize = 2 + 8 + 4

// Header represents a WebSocket frame header.
// See https://tools.ietf.org/html/rfc6455#section-5.2.
type Header struct {
	FIN bool

	RSV1 bool
	RSV2 bool
	RSV3 bool

	Opcode Opcode

	// Length is an int64 as the RFC forbids the most significant bit
	// on the wire, so a frame can never have a negative length.
	Length int64

	Masked bool
	Mask   MaskKey
}

// Bytes returns the wire encoding of the header, always using the
// minimal legal width for the payload length.
//
// It panics if the opcode or length cannot be represented, as that
// is a bug in the caller rather than a peer violation.
func (h Header) Bytes() []byte {
	b := make([]byte, 2, MaxHeaderSize)

	if h.FIN {
		b[0] |= 0x80
	}
	if h.RSV1 {
		b[0] |= 0x40
	}
	if h.RSV2 {
		b[0] |= 0x20
	}
	if h.RSV3 {
		b[0] |= 0x10
	}

	if h.Opcode > 0xF || h.Opcode < 0 {
		panic(fmt.Sprintf("wscore: invalid opcode: %#v", h.Opcode))
	}
	b[0] |= byte(h.Opcode)

	switch {
	case h.Length < 0:
		panic(fmt.Sprintf("wscore: invalid negative length: %d", h.Length))
	case h.Length <= len7Max:
		b[1] = byte(h.Length)
	case h.Length <= len16Max:
		b[1] = len16Code
		b = binary.BigEndian.AppendUint16(b, uint16(h.Length))
	default:
		b[1] = len64Code
		b = binary.BigEndian.AppendUint64(b, uint64(h.Length))
	}

	if h.Masked {
		b[1] |= 0x80
		b = append(b, h.Mask[:]...)
	}

	return b
}
