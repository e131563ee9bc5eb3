package wscore

import (
	"encoding/binary"

	"golang.org/x/xerrors"
)

// ErrProtocolViolation is wrapped by every parse error caused by a
// structurally invalid frame encoding.
var ErrProtocolViolation = xerrors.New("protocol violation")

// Payload length encodings.
// See https://tools.ietf.org/html/rfc6455#section-5.2.
const (
	len7Max   = 125
	len16Code = 126
	len16Max  = 1<<16 - 1
	len64Code = 127
)

// ParseHeader decodes a single frame header from the front of b
// without consuming it. It returns the header and the number of bytes
// it occupies. A zero count with a nil error means b does not yet hold
// a complete header and more bytes are needed.
//
// ParseHeader performs no I/O and keeps no state, so the caller may
// retry it on the same buffer as bytes arrive.
//
// Structural violations return an error wrapping ErrProtocolViolation:
// reserved bits set, a control opcode selecting an extended length
// field, a length encoded wider than the minimal legal width, or a
// 64 bit length with its most significant bit set. The control frame
// check deliberately precedes extended length decoding so that an
// oversized control frame is rejected even before its length extension
// bytes arrive.
func ParseHeader(b []byte) (Header, int, error) {
	if len(b) < 2 {
		return Header{}, 0, nil
	}

	var h Header
	h.FIN = b[0]&0x80 != 0
	h.RSV1 = b[0]&0x40 != 0
	h.RSV2 = b[0]&0x20 != 0
	h.RSV3 = b[0]&0x10 != 0
	h.Opcode = Opcode(b[0] & 0xF)

	if h.RSV1 || h.RSV2 || h.RSV3 {
		return Header{}, 0, xerrors.Errorf("reserved bits set %v:%v:%v: %w",
			h.RSV1, h.RSV2, h.RSV3, ErrProtocolViolation)
	}

	h.Masked = b[1]&0x80 != 0
	len7 := b[1] & 0x7F

	if h.Opcode.IsControl() && len7 > len7Max {
		return Header{}, 0, xerrors.Errorf("control frame with payload length over %d: %w",
			len7Max, ErrProtocolViolation)
	}

	n := 2
	switch len7 {
	case len16Code:
		if len(b) < n+2 {
			return Header{}, 0, nil
		}
		h.Length = int64(binary.BigEndian.Uint16(b[n:]))
		n += 2
		if h.Length <= len7Max {
			return Header{}, 0, xerrors.Errorf("length %d encoded in 16 bit field: %w",
				h.Length, ErrProtocolViolation)
		}
	case len64Code:
		if len(b) < n+8 {
			return Header{}, 0, nil
		}
		h.Length = int64(binary.BigEndian.Uint64(b[n:]))
		n += 8
		if h.Length < 0 {
			return Header{}, 0, xerrors.Errorf("length with high bit set: %w", ErrProtocolViolation)
		}
		if h.Length <= len16Max {
			return Header{}, 0, xerrors.Errorf("length %d encoded in 64 bit field: %w",
				h.Length, ErrProtocolViolation)
		}
	default:
		h.Length = int64(len7)
	}

	if h.Masked {
		if len(b) < n+4 {
			return Header{}, 0, nil
		}
		copy(h.Mask[:], b[n:])
		n += 4
	}

	return h, n, nil
}
