package wsstream

import (
	"nhooyr.io/wsstream/wscore"
)

// Frame is a single WebSocket frame: a header and its payload.
//
// Frames returned by ReadFrames are owned by the caller. Frames passed
// to WriteFrames are owned by the serializer until the operation
// completes, though it never modifies the payload in place.
type Frame struct {
	Header  wscore.Header
	Payload []byte
}

// NewFrame returns a frame with the header's length filled in from the
// payload. The serializer sets the mask fields itself, so callers only
// provide the opcode and final bit.
func NewFrame(op wscore.Opcode, fin bool, payload []byte) *Frame {
	return &Frame{
		Header: wscore.Header{
			FIN:    fin,
			Opcode: op,
			Length: int64(len(payload)),
		},
		Payload: payload,
	}
}
