package wsstream

import (
	"nhooyr.io/wsstream/internal/errd"
	"nhooyr.io/wsstream/wscore"
)

// Options configures a Stream.
type Options struct {
	// Carryover holds bytes that were read from the transport while
	// parsing the handshake response but belong to the first WebSocket
	// frames. They are parsed before any new transport read.
	Carryover []byte

	// Subprotocol and Extensions are the strings negotiated during the
	// handshake. The stream only stores and reports them.
	Subprotocol string
	Extensions  string

	// NewMaskKey generates the masking key for each outbound frame.
	// Defaults to wscore.NewMaskKey. Tests may supply a deterministic
	// generator.
	NewMaskKey func() wscore.MaskKey
}

// Stream converts a raw byte transport into WebSocket frames and back.
//
// It is the client side of a connection: outbound frames are always
// masked with a fresh key and inbound frames must arrive unmasked.
//
// A Stream is single threaded. At most one ReadFrames and,
// independently, at most one WriteFrames may be in flight at a time;
// the two may overlap as they use disjoint halves of the transport.
type Stream struct {
	t Transport

	subprotocol string
	extensions  string
	newMaskKey  func() wscore.MaskKey

	rd readState
	wr writeState

	closed bool
}

// New returns a Stream owning t. opts may be nil.
func New(t Transport, opts *Options) *Stream {
	if opts == nil {
		opts = &Options{}
	}

	s := &Stream{
		t:           t,
		subprotocol: opts.Subprotocol,
		extensions:  opts.Extensions,
		newMaskKey:  opts.NewMaskKey,
	}
	if s.newMaskKey == nil {
		s.newMaskKey = wscore.NewMaskKey
	}
	if len(opts.Carryover) > 0 {
		s.rd.buf = append([]byte(nil), opts.Carryover...)
	}
	return s
}

// Subprotocol returns the negotiated sub-protocol string.
func (s *Stream) Subprotocol() string {
	return s.subprotocol
}

// Extensions returns the negotiated extensions string.
func (s *Stream) Extensions() string {
	return s.extensions
}

// Close closes the underlying transport. Any in flight operation is
// cancelled: its completion callback will never be invoked.
func (s *Stream) Close() (err error) {
	defer errd.Wrap(&err, "failed to close stream")

	if s.closed {
		return nil
	}
	s.closed = true

	s.rd = readState{}
	s.releaseWrite()

	return s.t.Close()
}
