package wsstream

import (
	"golang.org/x/xerrors"

	"nhooyr.io/wsstream/internal/errd"
	"nhooyr.io/wsstream/wscore"
)

// readBufSize is how many bytes a single transport read may deliver.
// It also bounds how much payload a surfaced data frame can carry.
const readBufSize = 32768

type readState struct {
	// buf holds bytes read but not yet fully parsed. Seeded with the
	// handshake carry-over at construction.
	buf []byte
	// scratch is the destination of transport reads.
	scratch []byte

	// cur is the header of the data frame whose payload has not fully
	// arrived, with remaining counting the bytes still owed. A control
	// frame is never recorded here: its header stays unconsumed in buf
	// until the whole payload (at most 125 bytes) is present.
	cur       *wscore.Header
	remaining int64

	// inMessage is true after surfacing a non final data frame, forcing
	// every following data frame to OpContinuation until one is
	// surfaced final.
	inMessage bool

	// out and cb are set while a ReadFrames operation is in flight.
	out *[]*Frame
	cb  func(error)
}

// ReadFrames reads from the transport until at least one frame can be
// appended to frames.
//
// A nil return means one or more frames were appended. ErrPending
// means the operation continues asynchronously and cb will be invoked
// exactly once with the final result; cb must be non nil. Any other
// return is the operation's failure: ErrConnectionClosed on orderly
// shutdown, an error wrapping ErrProtocol on an RFC 6455 violation, or
// the transport's own error verbatim. Frames appended before a failure
// was detected remain valid.
//
// Large data frames are not buffered whole: each transport read that
// completes a data frame's header or delivers more of its payload
// surfaces one frame carrying the bytes available so far. The first
// such frame keeps the wire opcode, later ones become OpContinuation,
// and only the frame completing the declared length can be final.
// Control frames are always surfaced whole.
//
// Calling ReadFrames while another is in flight panics.
func (s *Stream) ReadFrames(frames *[]*Frame, cb func(error)) error {
	if frames == nil {
		panic("wsstream: ReadFrames called with nil frames")
	}
	if s.rd.out != nil {
		panic("wsstream: ReadFrames called with a read already in flight")
	}
	if s.closed {
		return ErrConnectionClosed
	}

	s.rd.out = frames
	s.rd.cb = cb

	err := s.readLoop()
	if xerrors.Is(err, ErrPending) {
		return ErrPending
	}
	s.rd.out, s.rd.cb = nil, nil
	return err
}

// readLoop alternates between parsing buffered bytes and reading more
// from the transport until a frame is surfaced or the operation fails.
// It returns ErrPending when a transport read went asynchronous.
func (s *Stream) readLoop() error {
	for {
		err := s.parseFrames()
		if err != nil {
			return err
		}
		if len(*s.rd.out) > 0 {
			return nil
		}

		if s.rd.scratch == nil {
			s.rd.scratch = make([]byte, readBufSize)
		}
		n, err := s.t.Read(s.rd.scratch, s.onReadDone)
		if xerrors.Is(err, ErrPending) {
			return ErrPending
		}
		if err = s.consumeRead(n, err); err != nil {
			return err
		}
	}
}

// onReadDone resumes a suspended readLoop with the result of an
// asynchronous transport read.
func (s *Stream) onReadDone(n int, err error) {
	if s.closed || s.rd.out == nil {
		return
	}

	res := s.consumeRead(n, err)
	if res == nil {
		res = s.readLoop()
		if xerrors.Is(res, ErrPending) {
			return
		}
	}

	cb := s.rd.cb
	s.rd.out, s.rd.cb = nil, nil
	cb(res)
}

// consumeRead folds one transport read result into the parse buffer.
// A zero length read and a closed transport both become
// ErrConnectionClosed and discard any partially assembled frame; other
// errors pass through verbatim.
func (s *Stream) consumeRead(n int, err error) error {
	if err != nil {
		if xerrors.Is(err, ErrConnectionClosed) {
			err = ErrConnectionClosed
		}
		s.discardPartialFrame()
		return err
	}
	if n == 0 {
		s.discardPartialFrame()
		return ErrConnectionClosed
	}

	if len(s.rd.buf) == 0 {
		s.rd.buf = append(s.rd.buf[:0], s.rd.scratch[:n]...)
	} else {
		s.rd.buf = append(s.rd.buf, s.rd.scratch[:n]...)
	}
	return nil
}

// discardPartialFrame drops everything accumulated toward a frame or
// message that will never complete.
func (s *Stream) discardPartialFrame() {
	s.rd.buf = nil
	s.rd.cur = nil
	s.rd.remaining = 0
	s.rd.inMessage = false
}

// parseFrames surfaces every frame the buffered bytes allow, applying
// the control frame and fragmentation policy. It returns nil when it
// runs out of bytes, leaving the remainder buffered for the next read.
func (s *Stream) parseFrames() (err error) {
	defer errd.Wrap(&err, "failed to parse frames")

	for {
		if s.rd.cur == nil {
			if len(s.rd.buf) == 0 {
				return nil
			}

			h, n, err := wscore.ParseHeader(s.rd.buf)
			if err != nil {
				return err
			}
			if n == 0 {
				// Header incomplete.
				return nil
			}
			if h.Masked {
				return xerrors.Errorf("received masked frame from server: %w", ErrProtocol)
			}

			if h.Opcode.IsControl() {
				if !h.FIN {
					return xerrors.Errorf("received fragmented control frame: %w", ErrProtocol)
				}
				if int64(len(s.rd.buf)-n) < h.Length {
					// Keep the control frame buffered until its whole
					// payload arrives so it always surfaces complete.
					return nil
				}
				payload := append([]byte(nil), s.rd.buf[n:n+int(h.Length)]...)
				s.rd.buf = s.rd.buf[n+int(h.Length):]
				*s.rd.out = append(*s.rd.out, &Frame{Header: h, Payload: payload})
				continue
			}

			s.rd.buf = s.rd.buf[n:]
			s.rd.cur = &h
			s.rd.remaining = h.Length
		}

		avail := int64(len(s.rd.buf))
		if avail > s.rd.remaining {
			avail = s.rd.remaining
		}
		if avail == 0 && s.rd.remaining > 0 {
			// Header only: wait for payload rather than surfacing an
			// empty fragment.
			return nil
		}

		payload := append([]byte(nil), s.rd.buf[:avail]...)
		s.rd.buf = s.rd.buf[avail:]
		s.rd.remaining -= avail

		op := s.rd.cur.Opcode
		if s.rd.inMessage {
			op = wscore.OpContinuation
		}
		fin := s.rd.remaining == 0 && s.rd.cur.FIN

		*s.rd.out = append(*s.rd.out, &Frame{
			Header: wscore.Header{
				FIN:    fin,
				Opcode: op,
				Length: int64(len(payload)),
			},
			Payload: payload,
		})

		if s.rd.remaining == 0 {
			s.rd.cur = nil
		}
		s.rd.inMessage = !fin
	}
}
