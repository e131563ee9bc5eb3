package wsstream

import (
	"bytes"

	"golang.org/x/xerrors"

	"nhooyr.io/wsstream/internal/bpool"
	"nhooyr.io/wsstream/wscore"
)

type writeState struct {
	// buf holds the wire bytes of every frame of the in flight
	// operation, serialized up front. Non nil while one is in flight.
	buf    *bytes.Buffer
	data   []byte
	cursor int

	cb func(error)
}

// WriteFrames serializes frames in order and writes them to the
// transport until every byte has been accepted.
//
// Each frame is masked with a fresh key from the stream's generator;
// payloads are copied, never masked in place. A nil return means all
// frames were fully written. ErrPending means the operation continues
// asynchronously and cb will be invoked exactly once with the final
// result; cb must be non nil. A transport error aborts the whole
// operation and is surfaced verbatim, with no accounting of how many
// bytes were accepted first.
//
// Frames complete in FIFO order: a partial transport write only delays
// the remainder, it never reorders.
//
// Calling WriteFrames while another is in flight panics.
func (s *Stream) WriteFrames(frames []*Frame, cb func(error)) error {
	if s.wr.buf != nil {
		panic("wsstream: WriteFrames called with a write already in flight")
	}
	if s.closed {
		return ErrConnectionClosed
	}

	buf := bpool.Get()
	for _, f := range frames {
		err := s.serializeFrame(buf, f)
		if err != nil {
			bpool.Put(buf)
			return err
		}
	}

	s.wr.buf = buf
	s.wr.data = buf.Bytes()
	s.wr.cursor = 0
	s.wr.cb = cb

	err := s.writeLoop()
	if xerrors.Is(err, ErrPending) {
		return ErrPending
	}
	s.releaseWrite()
	return err
}

// serializeFrame appends the frame's wire form to buf: header with the
// mask bit set, the mask key, then the payload XORed with it.
func (s *Stream) serializeFrame(buf *bytes.Buffer, f *Frame) error {
	h := f.Header
	if h.Opcode.IsControl() {
		if !h.FIN {
			return xerrors.Errorf("cannot write fragmented control frame: %w", ErrProtocol)
		}
		if len(f.Payload) > wscore.MaxControlPayload {
			return xerrors.Errorf("cannot write control frame with %d byte payload: %w",
				len(f.Payload), ErrProtocol)
		}
	}

	h.Masked = true
	h.Mask = s.newMaskKey()
	h.Length = int64(len(f.Payload))

	buf.Write(h.Bytes())
	start := buf.Len()
	buf.Write(f.Payload)
	wscore.Mask(h.Mask, buf.Bytes()[start:])
	return nil
}

// writeLoop drives transport writes, advancing the cursor by however
// many bytes each call accepts. A partial write is not an error, only
// a reason to write again.
func (s *Stream) writeLoop() error {
	for s.wr.cursor < len(s.wr.data) {
		n, err := s.t.Write(s.wr.data[s.wr.cursor:], s.onWriteDone)
		if xerrors.Is(err, ErrPending) {
			return ErrPending
		}
		if err != nil {
			return err
		}
		s.wr.cursor += n
	}
	return nil
}

// onWriteDone resumes a suspended writeLoop with the result of an
// asynchronous transport write.
func (s *Stream) onWriteDone(n int, err error) {
	if s.closed || s.wr.buf == nil {
		return
	}

	if err == nil {
		s.wr.cursor += n
		err = s.writeLoop()
		if xerrors.Is(err, ErrPending) {
			return
		}
	}

	cb := s.wr.cb
	s.releaseWrite()
	cb(err)
}

func (s *Stream) releaseWrite() {
	if s.wr.buf != nil {
		bpool.Put(s.wr.buf)
	}
	s.wr = writeState{}
}
