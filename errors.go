package wsstream

import (
	"golang.org/x/xerrors"

	"nhooyr.io/wsstream/wscore"
)

// ErrPending indicates an operation did not complete synchronously and
// its result will be delivered to the completion callback instead.
// It is never a failure.
var ErrPending = xerrors.New("operation has not completed yet")

// ErrConnectionClosed indicates the transport reported an orderly
// close, either as a zero length read or a closed error. It is
// terminal for the stream and never retried.
var ErrConnectionClosed = xerrors.New("connection closed")

// ErrProtocol is wrapped by every error caused by the peer violating
// RFC 6455: a structurally invalid header encoding, a fragmented or
// oversized control frame, or an unexpectedly masked frame. After a
// protocol error the stream must not be used for further reads.
var ErrProtocol = wscore.ErrProtocolViolation
