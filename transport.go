package wsstream

import (
	"io"
	"net"

	"golang.org/x/xerrors"
)

// Transport is the duplex byte channel a Stream reads and writes.
//
// A call either completes synchronously or asynchronously:
//
//   - Synchronous success returns (n, nil) with n >= 0 and cb is never
//     invoked. A Read returning n == 0 signals orderly connection close.
//   - Synchronous failure returns (0, err) and cb is never invoked.
//   - (0, ErrPending) means the operation is in flight and cb will be
//     invoked exactly once, on the stream's execution context, with the
//     result the call would otherwise have returned.
//
// The read and write halves are independent: one read and one write
// may be in flight at the same time.
type Transport interface {
	Read(p []byte, cb func(n int, err error)) (int, error)
	Write(p []byte, cb func(n int, err error)) (int, error)
	Close() error
}

// NetConn adapts a net.Conn to the Transport contract. Every call
// completes synchronously by blocking, so completion callbacks are
// never invoked and ReadFrames/WriteFrames never return ErrPending
// over it.
func NetConn(c net.Conn) Transport {
	return &netConn{c: c}
}

type netConn struct {
	c net.Conn
}

func (nc *netConn) Read(p []byte, _ func(int, error)) (int, error) {
	n, err := nc.c.Read(p)
	if n > 0 {
		// A close alongside data is picked up by the next call.
		return n, nil
	}
	if err != nil && (xerrors.Is(err, io.EOF) || xerrors.Is(err, net.ErrClosed)) {
		return 0, nil
	}
	return 0, err
}

func (nc *netConn) Write(p []byte, _ func(int, error)) (int, error) {
	return nc.c.Write(p)
}

func (nc *netConn) Close() error {
	return nc.c.Close()
}
