// Package wsstream converts a raw duplex byte transport into discrete
// WebSocket frames and back, implementing the framing layer of
// RFC 6455 below message reassembly and above the transport.
//
// A Stream owns a Transport, drains any bytes the upgrade handshake
// buffered past the response, and exposes two operations:
//
//   - ReadFrames accumulates transport reads and surfaces decoded
//     frames, enforcing the protocol's fragmentation rules: control
//     frames arrive whole or not at all, large data frames are
//     surfaced chunk by chunk with the continuation opcode, and
//     structural violations fail the stream with an error wrapping
//     ErrProtocol.
//   - WriteFrames serializes frames with a fresh masking key each and
//     drives transport writes across partial acceptance until every
//     byte is on the wire.
//
// Both follow the same completion discipline as the Transport: a call
// either finishes synchronously or returns ErrPending and later
// resolves exactly once through its callback.
//
// The pure header codec lives in the wscore subpackage.
//
// The handshake itself, TLS, compression extensions and message level
// semantics are out of scope; see nhooyr.io/websocket for a complete
// connection implementation.
package wsstream // import "nhooyr.io/wsstream"
