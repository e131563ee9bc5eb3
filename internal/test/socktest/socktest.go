// Package socktest provides a scripted Transport for driving a Stream
// through exact sequences of reads and writes, including asynchronous
// completion, partial writes and injected errors.
package socktest

import (
	"bytes"
	"testing"

	"github.com/eapache/queue"
	"golang.org/x/exp/slices"

	"nhooyr.io/wsstream"
)

// IOMode selects whether a scripted operation completes from the call
// itself or from a queued completion delivered by RunPending.
type IOMode int

const (
	Sync IOMode = iota
	Async
)

// MockRead is one scripted transport read. Data is copied into the
// caller's buffer; an entry with Err set fails instead. An entry with
// no data and no error is an orderly close. A Sync entry with
// Err == wsstream.ErrPending models a read that never completes.
type MockRead struct {
	Mode IOMode
	Data []byte
	Err  error
}

// MockWrite is one scripted transport write. The written bytes must
// begin with Data, and exactly len(Data) bytes are accepted, so a
// kernel buffer accepting a write in pieces is scripted as several
// entries splitting the expected bytes.
type MockWrite struct {
	Mode IOMode
	Data []byte
	Err  error
}

// Transport replays read and write scripts in order. Asynchronous
// completions queue up and are delivered, in FIFO order and on the
// caller's goroutine, by RunPending.
type Transport struct {
	tb testing.TB

	reads  []MockRead
	writes []MockWrite

	pending *queue.Queue
	closed  bool
}

func New(tb testing.TB, reads []MockRead, writes []MockWrite) *Transport {
	return &Transport{
		tb:      tb,
		reads:   slices.Clone(reads),
		writes:  slices.Clone(writes),
		pending: queue.New(),
	}
}

// Chunked splits data into reads of chunkSize bytes each, all in the
// given mode, with the final read holding whatever remains.
func Chunked(mode IOMode, data []byte, chunkSize int) []MockRead {
	var reads []MockRead
	for len(data) > 0 {
		n := chunkSize
		if n > len(data) {
			n = len(data)
		}
		reads = append(reads, MockRead{Mode: mode, Data: data[:n]})
		data = data[n:]
	}
	return reads
}

func (t *Transport) Read(p []byte, cb func(int, error)) (int, error) {
	if t.closed {
		t.tb.Fatal("Read on closed transport")
	}
	if len(t.reads) == 0 {
		// Script exhausted: a read that never completes.
		return 0, wsstream.ErrPending
	}
	r := t.reads[0]
	t.reads = t.reads[1:]

	n, err := 0, r.Err
	if err == nil {
		n = copy(p, r.Data)
		if n < len(r.Data) {
			// Deliver what did not fit as an immediate follow-up.
			t.reads = append([]MockRead{{Mode: Sync, Data: r.Data[n:]}}, t.reads...)
		}
	}

	if r.Mode == Sync {
		return n, err
	}
	t.pending.Add(func() { cb(n, err) })
	return 0, wsstream.ErrPending
}

func (t *Transport) Write(p []byte, cb func(int, error)) (int, error) {
	if t.closed {
		t.tb.Fatal("Write on closed transport")
	}
	if len(t.writes) == 0 {
		t.tb.Fatalf("unexpected write of %d bytes: % x", len(p), p)
	}
	w := t.writes[0]
	t.writes = t.writes[1:]

	n, err := 0, w.Err
	if err == nil {
		if len(p) < len(w.Data) || !bytes.Equal(p[:len(w.Data)], w.Data) {
			t.tb.Fatalf("write mismatch:\nexpected prefix % x\ngot % x", w.Data, p)
		}
		n = len(w.Data)
	}

	if w.Mode == Sync {
		return n, err
	}
	t.pending.Add(func() { cb(n, err) })
	return 0, wsstream.ErrPending
}

func (t *Transport) Close() error {
	t.closed = true
	return nil
}

// RunPending delivers queued asynchronous completions until none
// remain, including completions queued by the callbacks themselves.
func (t *Transport) RunPending() {
	for t.pending.Length() > 0 {
		t.pending.Remove().(func())()
	}
}

// ScriptDone reports whether every scripted read and write was used.
func (t *Transport) ScriptDone() bool {
	return len(t.reads) == 0 && len(t.writes) == 0
}
