// Package bpool pools the scratch buffers frames are serialized into,
// so a stream writing steadily does not allocate per operation.
package bpool

import (
	"bytes"
	"sync"
)

var pool sync.Pool

// Get returns an empty buffer, reusing a pooled one when available.
func Get() *bytes.Buffer {
	b, ok := pool.Get().(*bytes.Buffer)
	if !ok {
		b = &bytes.Buffer{}
	}
	return b
}

// Put resets b and makes it available to later Get calls. The caller
// must not touch b afterwards.
func Put(b *bytes.Buffer) {
	b.Reset()
	pool.Put(b)
}
