package wscore

import (
	"crypto/rand"
	"encoding/binary"
	"math/bits"
	"strconv"
	"testing"
	_ "unsafe"

	"github.com/gobwas/ws"
	_ "github.com/gorilla/websocket"

	"nhooyr.io/wsstream/internal/test/assert"
)

func TestMask(t *testing.T) {
	t.Parallel()

	key := MaskKey{0x0a, 0x0b, 0x0c, 0xff}
	p := []byte{0x0a, 0x0b, 0x0c, 0xf2, 0x0c}
	gotKey := Mask(key, p)

	expP := []byte{0, 0, 0, 0x0d, 0x06}
	assert.Equal(t, "p", expP, p)

	key32 := bits.RotateLeft32(binary.LittleEndian.Uint32(key[:]), -8)
	var expKey MaskKey
	binary.LittleEndian.PutUint32(expKey[:], key32)
	assert.Equal(t, "key", expKey, gotKey)
}

func TestMaskMatchesByteLoop(t *testing.T) {
	t.Parallel()

	for size := 0; size < 100; size++ {
		key := NewMaskKey()

		p := make([]byte, size)
		_, err := rand.Read(p)
		assert.Success(t, err)

		exp := make([]byte, size)
		copy(exp, p)
		basicMask(key, exp)

		Mask(key, p)
		assert.Equal(t, strconv.Itoa(size), exp, p)
	}
}

// Masking a payload in two calls with the rotated key must equal
// masking it whole.
func TestMaskContinuation(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		key := NewMaskKey()

		p := make([]byte, 1+i)
		_, err := rand.Read(p)
		assert.Success(t, err)

		exp := make([]byte, len(p))
		copy(exp, p)
		Mask(key, exp)

		split := i % len(p)
		key2 := Mask(key, p[:split])
		Mask(key2, p[split:])
		assert.Equal(t, strconv.Itoa(split), exp, p)
	}
}

func basicMask(key MaskKey, p []byte) MaskKey {
	var i int
	for j := range p {
		p[j] ^= key[i]
		i = (i + 1) % 4
	}

	var rotated MaskKey
	for j := range rotated {
		rotated[j] = key[(i+j)%4]
	}
	return rotated
}

//go:linkname gorillaMaskBytes github.com/gorilla/websocket.maskBytes
func gorillaMaskBytes(key [4]byte, pos int, b []byte) int

func Benchmark_mask(b *testing.B) {
	sizes := []int{
		8,
		16,
		32,
		512,
		4096,
		16384,
	}

	fns := []struct {
		name string
		fn   func(key MaskKey, p []byte)
	}{
		{
			name: "basic",
			fn: func(key MaskKey, p []byte) {
				basicMask(key, p)
			},
		},
		{
			name: "wsstream",
			fn: func(key MaskKey, p []byte) {
				Mask(key, p)
			},
		},
		{
			name: "gorilla",
			fn: func(key MaskKey, p []byte) {
				gorillaMaskBytes(key, 0, p)
			},
		},
		{
			name: "gobwas",
			fn: func(key MaskKey, p []byte) {
				ws.Cipher(p, key, 0)
			},
		},
	}

	key := MaskKey{1, 2, 3, 4}

	for _, size := range sizes {
		p := make([]byte, size)

		b.Run(strconv.Itoa(size), func(b *testing.B) {
			for _, fn := range fns {
				b.Run(fn.name, func(b *testing.B) {
					b.SetBytes(int64(size))

					for i := 0; i < b.N; i++ {
						fn.fn(key, p)
					}
				})
			}
		})
	}
}
