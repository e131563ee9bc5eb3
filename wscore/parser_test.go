package wscore

import (
	"testing"

	"nhooyr.io/wsstream/internal/test/assert"
)

func TestParseHeader(t *testing.T) {
	t.Parallel()

	t.Run("incomplete", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name string
			b    []byte
		}{
			{"empty", nil},
			{"oneByte", []byte{0x81}},
			{"missing16BitLength", []byte{0x81, 0x7E, 0x01}},
			{"missing64BitLength", []byte{0x81, 0x7F, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00}},
			{"missingMaskKey", []byte{0x81, 0x85, 0x01, 0x02, 0x03}},
		}
		for _, tc := range testCases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				_, n, err := ParseHeader(tc.b)
				assert.Success(t, err)
				assert.Equal(t, "consumed", 0, n)
			})
		}
	})

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name string
			b    []byte
			h    Header
			n    int
		}{
			{
				name: "small",
				b:    []byte{0x81, 0x06, 'S', 'a', 'm', 'p', 'l', 'e'},
				h:    Header{FIN: true, Opcode: OpText, Length: 6},
				n:    2,
			},
			{
				name: "masked",
				b:    []byte{0x82, 0x85, 1, 2, 3, 4, 0xFF},
				h:    Header{FIN: true, Opcode: OpBinary, Length: 5, Masked: true, Mask: MaskKey{1, 2, 3, 4}},
				n:    6,
			},
			{
				name: "16Bit",
				b:    []byte{0x01, 0x7E, 0x01, 0x00},
				h:    Header{Opcode: OpText, Length: 256},
				n:    4,
			},
			{
				name: "64Bit",
				b:    []byte{0x81, 0x7F, 0, 0, 0, 0, 0, 0x01, 0, 0},
				h:    Header{FIN: true, Opcode: OpText, Length: 65536},
				n:    10,
			},
			{
				name: "controlMax",
				b:    []byte{0x88, 0x7D},
				h:    Header{FIN: true, Opcode: OpClose, Length: 125},
				n:    2,
			},
			{
				// Fragmented control frames are the stream's policy to
				// reject, not a structural violation.
				name: "pingWithoutFin",
				b:    []byte{0x09, 0x00},
				h:    Header{Opcode: OpPing},
				n:    2,
			},
		}
		for _, tc := range testCases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				h, n, err := ParseHeader(tc.b)
				assert.Success(t, err)
				assert.Equal(t, "consumed", tc.n, n)
				assert.Equal(t, "header", tc.h, h)
			})
		}
	})

	t.Run("violations", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name string
			b    []byte
		}{
			{"rsv1", []byte{0xC1, 0x06}},
			{"rsv2", []byte{0xA1, 0x06}},
			{"rsv3", []byte{0x91, 0x06}},
			{"16BitLengthFor7", []byte{0x81, 0x7E, 0x00, 0x07}},
			{"16BitLengthFor125", []byte{0x81, 0x7E, 0x00, 0x7D}},
			{"64BitLengthFor65535", []byte{0x81, 0x7F, 0, 0, 0, 0, 0, 0, 0xFF, 0xFF}},
			{"64BitLengthNegative", []byte{0x81, 0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
			// Control frames cannot select an extended length field, so
			// these fail before the extension bytes even arrive.
			{"control16BitLength", []byte{0x8A, 0x7E}},
			{"control64BitLength", []byte{0x88, 0x7F}},
		}
		for _, tc := range testCases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				_, _, err := ParseHeader(tc.b)
				assert.ErrorIs(t, ErrProtocolViolation, err)
			})
		}
	})

	// ParseHeader keeps no state: reparsing the same buffer gives the
	// same answer.
	t.Run("stateless", func(t *testing.T) {
		t.Parallel()

		b := []byte{0x81, 0x06, 'S', 'a', 'm', 'p', 'l', 'e'}
		h1, n1, err1 := ParseHeader(b)
		h2, n2, err2 := ParseHeader(b)
		assert.Success(t, err1)
		assert.Success(t, err2)
		assert.Equal(t, "consumed", n1, n2)
		assert.Equal(t, "header", h1, h2)
	})
}
