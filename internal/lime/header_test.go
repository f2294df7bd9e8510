package lime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{StartAddress: 0x1000, EndAddress: 0x9f000}
	b := h.Bytes()
	require.Len(t, b, HeaderSize)
	require.Equal(t, []byte{0x45, 0x4D, 0x69, 0x4C}, b[0:4])
	require.Equal(t, []byte{0x01, 0x00, 0x00, 0x00}, b[4:8])
	require.Equal(t, []byte{0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, b[8:16])
	require.Equal(t, []byte{0x00, 0xF0, 0x09, 0x00, 0x00, 0x00, 0x00, 0x00}, b[16:24])
	require.Equal(t, make([]byte, 8), b[24:32])
}

func TestHeaderS4Exact(t *testing.T) {
	h := Header{StartAddress: 0x1000, EndAddress: 0x9f000}
	b := h.Bytes()
	want := []byte{
		0x45, 0x4D, 0x69, 0x4C, 0x01, 0x00, 0x00, 0x00,
		0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0xF0, 0x09, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	require.Equal(t, want, b[:])
}
