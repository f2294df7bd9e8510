// Package lime implements the 32-byte LiME segment header used when the
// output pipeline is configured for LiME framing.
package lime

import "encoding/binary"

// Magic is the little-endian LiME magic number.
const Magic uint32 = 0x4C694D45

// Version is the only LiME header version this package emits.
const Version uint32 = 1

// HeaderSize is the on-disk size of a Header in bytes.
const HeaderSize = 32

// Header is one LiME segment header: it precedes the raw bytes of a
// contiguous physical range in the output stream.
type Header struct {
	StartAddress uint64
	EndAddress   uint64
}

// Bytes serializes h into the 32-byte little-endian LiME wire format.
func (h Header) Bytes() [HeaderSize]byte {
	var b [HeaderSize]byte
	binary.LittleEndian.PutUint32(b[0:4], Magic)
	binary.LittleEndian.PutUint32(b[4:8], Version)
	binary.LittleEndian.PutUint64(b[8:16], h.StartAddress)
	binary.LittleEndian.PutUint64(b[16:24], h.EndAddress)
	// bytes 24:32 are reserved and left zero.
	return b
}
