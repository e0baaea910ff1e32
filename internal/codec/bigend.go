// Package codec implements the pure codec primitives of the IBM i host
// protocol: big-endian integer packing, EBCDIC/ASCII translation, UTF-16BE
// text emission and DTS timestamp decoding. Nothing in this package touches
// a socket.
package codec

import "encoding/binary"

// PutUint16 appends the big-endian encoding of v to dst.
func PutUint16(dst []byte, v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return append(dst, b[:]...)
}

// PutUint32 appends the big-endian encoding of v to dst.
func PutUint32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

// PutUint64 appends the big-endian encoding of v to dst.
func PutUint64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// GetUint16 reads the first 2 bytes of buf as a big-endian uint16; bytes
// after the second are ignored. Bytes missing past the end of buf read as 0
// rather than panicking, so a 1-byte buf yields that byte in the high
// position.
func GetUint16(buf []byte) uint16 {
	return uint16(getUint(buf, 2))
}

// GetUint32 reads a big-endian uint32 from buf, same short-read rules as
// GetUint16.
func GetUint32(buf []byte) uint32 {
	return uint32(getUint(buf, 4))
}

// GetUint64 reads a big-endian uint64 from buf.
func GetUint64(buf []byte) uint64 {
	return getUint(buf, 8)
}

// GetUintWidth reads a big-endian unsigned integer of width bytes
// (1..8), right-justified: if width is smaller than the natural width of
// the value being decoded this still reads exactly width bytes. It exists
// for the handful of protocol fields the spec documents as "read N bytes as
// an integer" where N varies by field rather than by Go type.
func GetUintWidth(buf []byte, width int) uint64 {
	return getUint(buf, width)
}

// getUint reads width bytes of buf (padding missing trailing bytes with
// zero) as a big-endian unsigned integer.
func getUint(buf []byte, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		v <<= 8
		if i < len(buf) {
			v |= uint64(buf[i])
		}
	}
	return v
}
