// Package framing provides the local byte-stream assembly/parse buffer used
// to build outbound request datagrams and walk inbound response datagrams.
// It is never shared between goroutines and never touches a socket; see
// internal/transport for the outer length frame.
package framing

import (
	"encoding/binary"
	"fmt"
)

// Writer assembles a datagram payload. Its zero value is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with cap bytes of pre-allocated capacity.
func NewWriter(cap int) *Writer {
	return &Writer{buf: make([]byte, 0, cap)}
}

func (w *Writer) PutUint8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

func (w *Writer) PutUint16(v uint16) *Writer {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

func (w *Writer) PutUint32(v uint32) *Writer {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

func (w *Writer) PutUint64(v uint64) *Writer {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

func (w *Writer) PutBytes(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the assembled payload. The caller must not mutate it.
func (w *Writer) Bytes() []byte { return w.buf }

// Reader walks a received datagram with an explicit cursor, as
// interaction.go's analyzeResponse does with bytes.Buffer.Next.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential reading starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current read cursor.
func (r *Reader) Pos() int { return r.pos }

// SetPos moves the read cursor to an absolute offset.
func (r *Reader) SetPos(pos int) { r.pos = pos }

// Len returns the number of bytes remaining after the cursor.
func (r *Reader) Len() int {
	if r.pos >= len(r.buf) {
		return 0
	}
	return len(r.buf) - r.pos
}

// Bytes returns the full underlying buffer, regardless of cursor position.
func (r *Reader) Bytes() []byte { return r.buf }

// ReadUint16 reads the next 2 bytes as a big-endian uint16 and advances the
// cursor. It returns an error if fewer than 2 bytes remain.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadUint32 reads the next 4 bytes as a big-endian uint32 and advances the
// cursor.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadUint64 reads the next 8 bytes as a big-endian uint64 and advances the
// cursor.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadBytes reads n raw bytes and advances the cursor.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.next(n)
}

// Skip advances the cursor by n bytes without returning them.
func (r *Reader) Skip(n int) error {
	_, err := r.next(n)
	return err
}

func (r *Reader) next(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("framing: short read, need %d bytes at offset %d, have %d", n, r.pos, len(r.buf))
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}
