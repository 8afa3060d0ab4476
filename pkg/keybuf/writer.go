package keybuf

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// Writer writes into a fixed-capacity buffer and reports ErrOverflow instead
// of growing.
type Writer struct {
	b   []byte
	pos int
}

// NewWriter returns a Writer whose capacity is len(b).
func NewWriter(b []byte) *Writer {
	return &Writer{b: b}
}

// Reset rewinds the writer to the start of its buffer.
func (w *Writer) Reset() { w.pos = 0 }

// Bytes returns the bytes written so far.
func (w *Writer) Bytes() []byte { return w.b[:w.pos] }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return w.pos }

// Available returns the remaining capacity.
func (w *Writer) Available() int { return len(w.b) - w.pos }

// Next reserves n bytes and returns them for the caller to fill.
func (w *Writer) Next(n int) ([]byte, error) {
	if avail := len(w.b) - w.pos; avail < n {
		return nil, errors.Wrapf(ErrOverflow, "writing %d bytes at offset %d with %d available", n, w.pos, avail)
	}
	b := w.b[w.pos : w.pos+n]
	w.pos += n
	return b, nil
}

func (w *Writer) WriteByte(c byte) error {
	b, err := w.Next(1)
	if err != nil {
		return err
	}
	b[0] = c
	return nil
}

// WriteUint writes the low n bytes of v big-endian (1 <= n <= 8). Bytes past
// the n reserved ones are left untouched.
func (w *Writer) WriteUint(v uint64, n int) error {
	if n < 1 || n > 8 {
		return badWidth(n)
	}
	b, err := w.Next(n)
	if err != nil {
		return err
	}
	if n == 8 {
		binary.BigEndian.PutUint64(b, v)
		return nil
	}
	for i := n - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return nil
}
