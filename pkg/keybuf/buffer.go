// Package keybuf provides cursor-based readers and writers over encoded index
// keys. Multi-byte values are always read and written big-endian, whatever the
// host byte order or the byte order of the backing store.
package keybuf

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUnderflow is returned when a read needs more bytes than remain.
	ErrUnderflow = errors.New("buffer underflow")

	// ErrOverflow is returned when a write needs more room than is available.
	ErrOverflow = errors.New("buffer overflow")
)

// Reader reads big-endian values from an encoded key and advances a cursor.
type Reader interface {
	// Len returns the total number of bytes in the buffer.
	Len() int

	// Pos returns the cursor position.
	Pos() int

	// SetPos moves the cursor. It panics if pos is outside [0, Len()].
	SetPos(pos int)

	// Remaining returns the number of unread bytes.
	Remaining() int

	// ReadByte reads one byte.
	ReadByte() (byte, error)

	// ReadUint reads n significant big-endian bytes (1 <= n <= 8) and returns
	// them right-aligned.
	ReadUint(n int) (uint64, error)

	// ReadUint24 reads three big-endian bytes.
	ReadUint24() (uint64, error)

	// Skip advances the cursor by n bytes.
	Skip(n int) error
}

// Slice is a Reader over a contiguous byte slice.
type Slice struct {
	b   []byte
	pos int
}

// NewSlice returns a Reader positioned at the start of b.
func NewSlice(b []byte) *Slice {
	return &Slice{b: b}
}

// Reset repositions the reader at the start of b.
func (s *Slice) Reset(b []byte) {
	s.b = b
	s.pos = 0
}

// Bytes returns the unread portion of the buffer.
func (s *Slice) Bytes() []byte {
	return s.b[s.pos:]
}

func (s *Slice) Len() int       { return len(s.b) }
func (s *Slice) Pos() int       { return s.pos }
func (s *Slice) Remaining() int { return len(s.b) - s.pos }

func (s *Slice) SetPos(pos int) {
	if pos < 0 || pos > len(s.b) {
		panic(errors.AssertionFailedf("position %d out of range [0, %d]", pos, len(s.b)))
	}
	s.pos = pos
}

func (s *Slice) ReadByte() (byte, error) {
	if s.pos >= len(s.b) {
		return 0, underflow(s.pos, 1, 0)
	}
	c := s.b[s.pos]
	s.pos++
	return c, nil
}

func (s *Slice) ReadUint(n int) (uint64, error) {
	if n < 1 || n > 8 {
		return 0, badWidth(n)
	}
	p := s.pos
	avail := len(s.b) - p
	if avail < n {
		return 0, underflow(p, n, avail)
	}
	var v uint64
	if avail >= 8 {
		// One wide load, then drop the bytes past n.
		v = binary.BigEndian.Uint64(s.b[p:]) >> (64 - 8*uint(n))
	} else {
		v = loaders[n](s.b[p : p+n])
	}
	s.pos = p + n
	return v, nil
}

func (s *Slice) ReadUint24() (uint64, error) {
	p := s.pos
	if avail := len(s.b) - p; avail < 3 {
		return 0, underflow(p, 3, avail)
	}
	b := s.b[p : p+3]
	s.pos = p + 3
	return uint64(b[0])<<16 | uint64(b[1])<<8 | uint64(b[2]), nil
}

func (s *Slice) Skip(n int) error {
	if n < 0 {
		return errors.AssertionFailedf("negative skip %d", n)
	}
	if avail := len(s.b) - s.pos; avail < n {
		return underflow(s.pos, n, avail)
	}
	s.pos += n
	return nil
}

func underflow(pos, want, have int) error {
	return errors.Wrapf(ErrUnderflow, "reading %d bytes at offset %d with %d remaining", want, pos, have)
}

func badWidth(n int) error {
	return errors.AssertionFailedf("read width %d outside [1, 8]", n)
}
