// Package varint implements an order-preserving variable-length encoding of
// unsigned 64-bit integers. Encoded values compare byte-wise in the same order
// as the integers they hold, so keys built by concatenating them sort
// correctly in a byte-ordered index.
//
//	0..240          1 byte   value
//	241..2287       2 bytes  241+((v-240)>>8), (v-240)&0xFF
//	2288..67823     3 bytes  249, uint16(v-2288)
//	67824..2^64-1   1+n      250+(n-3), v in n minimal big-endian bytes (n = 3..8)
package varint

import (
	"encoding/binary"
	"math/bits"

	"github.com/aleksaelezovic/quadkey/pkg/keybuf"
	"github.com/cockroachdb/errors"
)

const (
	max1 = 240
	max2 = 2287
	max3 = 67823

	header2Max = 248
	header3    = 249
	headerN    = 250

	// MaxLen is the longest encoding of a uint64.
	MaxLen = 9
)

// lengths maps a header byte to the total encoded length.
var lengths [256]uint8

func init() {
	for h := 0; h < 256; h++ {
		switch {
		case h <= max1:
			lengths[h] = 1
		case h <= header2Max:
			lengths[h] = 2
		case h == header3:
			lengths[h] = 3
		default:
			lengths[h] = uint8(h - headerN + 3 + 1)
		}
	}
}

// Len returns the number of bytes Put would write for v.
func Len(v uint64) int {
	switch {
	case v <= max1:
		return 1
	case v <= max2:
		return 2
	case v <= max3:
		return 3
	default:
		return 1 + payloadLen(v)
	}
}

// ListLen returns the combined encoded length of vs.
func ListLen(vs ...uint64) int {
	n := 0
	for _, v := range vs {
		n += Len(v)
	}
	return n
}

// LenFromHeader returns the total encoded length implied by a header byte.
func LenFromHeader(h byte) int {
	return int(lengths[h])
}

// payloadLen returns the minimal number of big-endian bytes holding v. Only
// called for v > max3, which always needs at least three.
func payloadLen(v uint64) int {
	return (bits.Len64(v) + 7) / 8
}

// Put writes v into b and returns the number of bytes written. It panics if
// b is shorter than Len(v).
func Put(b []byte, v uint64) int {
	switch {
	case v <= max1:
		b[0] = byte(v)
		return 1
	case v <= max2:
		v -= max1
		_ = b[1]
		b[0] = byte(241 + v>>8)
		b[1] = byte(v)
		return 2
	case v <= max3:
		v -= max2 + 1
		_ = b[2]
		b[0] = header3
		binary.BigEndian.PutUint16(b[1:], uint16(v))
		return 3
	default:
		n := payloadLen(v)
		_ = b[n]
		b[0] = byte(headerN + n - 3)
		for i := n; i >= 1; i-- {
			b[i] = byte(v)
			v >>= 8
		}
		return n + 1
	}
}

// Append appends the encoding of v to dst.
func Append(dst []byte, v uint64) []byte {
	var tmp [MaxLen]byte
	n := Put(tmp[:], v)
	return append(dst, tmp[:n]...)
}

// Write encodes v into w. It fails with keybuf.ErrOverflow if w lacks room.
func Write(w *keybuf.Writer, v uint64) error {
	b, err := w.Next(Len(v))
	if err != nil {
		return err
	}
	Put(b, v)
	return nil
}

// Read decodes one value from r. It fails with keybuf.ErrUnderflow if r ends
// inside the value.
func Read(r keybuf.Reader) (uint64, error) {
	h, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case h <= max1:
		return uint64(h), nil
	case h <= header2Max:
		lo, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		return max1 + uint64(h-241)<<8 + uint64(lo), nil
	case h == header3:
		v, err := r.ReadUint(2)
		if err != nil {
			return 0, err
		}
		return max2 + 1 + v, nil
	case h == headerN:
		return r.ReadUint24()
	default:
		return r.ReadUint(int(h) - headerN + 3)
	}
}

// Skip advances r past one encoded value without decoding it.
func Skip(r keybuf.Reader) error {
	h, err := r.ReadByte()
	if err != nil {
		return err
	}
	if n := lengths[h]; n > 1 {
		return r.Skip(int(n) - 1)
	}
	return nil
}

// Uint decodes the value at the start of b and returns it with the number of
// bytes consumed.
func Uint(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, errors.Wrap(keybuf.ErrUnderflow, "empty varint")
	}
	h := b[0]
	n := int(lengths[h])
	if len(b) < n {
		return 0, 0, errors.Wrapf(keybuf.ErrUnderflow, "varint needs %d bytes, have %d", n, len(b))
	}
	switch {
	case n == 1:
		return uint64(h), 1, nil
	case n == 2:
		return max1 + uint64(h-241)<<8 + uint64(b[1]), 2, nil
	case h == header3:
		return max2 + 1 + uint64(binary.BigEndian.Uint16(b[1:])), 3, nil
	default:
		return keybuf.Uint(b[1:n]), n, nil
	}
}
