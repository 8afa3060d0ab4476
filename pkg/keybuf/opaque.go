package keybuf

import (
	"encoding/binary"
	"math/bits"

	"github.com/cockroachdb/errors"
)

// Backing is an indirectly addressed byte store, such as a memory-mapped
// region owned by a storage engine, read at absolute offsets.
type Backing interface {
	// Size returns the number of addressable bytes.
	Size() int

	// ByteAt returns the byte at off.
	ByteAt(off int) byte

	// Uint64At returns the eight bytes at off interpreted in the backing's
	// own byte order. The caller guarantees off+8 <= Size().
	Uint64At(off int) uint64

	// BigEndian reports whether Uint64At interprets bytes big-endian.
	BigEndian() bool
}

// Opaque is a Reader over a Backing. Wide reads are absolute 8-byte loads in
// the backing's order, swapped to big-endian when the backing is not.
type Opaque struct {
	src  Backing
	size int
	swap bool
	pos  int
}

// NewOpaque returns a Reader positioned at the start of src.
func NewOpaque(src Backing) *Opaque {
	return &Opaque{src: src, size: src.Size(), swap: !src.BigEndian()}
}

func (o *Opaque) Len() int       { return o.size }
func (o *Opaque) Pos() int       { return o.pos }
func (o *Opaque) Remaining() int { return o.size - o.pos }

func (o *Opaque) SetPos(pos int) {
	if pos < 0 || pos > o.size {
		panic(errors.AssertionFailedf("position %d out of range [0, %d]", pos, o.size))
	}
	o.pos = pos
}

func (o *Opaque) ReadByte() (byte, error) {
	if o.pos >= o.size {
		return 0, underflow(o.pos, 1, 0)
	}
	c := o.src.ByteAt(o.pos)
	o.pos++
	return c, nil
}

func (o *Opaque) ReadUint(n int) (uint64, error) {
	if n < 1 || n > 8 {
		return 0, badWidth(n)
	}
	p := o.pos
	avail := o.size - p
	if avail < n {
		return 0, underflow(p, n, avail)
	}
	var v uint64
	if avail >= 8 {
		raw := o.src.Uint64At(p)
		if o.swap {
			raw = bits.ReverseBytes64(raw)
		}
		v = raw >> (64 - 8*uint(n))
	} else {
		for i := 0; i < n; i++ {
			v = v<<8 | uint64(o.src.ByteAt(p+i))
		}
	}
	o.pos = p + n
	return v, nil
}

func (o *Opaque) ReadUint24() (uint64, error) {
	p := o.pos
	if avail := o.size - p; avail < 3 {
		return 0, underflow(p, 3, avail)
	}
	o.pos = p + 3
	return uint64(o.src.ByteAt(p))<<16 | uint64(o.src.ByteAt(p+1))<<8 | uint64(o.src.ByteAt(p+2)), nil
}

func (o *Opaque) Skip(n int) error {
	if n < 0 {
		return errors.AssertionFailedf("negative skip %d", n)
	}
	if avail := o.size - o.pos; avail < n {
		return underflow(o.pos, n, avail)
	}
	o.pos += n
	return nil
}

// Mapped is a Backing over a byte region whose wide loads use a configurable
// byte order, the way an engine-owned region reports its native order.
type Mapped struct {
	data  []byte
	order binary.ByteOrder
	big   bool
}

// NewMapped wraps data with the given byte order.
func NewMapped(data []byte, order binary.ByteOrder) *Mapped {
	probe := []byte{0x01, 0x02}
	return &Mapped{data: data, order: order, big: order.Uint16(probe) == 0x0102}
}

// NewNative wraps data using the host byte order.
func NewNative(data []byte) *Mapped {
	return NewMapped(data, binary.NativeEndian)
}

func (m *Mapped) Size() int               { return len(m.data) }
func (m *Mapped) ByteAt(off int) byte     { return m.data[off] }
func (m *Mapped) Uint64At(off int) uint64 { return m.order.Uint64(m.data[off : off+8]) }
func (m *Mapped) BigEndian() bool         { return m.big }
