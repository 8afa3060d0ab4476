package keybuf

import (
	"cmp"
	"encoding/binary"
)

// loaders[n] assembles n big-endian bytes into a right-aligned uint64.
var loaders = [9]func([]byte) uint64{
	nil,
	func(b []byte) uint64 { return uint64(b[0]) },
	func(b []byte) uint64 { return uint64(binary.BigEndian.Uint16(b)) },
	func(b []byte) uint64 { return uint64(b[2]) | uint64(b[1])<<8 | uint64(b[0])<<16 },
	func(b []byte) uint64 { return uint64(binary.BigEndian.Uint32(b)) },
	func(b []byte) uint64 { return uint64(b[4]) | uint64(binary.BigEndian.Uint32(b))<<8 },
	func(b []byte) uint64 {
		return uint64(binary.BigEndian.Uint16(b[4:])) | uint64(binary.BigEndian.Uint32(b))<<16
	},
	func(b []byte) uint64 {
		return uint64(b[6]) | uint64(binary.BigEndian.Uint16(b[4:]))<<8 | uint64(binary.BigEndian.Uint32(b))<<24
	},
	func(b []byte) uint64 { return binary.BigEndian.Uint64(b) },
}

// Uint returns b (1 to 8 bytes) as a big-endian unsigned integer.
func Uint(b []byte) uint64 {
	return loaders[len(b)](b)
}

// CompareRegion compares a[aOff:aOff+n] with the next n bytes of r as
// unsigned bytes, returning -1, 0 or +1. Regions up to eight bytes are
// compared as one fixed-width integer; longer ones in eight-byte chunks.
// After a mismatch the cursor of r is left somewhere inside the region.
func CompareRegion(a []byte, aOff int, r Reader, n int) (int, error) {
	for n > 0 {
		k := min(n, 8)
		got, err := r.ReadUint(k)
		if err != nil {
			return 0, err
		}
		if c := cmp.Compare(loaders[k](a[aOff:aOff+k]), got); c != 0 {
			return c, nil
		}
		aOff += k
		n -= k
	}
	return 0, nil
}

// EqualRegion reports whether a[aOff:aOff+n] equals the next n bytes of r.
// A short reader is never equal.
func EqualRegion(a []byte, aOff int, r Reader, n int) bool {
	c, err := CompareRegion(a, aOff, r, n)
	return err == nil && c == 0
}
