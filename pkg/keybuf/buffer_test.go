package keybuf

import (
	"bytes"
	"encoding/binary"
	"math/rand/v2"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readers returns every Reader implementation over the same bytes.
func readers(data []byte) map[string]Reader {
	return map[string]Reader{
		"slice":         NewSlice(data),
		"opaque-big":    NewOpaque(NewMapped(data, binary.BigEndian)),
		"opaque-little": NewOpaque(NewMapped(data, binary.LittleEndian)),
		"opaque-native": NewOpaque(NewNative(data)),
	}
}

func TestReadUintAgreesAcrossBackings(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for size := 1; size <= 24; size++ {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(rng.UintN(256))
		}
		for n := 1; n <= 8 && n <= size; n++ {
			for start := 0; start+n <= size; start++ {
				want := uint64(0)
				for _, c := range data[start : start+n] {
					want = want<<8 | uint64(c)
				}
				for name, r := range readers(data) {
					r.SetPos(start)
					got, err := r.ReadUint(n)
					require.NoError(t, err, name)
					assert.Equal(t, want, got, "%s size=%d n=%d start=%d", name, size, n, start)
					assert.Equal(t, start+n, r.Pos(), name)
				}
			}
		}
	}
}

func TestReadUint24(t *testing.T) {
	data := []byte{0xAB, 0x01, 0x02, 0x03, 0xFF}
	for name, r := range readers(data) {
		require.NoError(t, r.Skip(1), name)
		v, err := r.ReadUint24()
		require.NoError(t, err, name)
		assert.Equal(t, uint64(0x010203), v, name)
		assert.Equal(t, 1, r.Remaining(), name)

		_, err = r.ReadUint24()
		assert.True(t, errors.Is(err, ErrUnderflow), name)
	}
}

func TestUnderflow(t *testing.T) {
	for name, r := range readers([]byte{1, 2, 3}) {
		_, err := r.ReadUint(4)
		assert.True(t, errors.Is(err, ErrUnderflow), name)
		assert.Equal(t, 0, r.Pos(), "failed read must not move the cursor")

		assert.True(t, errors.Is(r.Skip(4), ErrUnderflow), name)
		require.NoError(t, r.Skip(3), name)

		_, err = r.ReadByte()
		assert.True(t, errors.Is(err, ErrUnderflow), name)
	}
}

func TestReadUintWidth(t *testing.T) {
	r := NewSlice(make([]byte, 16))
	_, err := r.ReadUint(0)
	assert.Error(t, err)
	_, err = r.ReadUint(9)
	assert.Error(t, err)
}

func TestSetPosOutOfRange(t *testing.T) {
	r := NewSlice([]byte{1})
	assert.Panics(t, func() { r.SetPos(2) })
	assert.Panics(t, func() { NewOpaque(NewNative(nil)).SetPos(-1) })
}

func TestWriter(t *testing.T) {
	w := NewWriter(make([]byte, 12))
	require.NoError(t, w.WriteByte(0x7F))
	require.NoError(t, w.WriteUint(0x0102030405, 5))
	require.NoError(t, w.WriteUint(0xAABBCC, 3))
	require.NoError(t, w.WriteUint(0xDDEE, 2))
	assert.Equal(t, []byte{0x7F, 1, 2, 3, 4, 5, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE}, w.Bytes())
	assert.Equal(t, 1, w.Available())

	err := w.WriteUint(0x1234, 2)
	assert.True(t, errors.Is(err, ErrOverflow))
	assert.Equal(t, 11, w.Len(), "failed write must not move the cursor")

	require.NoError(t, w.WriteByte(0xFF))
	assert.True(t, errors.Is(w.WriteByte(0), ErrOverflow))

	w.Reset()
	assert.Empty(t, w.Bytes())
}

func TestWriteUintStaysInReservedBytes(t *testing.T) {
	buf := bytes.Repeat([]byte{0xFF}, 16)
	w := NewWriter(buf)
	require.NoError(t, w.WriteUint(0x0102, 2))
	require.NoError(t, w.WriteUint(0x030405, 3))
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, w.Bytes())
	assert.Equal(t, bytes.Repeat([]byte{0xFF}, 11), buf[5:], "bytes past the cursor were written")

	require.NoError(t, w.WriteUint(0x060708090A0B0C0D, 8))
	assert.Equal(t, []byte{6, 7, 8, 9, 0xA, 0xB, 0xC, 0xD}, buf[5:13])
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, buf[13:])
}

func TestCompareRegion(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for n := 1; n <= 20; n++ {
		for range 50 {
			a := make([]byte, n+2)
			b := make([]byte, n)
			for i := range a {
				a[i] = byte(rng.UintN(4) * 85)
			}
			for i := range b {
				b[i] = byte(rng.UintN(4) * 85)
			}
			if rng.UintN(3) == 0 {
				copy(b, a[2:])
			}
			want := bytes.Compare(a[2:2+n], b)
			for name, r := range readers(b) {
				got, err := CompareRegion(a, 2, r, n)
				require.NoError(t, err, name)
				assert.Equal(t, want, got, "%s n=%d a=%x b=%x", name, n, a[2:], b)
				assert.Equal(t, want == 0, EqualRegion(a, 2, readers(b)[name], n), name)
			}
		}
	}
}

func TestCompareRegionShortReader(t *testing.T) {
	_, err := CompareRegion([]byte{1, 2, 3}, 0, NewSlice([]byte{1, 2}), 3)
	assert.True(t, errors.Is(err, ErrUnderflow))
	assert.False(t, EqualRegion([]byte{1, 2, 3}, 0, NewSlice([]byte{1, 2}), 3))
}

func TestUint(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	for n := 1; n <= 8; n++ {
		want := binary.BigEndian.Uint64(append(make([]byte, 8-n), b[:n]...))
		assert.Equal(t, want, Uint(b[:n]), "n=%d", n)
	}
}

func BenchmarkReadUint3(b *testing.B) {
	data := bytes.Repeat([]byte{0x12, 0x34, 0x56}, 1024)
	for name, r := range readers(data) {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if r.Remaining() < 3 {
					r.SetPos(0)
				}
				_, _ = r.ReadUint(3)
			}
		})
	}
}
