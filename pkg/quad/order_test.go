package quad

import (
	"bytes"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/aleksaelezovic/quadkey/pkg/keybuf"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomID(rng *rand.Rand) uint64 {
	switch rng.UintN(3) {
	case 0:
		return rng.Uint64N(300)
	case 1:
		return rng.Uint64N(100000)
	default:
		return rng.Uint64() >> (1 + rng.UintN(63))
	}
}

func randomQuad(rng *rand.Rand) Quad {
	return New(randomID(rng), randomID(rng), randomID(rng), randomID(rng))
}

func TestRegistry(t *testing.T) {
	all := Orders()
	require.Len(t, all, 24)

	seen := make(map[string]bool)
	for _, o := range all {
		tag := o.Tag()
		require.Len(t, tag, 4)
		assert.False(t, seen[tag], "duplicate tag %s", tag)
		seen[tag] = true

		letters := []byte(tag)
		sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
		assert.Equal(t, "cops", string(letters), "tag %s is not a permutation", tag)

		got, err := ForTag(tag)
		require.NoError(t, err)
		assert.Same(t, o, got)

		for i, f := range o.Fields() {
			assert.Equal(t, tag[i], f.Letter())
			assert.Equal(t, i, o.Position(f))
		}
	}
	assert.Equal(t, "spoc", all[0].Tag())
	assert.Equal(t, "cops", all[23].Tag())
}

func TestForTagRejects(t *testing.T) {
	for _, tag := range []string{"", "spo", "spocs", "SPOC", "spoo", "spox", "gspo", " spoc"} {
		_, err := ForTag(tag)
		assert.True(t, errors.Is(err, ErrUnknownOrder), "tag %q", tag)
	}
	assert.Panics(t, func() { MustForTag("nope") })
}

func TestConcreteVector(t *testing.T) {
	o := MustForTag("spoc")
	q := New(5, 300, 0, 0)
	key := o.Append(nil, q)
	assert.Equal(t, []byte{0x05, 0xF1, 0x3C, 0x00, 0x00}, key)
	assert.Equal(t, len(key), o.Len(q))

	got, err := Decode(o, key, AllUnknown)
	require.NoError(t, err)
	assert.Equal(t, q, got)

	key = MustForTag("cpos").Append(nil, q)
	assert.Equal(t, []byte{0x00, 0xF1, 0x3C, 0x00, 0x05}, key)
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	for _, o := range Orders() {
		for range 300 {
			q := randomQuad(rng)
			key := o.Append(nil, q)

			got, err := Decode(o, key, AllUnknown)
			require.NoError(t, err, o.Tag())
			assert.Equal(t, q, got, "%s %s", o.Tag(), q)

			w := keybuf.NewWriter(make([]byte, o.Len(q)))
			require.NoError(t, o.Write(w, q))
			assert.Equal(t, key, w.Bytes())
		}
	}
}

func TestCompositeOrder(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 3))
	for _, o := range Orders() {
		for range 300 {
			a, b := randomQuad(rng), randomQuad(rng)
			// Make the two quads agree on a random prefix of key positions.
			pos := int(rng.UintN(4))
			for i := 0; i < pos; i++ {
				f := o.Fields()[i]
				b[f] = a[f]
			}
			pa, pb := o.Permute(a), o.Permute(b)
			want := 0
			for i := range pa {
				if pa[i] != pb[i] {
					if pa[i] < pb[i] {
						want = -1
					} else {
						want = 1
					}
					break
				}
			}
			assert.Equal(t, want, bytes.Compare(o.Append(nil, a), o.Append(nil, b)), "%s %s %s", o, a, b)
		}
	}
}

func TestSkipConsistency(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 5))
	for _, o := range Orders() {
		for range 100 {
			q := randomQuad(rng)
			key := o.Append(nil, q)
			full, err := Decode(o, key, AllUnknown)
			require.NoError(t, err)

			known := AllUnknown
			for f := range known {
				if rng.UintN(2) == 0 {
					known[f] = q[f]
				}
			}
			r := keybuf.NewSlice(key)
			partial, err := o.Decode(r, known)
			require.NoError(t, err)
			assert.Equal(t, full, partial, "%s known=%v", o, known)
			assert.Zero(t, r.Remaining())
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	o := MustForTag("posc")
	key := o.Append(nil, New(70000, 2, 3, 4))
	for n := 0; n < len(key); n++ {
		_, err := Decode(o, key[:n], AllUnknown)
		assert.True(t, errors.Is(err, keybuf.ErrUnderflow), "length %d", n)
	}
}

func TestWriteOverflow(t *testing.T) {
	o := MustForTag("spoc")
	w := keybuf.NewWriter(make([]byte, 4))
	err := o.Write(w, New(5, 300, 0, 0))
	assert.True(t, errors.Is(err, keybuf.ErrOverflow))
}

func TestBound(t *testing.T) {
	o := MustForTag("cpos")
	assert.Equal(t, [4]bool{true, true, false, false}, o.Bound(0, 7, 0, 0))
	assert.Equal(t, [4]bool{false, false, true, true}, o.Bound(3, 0, 9, AnyContext))
	assert.Equal(t, [4]bool{true, true, true, true}, MustForTag("spoc").Bound(1, 2, 3, 4))

	assert.True(t, IsBound(Context, 0))
	assert.False(t, IsBound(Subject, 0))
	assert.False(t, IsBound(Context, AnyContext))
}

func TestPatternScore(t *testing.T) {
	spoc, posc, cspo := MustForTag("spoc"), MustForTag("posc"), MustForTag("cspo")
	pattern := New(Any, 4, 9, AnyContext)
	assert.Equal(t, 0, spoc.PatternScore(pattern))
	assert.Equal(t, 2, posc.PatternScore(pattern))
	assert.Equal(t, 0, cspo.PatternScore(pattern))
	assert.Equal(t, 4, cspo.PatternScore(New(1, 2, 3, 0)))
}

func TestKnown(t *testing.T) {
	assert.Equal(t, Quad{Unknown, 4, Unknown, 0}, Known(New(Any, 4, Any, 0)))
	assert.Equal(t, AllUnknown, Known(New(Any, Any, Any, AnyContext)))
}

func TestPermute(t *testing.T) {
	o := MustForTag("ocsp")
	q := New(1, 2, 3, 4)
	assert.Equal(t, [4]uint64{3, 4, 1, 2}, o.Permute(q))
	assert.Equal(t, q, o.Unpermute(o.Permute(q)))
}
