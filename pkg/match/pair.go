package match

import (
	"github.com/aleksaelezovic/quadkey/pkg/keybuf"
	"github.com/cockroachdb/errors"
)

// PairMatcher tests the two fields of a split key or value. The routine for
// its mask is chosen once at construction.
type PairMatcher struct {
	first, second target
	mask          uint8
	fn            func(*PairMatcher, keybuf.Reader) bool
}

// NewPair compiles a PairMatcher. shouldMatch must have two entries.
func NewPair(v0, v1 uint64, shouldMatch []bool) (*PairMatcher, error) {
	if len(shouldMatch) != 2 {
		return nil, errors.Wrapf(ErrMaskLength, "got %d entries, want 2", len(shouldMatch))
	}
	m := &PairMatcher{first: render(v0), second: render(v1), mask: maskBits(shouldMatch)}
	switch m.mask {
	case 0b00:
		m.fn = matchNeither
	case 0b01:
		m.fn = matchFirst
	case 0b10:
		m.fn = matchSecond
	case 0b11:
		m.fn = matchBoth
	}
	return m, nil
}

// Mask returns the matched positions as bits, position 0 in the lowest bit.
func (m *PairMatcher) Mask() uint8 { return m.mask }

// Matches reports whether the matched fields read from r equal their targets.
func (m *PairMatcher) Matches(r keybuf.Reader) bool {
	return m.fn(m, r)
}

// MatchesKey is Matches on bytes held in memory.
func (m *PairMatcher) MatchesKey(b []byte) bool {
	return m.fn(m, keybuf.NewSlice(b))
}

func matchNeither(*PairMatcher, keybuf.Reader) bool {
	return true
}

func matchFirst(m *PairMatcher, r keybuf.Reader) bool {
	return m.first.match(r)
}

func matchSecond(m *PairMatcher, r keybuf.Reader) bool {
	return skip(r) && m.second.match(r)
}

func matchBoth(m *PairMatcher, r keybuf.Reader) bool {
	return m.first.match(r) && m.second.match(r)
}
