package match

import (
	"github.com/aleksaelezovic/quadkey/pkg/keybuf"
	"github.com/cockroachdb/errors"
)

// Matcher tests up to four leading fields of an encoded key. It is immutable
// and safe for concurrent use.
type Matcher struct {
	values [4]uint64
	mask   uint8
	// plan holds one step per key position up to the last matched one; a nil
	// step skips the field.
	plan []*target
}

// New compiles a Matcher for values, matching position i when shouldMatch[i]
// is set. shouldMatch must have four entries.
func New(values [4]uint64, shouldMatch []bool) (*Matcher, error) {
	if len(shouldMatch) != 4 {
		return nil, errors.Wrapf(ErrMaskLength, "got %d entries, want 4", len(shouldMatch))
	}
	m := &Matcher{values: values, mask: maskBits(shouldMatch)}
	last := -1
	for i, ok := range shouldMatch {
		if ok {
			last = i
		}
	}
	m.plan = make([]*target, last+1)
	for i := 0; i <= last; i++ {
		if shouldMatch[i] {
			t := render(values[i])
			m.plan[i] = &t
		}
	}
	return m, nil
}

// Mask returns the matched positions as bits, position 0 in the lowest bit.
func (m *Matcher) Mask() uint8 { return m.mask }

// Values returns the target values.
func (m *Matcher) Values() [4]uint64 { return m.values }

// Matches reports whether every matched field read from r equals its target.
// The cursor stops after the last matched field, or at the first mismatch.
// A buffer that ends early does not match.
func (m *Matcher) Matches(r keybuf.Reader) bool {
	for _, t := range m.plan {
		if t == nil {
			if !skip(r) {
				return false
			}
			continue
		}
		if !t.match(r) {
			return false
		}
	}
	return true
}

// MatchesKey is Matches on a key held in memory.
func (m *Matcher) MatchesKey(key []byte) bool {
	return m.Matches(keybuf.NewSlice(key))
}
