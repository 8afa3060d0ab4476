package match

import (
	"github.com/aleksaelezovic/quadkey/pkg/quad"
)

// ForPattern compiles a Matcher for the fields pattern binds, laid out in the
// key order of o. Unbound fields follow quad.IsBound.
func ForPattern(o *quad.Order, pattern quad.Quad) *Matcher {
	bound := o.Bound(pattern[quad.Subject], pattern[quad.Predicate], pattern[quad.Object], pattern[quad.Context])
	m, err := New(o.Permute(pattern), bound[:])
	if err != nil {
		panic(err)
	}
	return m
}

// ForSplit compiles predicates for the key and value of entries written by a
// quad.SplitEncoder with the given order and split. A side holding two fields
// gets a PairMatcher; a side with no fields always matches.
func ForSplit(o *quad.Order, split int, pattern quad.Quad) (key, value Predicate, err error) {
	if err := quad.CheckSplit(split); err != nil {
		return nil, nil, err
	}
	values := o.Permute(pattern)
	bound := o.Bound(pattern[quad.Subject], pattern[quad.Predicate], pattern[quad.Object], pattern[quad.Context])

	if split == 0 {
		// A split-0 key is only the placeholder byte.
		key = Always()
	} else {
		key = side(values[:split], bound[:split])
	}
	value = side(values[split:], bound[split:])
	return key, value, nil
}

func side(values []uint64, bound []bool) Predicate {
	switch len(values) {
	case 0:
		return Always()
	case 2:
		m, _ := NewPair(values[0], values[1], bound)
		return m
	default:
		// Positions past len(values) stay unmatched and are never read.
		var vals [4]uint64
		var mask [4]bool
		copy(vals[:], values)
		copy(mask[:], bound)
		m, _ := New(vals, mask[:])
		return m
	}
}
