package quad

import (
	"strings"

	"github.com/aleksaelezovic/quadkey/pkg/keybuf"
	"github.com/aleksaelezovic/quadkey/pkg/varint"
	"github.com/cockroachdb/errors"
)

// ErrUnknownOrder is returned for a tag that is not a permutation of "spoc".
var ErrUnknownOrder = errors.New("unrecognized field order")

// Order is one of the 24 field orders of an index. Orders are shared and
// immutable.
type Order struct {
	tag    string
	fields [4]Field // fields[i] is stored at key position i
	index  [4]int   // index[f] is the key position of field f
}

var (
	orders   []*Order
	registry = make(map[string]*Order, 24)
)

func init() {
	all := [4]Field{Subject, Predicate, Object, Context}
	for _, a := range all {
		for _, b := range all {
			if b == a {
				continue
			}
			for _, c := range all {
				if c == a || c == b {
					continue
				}
				d := Subject + Predicate + Object + Context - a - b - c
				register([4]Field{a, b, c, d})
			}
		}
	}
}

func register(fields [4]Field) {
	var tag strings.Builder
	o := &Order{fields: fields}
	for i, f := range fields {
		tag.WriteByte(f.Letter())
		o.index[f] = i
	}
	o.tag = tag.String()
	orders = append(orders, o)
	registry[o.tag] = o
}

// ForTag returns the order named by tag, such as "spoc" or "cpos".
func ForTag(tag string) (*Order, error) {
	if o, ok := registry[tag]; ok {
		return o, nil
	}
	return nil, errors.Wrapf(ErrUnknownOrder, "%q", tag)
}

// MustForTag is like ForTag but panics on an unrecognized tag.
func MustForTag(tag string) *Order {
	o, err := ForTag(tag)
	if err != nil {
		panic(err)
	}
	return o
}

// Orders returns all 24 orders.
func Orders() []*Order {
	return append([]*Order(nil), orders...)
}

// Tag returns the order's four-letter name.
func (o *Order) Tag() string { return o.tag }

func (o *Order) String() string { return o.tag }

// Fields returns the fields in key order.
func (o *Order) Fields() [4]Field { return o.fields }

// Position returns the key position of f.
func (o *Order) Position(f Field) int { return o.index[f] }

// Permute returns the values of q in key order.
func (o *Order) Permute(q Quad) [4]uint64 {
	return [4]uint64{q[o.fields[0]], q[o.fields[1]], q[o.fields[2]], q[o.fields[3]]}
}

// Unpermute is the inverse of Permute.
func (o *Order) Unpermute(values [4]uint64) Quad {
	var q Quad
	for i, f := range o.fields {
		q[f] = values[i]
	}
	return q
}

// Len returns the encoded length of q.
func (o *Order) Len(q Quad) int {
	return varint.ListLen(q[0], q[1], q[2], q[3])
}

// Append appends the key of q to dst.
func (o *Order) Append(dst []byte, q Quad) []byte {
	for _, f := range o.fields {
		dst = varint.Append(dst, q[f])
	}
	return dst
}

// Write encodes the key of q into w, failing with keybuf.ErrOverflow when w
// is too small.
func (o *Order) Write(w *keybuf.Writer, q Quad) error {
	for _, f := range o.fields {
		if err := varint.Write(w, q[f]); err != nil {
			return errors.Wrapf(err, "encoding %s of %s key", f, o.tag)
		}
	}
	return nil
}

// Decode reads a key from r. Fields whose known value is Unknown are decoded;
// the rest are skipped and taken from known.
func (o *Order) Decode(r keybuf.Reader, known Quad) (Quad, error) {
	var q Quad
	for _, f := range o.fields {
		v, err := o.readField(r, f, known[f])
		if err != nil {
			return Quad{}, err
		}
		q[f] = v
	}
	return q, nil
}

func (o *Order) readField(r keybuf.Reader, f Field, known uint64) (uint64, error) {
	if known != Unknown {
		if err := varint.Skip(r); err != nil {
			return 0, errors.Wrapf(err, "skipping %s of %s key", f, o.tag)
		}
		return known, nil
	}
	v, err := varint.Read(r)
	if err != nil {
		return 0, errors.Wrapf(err, "decoding %s of %s key", f, o.tag)
	}
	return v, nil
}

// Bound reports, in key order, which of s, p, obj and c are bound.
func (o *Order) Bound(s, p, obj, c uint64) [4]bool {
	q := Quad{s, p, obj, c}
	var bound [4]bool
	for i, f := range o.fields {
		bound[i] = IsBound(f, q[f])
	}
	return bound
}

// PatternScore returns how many leading key fields the pattern binds. An
// index with a higher score narrows a scan further; zero means a full scan.
func (o *Order) PatternScore(pattern Quad) int {
	score := 0
	for _, f := range o.fields {
		if !IsBound(f, pattern[f]) {
			break
		}
		score++
	}
	return score
}
