// Package quad encodes RDF quads of dictionary identifiers into sortable index
// keys under any of the 24 field orders, and decodes them back.
package quad

import (
	"fmt"
	"math"
)

// Field identifies one position of a quad.
type Field uint8

const (
	Subject Field = iota
	Predicate
	Object
	Context
)

const fieldLetters = "spoc"

// Letter returns the field's letter in an order tag.
func (f Field) Letter() byte {
	return fieldLetters[f]
}

func (f Field) String() string {
	switch f {
	case Subject:
		return "subject"
	case Predicate:
		return "predicate"
	case Object:
		return "object"
	case Context:
		return "context"
	default:
		return "unknown"
	}
}

const (
	// Any leaves a subject, predicate or object unbound in a pattern.
	Any uint64 = 0

	// AnyContext leaves the context unbound in a pattern. Context 0 is the
	// default graph, so the wildcard is -1 read as a signed value.
	AnyContext uint64 = math.MaxUint64

	// Unknown marks a field whose value must be read from the key when
	// decoding.
	Unknown uint64 = math.MaxUint64
)

// Quad holds subject, predicate, object and context identifiers, indexed by
// Field.
type Quad [4]uint64

// AllUnknown decodes every field from the key.
var AllUnknown = Quad{Unknown, Unknown, Unknown, Unknown}

// New returns the quad (s, p, o, c).
func New(s, p, o, c uint64) Quad {
	return Quad{s, p, o, c}
}

func (q Quad) Subject() uint64   { return q[Subject] }
func (q Quad) Predicate() uint64 { return q[Predicate] }
func (q Quad) Object() uint64    { return q[Object] }
func (q Quad) Context() uint64   { return q[Context] }

func (q Quad) String() string {
	return fmt.Sprintf("(%d %d %d %d)", q[Subject], q[Predicate], q[Object], q[Context])
}

// IsBound reports whether v is a bound value for f: subject, predicate and
// object are bound when positive, the context when non-negative as a signed
// value.
func IsBound(f Field, v uint64) bool {
	if f == Context {
		return int64(v) >= 0
	}
	return v > 0
}

// Known converts a pattern into decoder input: bound fields are supplied,
// unbound ones become Unknown.
func Known(pattern Quad) Quad {
	known := AllUnknown
	for f := Subject; f <= Context; f++ {
		if IsBound(f, pattern[f]) {
			known[f] = pattern[f]
		}
	}
	return known
}
