package quad

import (
	"github.com/aleksaelezovic/quadkey/pkg/keybuf"
	"github.com/aleksaelezovic/quadkey/pkg/varint"
	"github.com/cockroachdb/errors"
)

// ErrInvalidSplit is returned for a split index outside [0, 4].
var ErrInvalidSplit = errors.New("split index must be between 0 and 4")

// emptyKeyMarker is the whole key of a split-0 entry, since an index key may
// not be empty.
const emptyKeyMarker = 0x01

// SplitEncoder divides the fields of an order between an entry's key and its
// value: the first split fields go to the key, the rest to the value.
type SplitEncoder struct {
	order *Order
	split int
}

// NewSplitEncoder returns a SplitEncoder for order and split.
func NewSplitEncoder(order *Order, split int) (*SplitEncoder, error) {
	if err := CheckSplit(split); err != nil {
		return nil, err
	}
	return &SplitEncoder{order: order, split: split}, nil
}

// CheckSplit validates a split index.
func CheckSplit(split int) error {
	if split < 0 || split > 4 {
		return errors.Wrapf(ErrInvalidSplit, "got %d", split)
	}
	return nil
}

// Order returns the encoder's field order.
func (e *SplitEncoder) Order() *Order { return e.order }

// Split returns the number of fields stored in the key.
func (e *SplitEncoder) Split() int { return e.split }

// Append appends the key part of q to key and the value part to value.
func (e *SplitEncoder) Append(key, value []byte, q Quad) ([]byte, []byte) {
	if e.split == 0 {
		key = append(key, emptyKeyMarker)
	}
	for i, f := range e.order.fields {
		if i < e.split {
			key = varint.Append(key, q[f])
		} else {
			value = varint.Append(value, q[f])
		}
	}
	return key, value
}

// Write is like Append but writes into fixed-capacity writers.
func (e *SplitEncoder) Write(key, value *keybuf.Writer, q Quad) error {
	if e.split == 0 {
		if err := key.WriteByte(emptyKeyMarker); err != nil {
			return err
		}
	}
	for i, f := range e.order.fields {
		w := value
		if i < e.split {
			w = key
		}
		if err := varint.Write(w, q[f]); err != nil {
			return errors.Wrapf(err, "encoding %s of %s entry", f, e.order.tag)
		}
	}
	return nil
}

// Decode reads an entry written by Append. Fields that are not Unknown in
// known are skipped and taken from known.
func (e *SplitEncoder) Decode(key, value []byte, known Quad) (Quad, error) {
	kr, vr := keybuf.NewSlice(key), keybuf.NewSlice(value)
	if e.split == 0 {
		if err := kr.Skip(1); err != nil {
			return Quad{}, errors.Wrap(err, "reading empty key marker")
		}
	}
	var q Quad
	for i, f := range e.order.fields {
		var r keybuf.Reader = vr
		if i < e.split {
			r = kr
		}
		v, err := e.order.readField(r, f, known[f])
		if err != nil {
			return Quad{}, err
		}
		q[f] = v
	}
	return q, nil
}
