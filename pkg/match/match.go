// Package match compiles partial-equality predicates that test fields of an
// encoded key against target values without decoding the key.
//
// A matcher reads the key in field order. Unmatched fields up to the last
// matched one are skipped using their header byte; matched fields compare the
// header byte and then the payload. Fields after the last matched one are
// never read.
package match

import (
	"github.com/aleksaelezovic/quadkey/pkg/keybuf"
	"github.com/aleksaelezovic/quadkey/pkg/varint"
	"github.com/cockroachdb/errors"
)

// ErrMaskLength is returned when a mask does not have one entry per field.
var ErrMaskLength = errors.New("mask length does not match field count")

// Predicate tests an encoded buffer from its cursor position.
type Predicate interface {
	Matches(r keybuf.Reader) bool
}

// target is a value pre-rendered for comparison: its varint header byte and
// the payload bytes that follow it.
type target struct {
	header  byte
	payload []byte
}

func render(v uint64) target {
	b := varint.Append(nil, v)
	return target{header: b[0], payload: b[1:]}
}

// match consumes one encoded field from r and reports whether it equals t.
func (t *target) match(r keybuf.Reader) bool {
	h, err := r.ReadByte()
	if err != nil || h != t.header {
		return false
	}
	// Equal headers imply equal lengths.
	return len(t.payload) == 0 || keybuf.EqualRegion(t.payload, 0, r, len(t.payload))
}

func skip(r keybuf.Reader) bool {
	return varint.Skip(r) == nil
}

func maskBits(shouldMatch []bool) uint8 {
	var m uint8
	for i, ok := range shouldMatch {
		if ok {
			m |= 1 << i
		}
	}
	return m
}

// always matches every buffer without reading it.
type always struct{}

func (always) Matches(keybuf.Reader) bool { return true }

// Always returns a Predicate that matches everything.
func Always() Predicate { return always{} }
