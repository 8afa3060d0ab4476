package quad

import "github.com/aleksaelezovic/quadkey/pkg/keybuf"

// Decode reads the key of order o from key, taking fields that are not
// Unknown in known from the caller instead of the bytes.
func Decode(o *Order, key []byte, known Quad) (Quad, error) {
	return o.Decode(keybuf.NewSlice(key), known)
}
