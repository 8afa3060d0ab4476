package quad

// KeyEncoder encodes quads into keys of one order, optionally remembering
// recent encodings in a Cache. It is safe for concurrent use.
type KeyEncoder struct {
	order *Order
	cache *Cache
}

// NewKeyEncoder returns an encoder for order. A cacheSize of zero disables
// the cache.
func NewKeyEncoder(order *Order, cacheSize int) *KeyEncoder {
	return &KeyEncoder{order: order, cache: NewCache(cacheSize)}
}

// Order returns the encoder's field order.
func (e *KeyEncoder) Order() *Order { return e.order }

// Append appends the key of q to dst.
func (e *KeyEncoder) Append(dst []byte, q Quad) []byte {
	if e.cache == nil {
		return e.order.Append(dst, q)
	}
	slot := e.cache.slot(q)
	if entry := slot.Load(); entry != nil && entry.q == q {
		return append(dst, entry.key...)
	}
	key := e.order.Append(make([]byte, 0, e.order.Len(q)), q)
	slot.Store(&cacheEntry{q: q, key: key})
	return append(dst, key...)
}

// Encode returns the key of q in a new slice.
func (e *KeyEncoder) Encode(q Quad) []byte {
	return e.Append(make([]byte, 0, e.order.Len(q)), q)
}
