package quad

import (
	"encoding/binary"
	"math/bits"
	"sync/atomic"

	"github.com/zeebo/xxh3"
)

// Cache is a direct-mapped cache of encoded keys for one order. Each slot
// holds an immutable entry behind an atomic pointer, so concurrent writers
// may evict each other but a reader only ever sees a whole entry, and an
// entry is used only when its quad equals the requested one.
type Cache struct {
	slots []atomic.Pointer[cacheEntry]
	mask  uint64
}

type cacheEntry struct {
	q   Quad
	key []byte
}

// NewCache returns a cache with size slots rounded up to a power of two, or
// nil when size is not positive.
func NewCache(size int) *Cache {
	if size <= 0 {
		return nil
	}
	n := 1 << bits.Len(uint(size-1))
	return &Cache{
		slots: make([]atomic.Pointer[cacheEntry], n),
		mask:  uint64(n - 1),
	}
}

// Size returns the number of slots.
func (c *Cache) Size() int { return len(c.slots) }

func (c *Cache) slot(q Quad) *atomic.Pointer[cacheEntry] {
	var b [32]byte
	binary.LittleEndian.PutUint64(b[0:], q[0])
	binary.LittleEndian.PutUint64(b[8:], q[1])
	binary.LittleEndian.PutUint64(b[16:], q[2])
	binary.LittleEndian.PutUint64(b[24:], q[3])
	return &c.slots[xxh3.Hash(b[:])&c.mask]
}
