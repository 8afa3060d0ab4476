package store

import (
	"log/slog"
	"strings"

	"github.com/aleksaelezovic/quadkey/pkg/quad"
	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidQuad is returned when a stored quad holds a wildcard value.
	ErrInvalidQuad = errors.New("quad contains a wildcard value")

	// ErrIndexMismatch is returned when a store is opened with an index
	// layout different from the one it was created with.
	ErrIndexMismatch = errors.New("index layout does not match stored layout")
)

var indexLayoutKey = []byte("indexes")

// Index entries carry everything in the key.
var emptyValue = []byte{}

// Options configures a QuadStore.
type Options struct {
	// Indexes lists the field orders to maintain. The first is the default
	// for scans no other index can narrow.
	Indexes []*quad.Order

	// CacheSize is the slot count of each index's key cache; 0 disables it.
	CacheSize int

	Logger *slog.Logger
}

// QuadStore keeps quads of term identifiers in one sorted index per field
// order and answers pattern scans from the best-suited index.
type QuadStore struct {
	storage Storage
	indexes []*quadIndex
	logger  *slog.Logger
}

type quadIndex struct {
	table Table
	order *quad.Order
	enc   *quad.KeyEncoder
}

// NewQuadStore opens a quad store on storage. A fresh storage records the
// index layout; an existing one must have been created with the same layout.
func NewQuadStore(storage Storage, opts Options) (*QuadStore, error) {
	if len(opts.Indexes) == 0 {
		return nil, errors.New("at least one index is required")
	}
	if len(opts.Indexes) > MaxIndexes {
		return nil, errors.Newf("%d indexes exceed the limit of %d", len(opts.Indexes), MaxIndexes)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &QuadStore{storage: storage, logger: logger}
	tags := make([]string, len(opts.Indexes))
	for i, o := range opts.Indexes {
		s.indexes = append(s.indexes, &quadIndex{
			table: IndexTable(i),
			order: o,
			enc:   quad.NewKeyEncoder(o, opts.CacheSize),
		})
		tags[i] = o.Tag()
	}

	if err := s.checkLayout(strings.Join(tags, ",")); err != nil {
		return nil, err
	}
	logger.Info("opened quad store", "indexes", tags, "cache_size", opts.CacheSize)
	return s, nil
}

func (s *QuadStore) checkLayout(layout string) error {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	stored, err := txn.Get(TableMeta, indexLayoutKey)
	switch {
	case errors.Is(err, ErrNotFound):
		if err := txn.Set(TableMeta, indexLayoutKey, []byte(layout)); err != nil {
			return errors.Wrap(err, "failed to record index layout")
		}
		return txn.Commit()
	case err != nil:
		return errors.Wrap(err, "failed to read index layout")
	case string(stored) != layout:
		return errors.Wrapf(ErrIndexMismatch, "stored %q, configured %q", stored, layout)
	}
	return nil
}

// Close closes the underlying storage
func (s *QuadStore) Close() error {
	return s.storage.Close()
}

// Indexes returns the maintained field orders.
func (s *QuadStore) Indexes() []*quad.Order {
	orders := make([]*quad.Order, len(s.indexes))
	for i, idx := range s.indexes {
		orders[i] = idx.order
	}
	return orders
}

// Add inserts quads into every index in a single transaction.
func (s *QuadStore) Add(quads ...quad.Quad) error {
	return s.update(quads, func(txn Transaction, idx *quadIndex, key []byte) error {
		return txn.Set(idx.table, key, emptyValue)
	})
}

// Remove deletes quads from every index in a single transaction. Absent
// quads are ignored.
func (s *QuadStore) Remove(quads ...quad.Quad) error {
	return s.update(quads, func(txn Transaction, idx *quadIndex, key []byte) error {
		return txn.Delete(idx.table, key)
	})
}

func (s *QuadStore) update(quads []quad.Quad, apply func(Transaction, *quadIndex, []byte) error) error {
	for _, q := range quads {
		if err := validate(q); err != nil {
			return err
		}
	}

	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	for _, q := range quads {
		for _, idx := range s.indexes {
			if err := apply(txn, idx, idx.enc.Encode(q)); err != nil {
				return errors.Wrapf(err, "failed to update %s index for %s", idx.order, q)
			}
		}
	}
	if err := txn.Commit(); err != nil {
		return err
	}
	s.logger.Debug("updated quads", "count", len(quads))
	return nil
}

func validate(q quad.Quad) error {
	for f := quad.Subject; f <= quad.Context; f++ {
		if !quad.IsBound(f, q[f]) {
			return errors.Wrapf(ErrInvalidQuad, "%s of %s", f, q)
		}
	}
	return nil
}

// RemoveMatching deletes every quad matching pattern from all indexes in a
// single transaction and returns the number removed per context.
func (s *QuadStore) RemoveMatching(pattern Pattern) (map[uint64]int64, error) {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	// No iterator may be open while deleting.
	qi, err := s.scan(txn, pattern.quad())
	if err != nil {
		return nil, err
	}
	var hits []quad.Quad
	for qi.Next() {
		hits = append(hits, qi.Quad())
	}
	_ = qi.Close()
	if err := qi.Err(); err != nil {
		return nil, err
	}

	counts := make(map[uint64]int64)
	for _, q := range hits {
		for _, idx := range s.indexes {
			if err := txn.Delete(idx.table, idx.enc.Encode(q)); err != nil {
				return nil, errors.Wrapf(err, "failed to remove %s from %s index", q, idx.order)
			}
		}
		counts[q.Context()]++
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	s.logger.Debug("removed matching quads", "count", len(hits), "contexts", len(counts))
	return counts, nil
}

// Contains reports whether q is stored.
func (s *QuadStore) Contains(q quad.Quad) (bool, error) {
	if err := validate(q); err != nil {
		return false, err
	}
	txn, err := s.storage.Begin(false)
	if err != nil {
		return false, err
	}
	defer txn.Rollback()

	idx := s.indexes[0]
	_, err = txn.Get(idx.table, idx.enc.Encode(q))
	switch {
	case errors.Is(err, ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// Sync flushes the storage to disk.
func (s *QuadStore) Sync() error {
	return s.storage.Sync()
}

// Count returns the number of stored quads.
func (s *QuadStore) Count() (int64, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	it, err := txn.Scan(s.indexes[0].table, nil)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	var count int64
	for it.Next() {
		count++
	}
	return count, nil
}
