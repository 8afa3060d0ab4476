package store

import (
	"github.com/aleksaelezovic/quadkey/pkg/keybuf"
	"github.com/aleksaelezovic/quadkey/pkg/match"
	"github.com/aleksaelezovic/quadkey/pkg/quad"
	"github.com/aleksaelezovic/quadkey/pkg/varint"
	"github.com/cockroachdb/errors"
)

// Pattern selects quads. quad.Any leaves the subject, predicate or object
// unbound; quad.AnyContext leaves the context unbound.
type Pattern struct {
	Subject   uint64
	Predicate uint64
	Object    uint64
	Context   uint64
}

// AnyPattern matches every quad.
var AnyPattern = Pattern{Context: quad.AnyContext}

func (p Pattern) quad() quad.Quad {
	return quad.New(p.Subject, p.Predicate, p.Object, p.Context)
}

// QuadIterator iterates over quads matching a pattern
type QuadIterator interface {
	Next() bool
	Quad() quad.Quad
	Err() error
	Close() error
}

// Match scans the index best suited to pattern and returns the quads it
// matches. The iterator holds a read transaction until closed.
func (s *QuadStore) Match(pattern Pattern) (QuadIterator, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	qi, err := s.scan(txn, pattern.quad())
	if err != nil {
		_ = txn.Rollback()
		return nil, err
	}
	qi.txn = txn
	return qi, nil
}

// scan returns an iterator over the quads of txn matching pattern. The
// iterator does not own txn.
func (s *QuadStore) scan(txn Transaction, pattern quad.Quad) (*quadIterator, error) {
	idx, score := s.selectIndex(pattern)
	prefix := buildScanPrefix(idx.order, pattern)
	it, err := txn.Scan(idx.table, prefix)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("scanning index", "order", idx.order.Tag(), "score", score, "prefix_len", len(prefix))

	return &quadIterator{
		it:      it,
		order:   idx.order,
		matcher: match.ForPattern(idx.order, pattern),
		known:   quad.Known(pattern),
	}, nil
}

// selectIndex chooses the index whose leading fields the pattern binds
// furthest. Ties go to the earlier configured index.
func (s *QuadStore) selectIndex(pattern quad.Quad) (*quadIndex, int) {
	best, bestScore := s.indexes[0], -1
	for _, idx := range s.indexes {
		if score := idx.order.PatternScore(pattern); score > bestScore {
			best, bestScore = idx, score
		}
	}
	return best, bestScore
}

// buildScanPrefix encodes the leading bound fields of pattern in key order.
// The scan may still return keys that differ in later bound fields, so every
// key is re-checked by a matcher.
func buildScanPrefix(o *quad.Order, pattern quad.Quad) []byte {
	var prefix []byte
	for _, f := range o.Fields() {
		if !quad.IsBound(f, pattern[f]) {
			break
		}
		prefix = varint.Append(prefix, pattern[f])
	}
	return prefix
}

type quadIterator struct {
	txn     Transaction // set when the iterator owns its transaction
	it      Iterator
	order   *quad.Order
	matcher *match.Matcher
	known   quad.Quad
	reader  keybuf.Slice
	current quad.Quad
	err     error
	closed  bool
}

func (qi *quadIterator) Next() bool {
	if qi.closed || qi.err != nil {
		return false
	}
	for qi.it.Next() {
		key := qi.it.Key()
		qi.reader.Reset(key)
		if !qi.matcher.Matches(&qi.reader) {
			continue
		}
		qi.reader.Reset(key)
		q, err := qi.order.Decode(&qi.reader, qi.known)
		if err != nil {
			qi.err = errors.Wrapf(err, "corrupt %s key %x", qi.order, key)
			return false
		}
		qi.current = q
		return true
	}
	return false
}

func (qi *quadIterator) Quad() quad.Quad {
	return qi.current
}

func (qi *quadIterator) Err() error {
	return qi.err
}

func (qi *quadIterator) Close() error {
	if qi.closed {
		return nil
	}
	qi.closed = true
	_ = qi.it.Close()
	if qi.txn == nil {
		return nil
	}
	return qi.txn.Rollback()
}

// Collect drains the iterator into a slice and closes it.
func Collect(it QuadIterator) ([]quad.Quad, error) {
	defer it.Close()
	var quads []quad.Quad
	for it.Next() {
		quads = append(quads, it.Quad())
	}
	return quads, it.Err()
}
