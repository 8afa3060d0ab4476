package store

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrTransactionRO = errors.New("transaction is read-only")
)

// Storage is the interface for the underlying key-value store
type Storage interface {
	// Begin starts a new transaction
	Begin(writable bool) (Transaction, error)

	// Close closes the storage
	Close() error

	// Sync flushes writes to disk
	Sync() error
}

// Transaction represents a database transaction with snapshot isolation
type Transaction interface {
	// Get retrieves a value by key
	Get(table Table, key []byte) ([]byte, error)

	// Set stores a key-value pair
	Set(table Table, key, value []byte) error

	// Delete removes a key
	Delete(table Table, key []byte) error

	// Scan iterates over the keys of table that start with prefix. A nil
	// prefix scans the whole table.
	Scan(table Table, prefix []byte) (Iterator, error)

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error
}

// Iterator iterates over keys. Index entries carry everything in the key.
type Iterator interface {
	// Next advances to the next item
	Next() bool

	// Key returns the current key without its table prefix. The slice is
	// only valid until the next call to Next.
	Key() []byte

	// Close closes the iterator
	Close() error
}

// Table is a logical keyspace in the storage. Each quad index owns one.
type Table byte

const (
	// TableMeta holds store metadata such as the index layout.
	TableMeta Table = iota

	tableIndexBase
)

// MaxIndexes is the number of index tables that fit the table prefix byte.
const MaxIndexes = 256 - int(tableIndexBase)

// IndexTable returns the table of the i-th configured index.
func IndexTable(i int) Table {
	return tableIndexBase + Table(i)
}

func (t Table) String() string {
	if t == TableMeta {
		return "meta"
	}
	return "index-" + strconv.Itoa(int(t-tableIndexBase))
}

// TablePrefix returns a byte prefix for a table to namespace keys
func TablePrefix(table Table) []byte {
	return []byte{byte(table)}
}

// PrefixKey adds a table prefix to a key
func PrefixKey(table Table, key []byte) []byte {
	result := make([]byte, 1+len(key))
	result[0] = byte(table)
	copy(result[1:], key)
	return result
}
