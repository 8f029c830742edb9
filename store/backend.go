package store

// Backend abstracts a columnar key-value store with N fixed columns
// (component A, §4.A). The engine depends only on this interface; the sole
// implementation in this repo (boltBackend) targets bbolt, but any
// LSM-tree-style store with column families, atomic write-batches and
// prefix iteration could satisfy it.
type Backend interface {
	// Read returns the current value for key in col, or ok=false if absent.
	Read(col Column, key []byte) (val []byte, ok bool, err error)

	// PartialRead returns val[start:end] of the stored value without
	// materializing the full record where the backend can avoid it.
	PartialRead(col Column, key []byte, start, end int) (val []byte, ok bool, err error)

	// ProcessRead invokes fn with a borrowed view of the stored bytes.
	// fn must not retain the slice beyond its return. Returns ok=false
	// without invoking fn if the key is absent.
	ProcessRead(col Column, key []byte, fn func([]byte) error) (ok bool, err error)

	// Traverse iterates every key/value pair of col in key order.
	Traverse(col Column, fn func(key, val []byte) error) error

	// Begin starts an atomic write accumulator.
	Begin() (Batch, error)

	Close() error
}

// Batch accumulates Insert/Delete calls and commits them atomically.
// A Batch that is never committed must leave no trace once discarded.
type Batch interface {
	Insert(col Column, key, val []byte) error
	Delete(col Column, key []byte) error
	// Commit makes every accumulated mutation visible to readers atomically
	// and consumes the batch.
	Commit() error
	// Discard abandons the batch. Commit and Discard are mutually
	// exclusive; calling either after the other is a no-op.
	Discard() error
}
