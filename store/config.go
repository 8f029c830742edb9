package store

import "fmt"

// StoreConfig tunes the two read-through caches ChainStore keeps in front
// of the backend. It carries no backend-selection knobs because
// OpenBoltBackend is the only constructor today; a second backend would add its own
// Open<Backend> function rather than a field here, mirroring the teacher's
// one-constructor-per-backend shape in node/store/db.go.
type StoreConfig struct {
	// HeaderCacheSize bounds the number of headers kept resident by hash.
	// Zero disables the header cache entirely.
	HeaderCacheSize int
	// CellOutputCacheSize bounds the number of (tx_hash, index) -> output
	// pairs kept resident. Zero disables the cell output cache entirely.
	CellOutputCacheSize int
}

// DefaultStoreConfig matches the working set of a single validating node
// tracking recent tip history: a few thousand headers and a modest
// live-cell working set.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		HeaderCacheSize:     4096,
		CellOutputCacheSize: 128,
	}
}

// Validate rejects negative sizes. Zero is valid and disables the
// corresponding cache.
func (c StoreConfig) Validate() error {
	if c.HeaderCacheSize < 0 {
		return fmt.Errorf("store: HeaderCacheSize must be >= 0, got %d", c.HeaderCacheSize)
	}
	if c.CellOutputCacheSize < 0 {
		return fmt.Errorf("store: CellOutputCacheSize must be >= 0, got %d", c.CellOutputCacheSize)
	}
	return nil
}
