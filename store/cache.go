package store

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ckb-go/chainstore/chain"
)

// cellOutputKey is the composite key for the cell-output read-through
// cache: (tx_hash, index) is the same pair a CellKey encodes, but we keep
// it as a plain comparable struct here rather than reusing CellKey so the
// cache package has no dependency on the key-encoding scheme of any one
// column.
type cellOutputKey struct {
	txHash chain.Hash
	index  uint32
}

// caches holds the two bounded read-through caches the engine keeps in
// front of the backend: recently resolved headers and recently resolved
// cell outputs. Both follow the same discipline as the teacher's
// node/store mempool lookups in db.go: release any lock before touching
// the backend, then re-acquire only to populate the cache, so a slow read
// never holds other readers off the cache.
//
// A nil *lru.Cache means that cache is disabled (StoreConfig size 0):
// callers must check for nil before Get/Add rather than constructing an
// lru.Cache with a non-positive size, which lru.New itself rejects.
type caches struct {
	headers *lru.Cache[chain.Hash, chain.Header]
	outputs *lru.Cache[cellOutputKey, chain.CellOutput]
}

func newCaches(cfg StoreConfig) (*caches, error) {
	var headers *lru.Cache[chain.Hash, chain.Header]
	if cfg.HeaderCacheSize > 0 {
		h, err := lru.New[chain.Hash, chain.Header](cfg.HeaderCacheSize)
		if err != nil {
			return nil, newErr(ErrBackendIO, "allocate header cache", err)
		}
		headers = h
	}

	var outputs *lru.Cache[cellOutputKey, chain.CellOutput]
	if cfg.CellOutputCacheSize > 0 {
		o, err := lru.New[cellOutputKey, chain.CellOutput](cfg.CellOutputCacheSize)
		if err != nil {
			return nil, newErr(ErrBackendIO, "allocate cell output cache", err)
		}
		outputs = o
	}

	return &caches{headers: headers, outputs: outputs}, nil
}
