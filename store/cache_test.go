package store

import (
	"testing"

	"github.com/ckb-go/chainstore/chain"
)

func TestNewCaches_ZeroSizeDisablesCache(t *testing.T) {
	c, err := newCaches(StoreConfig{HeaderCacheSize: 0, CellOutputCacheSize: 0})
	if err != nil {
		t.Fatalf("newCaches: %v", err)
	}
	if c.headers != nil {
		t.Fatalf("expected header cache to be disabled (nil) for size 0")
	}
	if c.outputs != nil {
		t.Fatalf("expected cell output cache to be disabled (nil) for size 0")
	}
}

func TestHeaderCache_EvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	c, err := newCaches(StoreConfig{HeaderCacheSize: 4, CellOutputCacheSize: 1})
	if err != nil {
		t.Fatalf("newCaches: %v", err)
	}

	hashes := make([]chain.Hash, 4)
	for i := range hashes {
		hashes[i] = chain.Hash{byte(i + 1)}
		c.headers.Add(hashes[i], chain.Header{Number: uint64(i)})
	}

	// A 5th distinct header pushes the 4-capacity cache over the edge: the
	// one entry evicted must be hashes[0], since none of the first four were
	// touched again after their initial insert.
	fifth := chain.Hash{9}
	c.headers.Add(fifth, chain.Header{Number: 99})

	if c.headers.Len() != 4 {
		t.Fatalf("cache len = %d, want 4 (capacity)", c.headers.Len())
	}
	if _, ok := c.headers.Get(hashes[0]); ok {
		t.Fatalf("expected least-recently-used entry to be evicted")
	}
	for i := 1; i < len(hashes); i++ {
		if _, ok := c.headers.Get(hashes[i]); !ok {
			t.Fatalf("expected entry %d to survive eviction", i)
		}
	}
	if _, ok := c.headers.Get(fifth); !ok {
		t.Fatalf("expected newly inserted entry to be present")
	}
}
