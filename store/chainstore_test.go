package store

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ckb-go/chainstore/chain"
)

func openTestStore(t *testing.T) *ChainStore {
	t.Helper()
	backend, err := OpenBoltBackend(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("OpenBoltBackend: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	s, err := NewChainStore(backend, DefaultStoreConfig())
	if err != nil {
		t.Fatalf("NewChainStore: %v", err)
	}
	return s
}

func buildGenesisConsensus() chain.Consensus {
	cellbase := chain.Transaction{
		Outputs: []chain.CellOutput{
			{Capacity: 0, LockScript: chain.Script{CodeHash: chain.Hash{1}}, DataHash: chain.Hash{}},
			{Capacity: 5000, LockScript: chain.Script{CodeHash: chain.Hash{2}}, DataHash: chain.Hash{}},
		},
	}
	cellbase.ComputeHash()

	header := chain.Header{
		ParentHash:       chain.ZeroHash,
		Number:           0,
		Timestamp:        1_600_000_000,
		Epoch:            0,
		Difficulty:       big.NewInt(1000),
		TransactionsRoot: chain.MerkleRoot([]chain.Hash{cellbase.Hash}),
	}
	header.ComputeHash()

	genesis := chain.Block{
		Header:       header,
		Transactions: []chain.Transaction{cellbase},
	}

	epoch := chain.EpochExt{
		Number:                       0,
		BaseBlockReward:              1000,
		PreviousEpochHashRate:        big.NewInt(1),
		LastBlockHashInPreviousEpoch: chain.ZeroHash,
		StartNumber:                  0,
		Length:                       2000,
		Difficulty:                   big.NewInt(1000),
	}

	return chain.Consensus{GenesisBlock: genesis, GenesisEpochExt: epoch}
}

func TestInitGenesis_TipAndBlockAreReadable(t *testing.T) {
	s := openTestStore(t)
	consensus := buildGenesisConsensus()

	if err := InitGenesis(s, consensus); err != nil {
		t.Fatalf("InitGenesis: %v", err)
	}

	tip, ok := s.TipHeader()
	if !ok {
		t.Fatalf("expected tip header to be set after genesis")
	}
	if tip.Hash != consensus.GenesisBlock.Header.Hash {
		t.Fatalf("tip hash = %x, want genesis hash %x", tip.Hash, consensus.GenesisBlock.Header.Hash)
	}

	block, ok := s.Block(tip.Hash)
	if !ok {
		t.Fatalf("expected genesis block to be readable by hash")
	}
	if len(block.Transactions) != 1 {
		t.Fatalf("expected 1 transaction in genesis block, got %d", len(block.Transactions))
	}

	hash, ok := s.BlockHash(0)
	if !ok || hash != tip.Hash {
		t.Fatalf("BlockHash(0) = (%x,%v), want %x", hash, ok, tip.Hash)
	}
	number, ok := s.BlockNumber(tip.Hash)
	if !ok || number != 0 {
		t.Fatalf("BlockNumber(genesis) = (%d,%v), want 0", number, ok)
	}

	epoch, ok := s.CurrentEpochExt()
	if !ok || epoch.Number != 0 {
		t.Fatalf("CurrentEpochExt: got (%+v,%v)", epoch, ok)
	}
	epochByIndex, ok := s.EpochExt(chain.ZeroHash)
	if !ok || epochByIndex.Length != 2000 {
		t.Fatalf("EpochExt(anchor): got (%+v,%v)", epochByIndex, ok)
	}
}

func TestInitGenesis_CellOutputAndCellMetaAndCellSet(t *testing.T) {
	s := openTestStore(t)
	consensus := buildGenesisConsensus()
	cellbase := consensus.GenesisBlock.Transactions[0]

	if err := InitGenesis(s, consensus); err != nil {
		t.Fatalf("InitGenesis: %v", err)
	}

	out, ok := s.CellOutput(cellbase.Hash, 1)
	if !ok {
		t.Fatalf("expected cell output 1 to be readable")
	}
	if out.Capacity != 5000 {
		t.Fatalf("CellOutput capacity = %d, want 5000", out.Capacity)
	}

	// Second lookup should hit the cache and return the same value.
	out2, ok := s.CellOutput(cellbase.Hash, 1)
	if !ok || out2.Capacity != out.Capacity {
		t.Fatalf("cached CellOutput mismatch: %+v vs %+v", out, out2)
	}

	meta, ok := s.CellMeta(cellbase.Hash, 1)
	if !ok {
		t.Fatalf("expected cell meta to be readable")
	}
	if !meta.Cellbase || meta.Capacity != 5000 {
		t.Fatalf("unexpected cell meta: %+v", meta)
	}

	var seen int
	err := s.TraverseCellSet(func(txHash chain.Hash, m chain.TransactionMeta) error {
		seen++
		if txHash != cellbase.Hash {
			t.Fatalf("unexpected tx hash in cell set: %x", txHash)
		}
		if !m.Cellbase || m.OutputCount != 2 {
			t.Fatalf("unexpected transaction meta: %+v", m)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("TraverseCellSet: %v", err)
	}
	if seen != 1 {
		t.Fatalf("expected to visit exactly 1 cell set entry, got %d", seen)
	}
}

func TestChainStore_ZeroCacheSizeDisablesCachingButStillReads(t *testing.T) {
	backend, err := OpenBoltBackend(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("OpenBoltBackend: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })

	s, err := NewChainStore(backend, StoreConfig{HeaderCacheSize: 0, CellOutputCacheSize: 0})
	if err != nil {
		t.Fatalf("NewChainStore: %v", err)
	}

	consensus := buildGenesisConsensus()
	if err := InitGenesis(s, consensus); err != nil {
		t.Fatalf("InitGenesis: %v", err)
	}

	tip, ok := s.TipHeader()
	if !ok || tip.Hash != consensus.GenesisBlock.Header.Hash {
		t.Fatalf("TipHeader with caching disabled: got (%+v,%v)", tip, ok)
	}
	out, ok := s.CellOutput(consensus.GenesisBlock.Transactions[0].Hash, 1)
	if !ok || out.Capacity != 5000 {
		t.Fatalf("CellOutput with caching disabled: got (%+v,%v)", out, ok)
	}
}

func TestInitGenesis_AccumulatedCapacitySkipsFirstOutput(t *testing.T) {
	s := openTestStore(t)
	consensus := buildGenesisConsensus()
	// Give output 0 a non-zero capacity so that counting it would change
	// the sum.
	cellbase := &consensus.GenesisBlock.Transactions[0]
	cellbase.Outputs[0].Capacity = 1000
	cellbase.ComputeHash()

	if err := InitGenesis(s, consensus); err != nil {
		t.Fatalf("InitGenesis: %v", err)
	}

	ext, ok := s.BlockExt(consensus.GenesisBlock.Header.Hash)
	if !ok {
		t.Fatalf("expected genesis block ext to be readable")
	}
	if ext.DaoStats.AccumulatedCapacity != 5000 {
		t.Fatalf("AccumulatedCapacity = %d, want 5000 (output 0's capacity excluded)", ext.DaoStats.AccumulatedCapacity)
	}
	if ext.Verified == nil || !*ext.Verified {
		t.Fatalf("expected genesis block ext to be marked verified")
	}
}
