package store

import (
	"math/big"
	"testing"

	"github.com/ckb-go/chainstore/chain"
)

func buildChildBlock(s *ChainStore, parent chain.Header, spend chain.OutPoint) chain.Block {
	spendTx := chain.Transaction{
		Inputs: []chain.OutPoint{spend},
		Outputs: []chain.CellOutput{
			{Capacity: 100, LockScript: chain.Script{CodeHash: chain.Hash{7}}, DataHash: chain.Hash{}},
		},
		OutputsData: [][]byte{nil},
	}
	spendTx.ComputeHash()

	cellbase := chain.Transaction{
		Outputs: []chain.CellOutput{
			{Capacity: 0, LockScript: chain.Script{CodeHash: chain.Hash{8}}, DataHash: chain.Hash{}},
		},
	}
	cellbase.ComputeHash()

	header := chain.Header{
		ParentHash:       parent.Hash,
		Number:           parent.Number + 1,
		Timestamp:        parent.Timestamp + 1,
		Epoch:            parent.Epoch,
		Difficulty:       big.NewInt(1000),
		TransactionsRoot: chain.MerkleRoot([]chain.Hash{cellbase.Hash, spendTx.Hash}),
	}
	header.ComputeHash()

	return chain.Block{
		Header:       header,
		Transactions: []chain.Transaction{cellbase, spendTx},
	}
}

func TestBatch_AttachChildBlock_TransactionAndCellLookupsWork(t *testing.T) {
	s := openTestStore(t)
	consensus := buildGenesisConsensus()
	if err := InitGenesis(s, consensus); err != nil {
		t.Fatalf("InitGenesis: %v", err)
	}
	genesisCellbase := consensus.GenesisBlock.Transactions[0]
	spendPoint := chain.OutPoint{TxHash: genesisCellbase.Hash, Index: 1}

	tip, _ := s.TipHeader()
	parentExt, ok := s.BlockExt(tip.Hash)
	if !ok {
		t.Fatalf("expected genesis block ext to be readable")
	}
	child := buildChildBlock(s, tip, spendPoint)
	spendTx := child.Transactions[1]

	batch, err := s.NewBatch()
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	if err := batch.InsertBlock(&child); err != nil {
		t.Fatalf("InsertBlock: %v", err)
	}
	childTotalDifficulty := AccumulateDifficulty(parentExt.TotalDifficulty, child.Header.Difficulty)
	if err := batch.InsertBlockExt(child.Header.Hash, chain.BlockExt{ReceivedAt: child.Header.Timestamp, TotalDifficulty: childTotalDifficulty}); err != nil {
		t.Fatalf("InsertBlockExt: %v", err)
	}
	if err := batch.InsertTipHeader(child.Header); err != nil {
		t.Fatalf("InsertTipHeader: %v", err)
	}
	if err := batch.AttachBlock(&child); err != nil {
		t.Fatalf("AttachBlock: %v", err)
	}

	var spentMeta chain.TransactionMeta
	var found bool
	if err := s.TraverseCellSet(func(txHash chain.Hash, m chain.TransactionMeta) error {
		if txHash == genesisCellbase.Hash {
			spentMeta, found = m, true
		}
		return nil
	}); err != nil {
		t.Fatalf("TraverseCellSet: %v", err)
	}
	if !found {
		t.Fatalf("expected genesis cellbase to still have a cell set entry before spend recorded")
	}
	spentMeta.SetDead(spendPoint.Index)
	if spentMeta.AllDead() {
		if err := batch.DeleteCellSet(genesisCellbase.Hash); err != nil {
			t.Fatalf("DeleteCellSet: %v", err)
		}
	} else {
		if err := batch.UpdateCellSet(genesisCellbase.Hash, spentMeta); err != nil {
			t.Fatalf("UpdateCellSet: %v", err)
		}
	}

	newMeta := chain.NewTransactionMeta(child.Header.Number, child.Header.Epoch, uint32(len(spendTx.Outputs)))
	if err := batch.UpdateCellSet(spendTx.Hash, newMeta); err != nil {
		t.Fatalf("UpdateCellSet(new tx): %v", err)
	}

	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	tx, blockHash, ok := s.Transaction(spendTx.Hash)
	if !ok {
		t.Fatalf("expected spend transaction to be resolvable")
	}
	if blockHash != child.Header.Hash {
		t.Fatalf("Transaction block hash = %x, want %x", blockHash, child.Header.Hash)
	}
	if tx.Hash != spendTx.Hash {
		t.Fatalf("resolved transaction hash mismatch")
	}

	number, ok := s.BlockNumber(child.Header.Hash)
	if !ok || number != 1 {
		t.Fatalf("BlockNumber(child) = (%d,%v), want 1", number, ok)
	}

	cellbaseOut, ok := s.CellOutput(genesisCellbase.Hash, 0)
	if !ok || cellbaseOut.Capacity != 0 {
		t.Fatalf("expected genesis output 0 still readable (never spent): %+v ok=%v", cellbaseOut, ok)
	}

	childExt, ok := s.BlockExt(child.Header.Hash)
	if !ok || childExt.TotalDifficulty.Cmp(childTotalDifficulty) != 0 {
		t.Fatalf("BlockExt(child).TotalDifficulty = %v, want %v", childExt.TotalDifficulty, childTotalDifficulty)
	}
}

func TestBatch_DetachBlock_RemovesAttachedState(t *testing.T) {
	s := openTestStore(t)
	consensus := buildGenesisConsensus()
	if err := InitGenesis(s, consensus); err != nil {
		t.Fatalf("InitGenesis: %v", err)
	}
	genesisCellbase := consensus.GenesisBlock.Transactions[0]
	spendPoint := chain.OutPoint{TxHash: genesisCellbase.Hash, Index: 1}

	tip, _ := s.TipHeader()
	child := buildChildBlock(s, tip, spendPoint)

	attach, err := s.NewBatch()
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	if err := attach.InsertBlock(&child); err != nil {
		t.Fatalf("InsertBlock: %v", err)
	}
	if err := attach.AttachBlock(&child); err != nil {
		t.Fatalf("AttachBlock: %v", err)
	}
	if err := attach.Commit(); err != nil {
		t.Fatalf("Commit attach: %v", err)
	}

	if _, ok := s.BlockNumber(child.Header.Hash); !ok {
		t.Fatalf("expected child block number indexed after attach")
	}

	detach, err := s.NewBatch()
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	if err := detach.DetachBlock(&child); err != nil {
		t.Fatalf("DetachBlock: %v", err)
	}
	if err := detach.Commit(); err != nil {
		t.Fatalf("Commit detach: %v", err)
	}

	if _, ok := s.BlockNumber(child.Header.Hash); ok {
		t.Fatalf("expected child block number removed after detach")
	}
	if _, ok := s.BlockHash(child.Header.Number); ok {
		t.Fatalf("expected INDEX number->hash entry removed after detach")
	}
	if _, ok := s.TransactionAddress(child.Transactions[1].Hash); ok {
		t.Fatalf("expected transaction address removed after detach")
	}
	if _, ok := s.CellMeta(child.Transactions[0].Hash, 0); ok {
		t.Fatalf("expected cell meta removed after detach")
	}
	// The block's own header/body/ext rows are left in place by design;
	// DetachBlock only reverses AttachBlock's indexing side effects.
	if _, ok := s.Block(child.Header.Hash); !ok {
		t.Fatalf("expected block content to remain readable after detach")
	}
}

func TestBatch_AttachDetachBlock_TogglesIsUncle(t *testing.T) {
	s := openTestStore(t)
	consensus := buildGenesisConsensus()
	if err := InitGenesis(s, consensus); err != nil {
		t.Fatalf("InitGenesis: %v", err)
	}
	genesisCellbase := consensus.GenesisBlock.Transactions[0]
	spendPoint := chain.OutPoint{TxHash: genesisCellbase.Hash, Index: 1}

	tip, _ := s.TipHeader()
	child := buildChildBlock(s, tip, spendPoint)

	uncleHeader := chain.Header{
		ParentHash:       tip.Hash,
		Number:           tip.Number + 1,
		Timestamp:        tip.Timestamp + 2,
		Epoch:            tip.Epoch,
		Difficulty:       big.NewInt(900),
		TransactionsRoot: chain.MerkleRoot(nil),
	}
	uncleHeader.ComputeHash()
	child.Uncles = []chain.UncleBlock{{Header: uncleHeader}}
	child.Header.UnclesHash = uncleHeader.Hash
	child.Header.ComputeHash()

	if s.IsUncle(uncleHeader.Hash) {
		t.Fatalf("expected uncle to be unmarked before attach")
	}

	attach, err := s.NewBatch()
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	if err := attach.InsertBlock(&child); err != nil {
		t.Fatalf("InsertBlock: %v", err)
	}
	if err := attach.AttachBlock(&child); err != nil {
		t.Fatalf("AttachBlock: %v", err)
	}
	if err := attach.Commit(); err != nil {
		t.Fatalf("Commit attach: %v", err)
	}

	if !s.IsUncle(uncleHeader.Hash) {
		t.Fatalf("expected uncle to be marked after attach")
	}

	detach, err := s.NewBatch()
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	if err := detach.DetachBlock(&child); err != nil {
		t.Fatalf("DetachBlock: %v", err)
	}
	if err := detach.Commit(); err != nil {
		t.Fatalf("Commit detach: %v", err)
	}

	if s.IsUncle(uncleHeader.Hash) {
		t.Fatalf("expected uncle to be unmarked after detach")
	}
}
