package store

import (
	"math/big"
	"math/bits"

	"github.com/ckb-go/chainstore/chain"
)

// InitGenesis seeds an empty store with consensus's genesis block and
// genesis epoch, the one operation every other write in the store depends
// on having happened first. It is grounded on the Rust original's
// ChainKVStore::init: block, ext, tip pointer and epoch bookkeeping are
// inserted, then the block is attached, all in one batch so a crash mid-
// genesis leaves either nothing or a fully initialized store.
func InitGenesis(s *ChainStore, consensus chain.Consensus) error {
	genesis := consensus.GenesisBlock
	epoch := consensus.GenesisEpochExt
	genesisHash := genesis.Header.Hash

	s.log.Info("store: initializing genesis", "hash", genesisHash, "number", genesis.Header.Number)

	accumulatedCapacity, err := genesisAccumulatedCapacity(&genesis)
	if err != nil {
		return err
	}

	verified := true
	ext := chain.BlockExt{
		ReceivedAt:       genesis.Header.Timestamp,
		TotalDifficulty:  AccumulateDifficulty(big.NewInt(0), genesis.Header.Difficulty),
		TotalUnclesCount: 0,
		Verified:         &verified,
		TxsFees:          nil,
		DaoStats: chain.DaoStats{
			AccumulatedRate:     chain.DefaultAccumulatedRate,
			AccumulatedCapacity: accumulatedCapacity,
		},
	}

	batch, err := s.NewBatch()
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = batch.Discard()
		}
	}()

	for i := range genesis.Transactions {
		tx := &genesis.Transactions[i]
		var meta chain.TransactionMeta
		if i == 0 {
			meta = chain.NewCellbaseTransactionMeta(genesis.Header.Number, genesis.Header.Epoch, uint32(len(tx.Outputs)))
		} else {
			meta = chain.NewTransactionMeta(genesis.Header.Number, genesis.Header.Epoch, uint32(len(tx.Outputs)))
		}
		if err := batch.UpdateCellSet(tx.Hash, meta); err != nil {
			return err
		}
	}

	if err := batch.InsertBlock(&genesis); err != nil {
		return err
	}
	if err := batch.InsertBlockExt(genesisHash, ext); err != nil {
		return err
	}
	if err := batch.InsertTipHeader(genesis.Header); err != nil {
		return err
	}
	if err := batch.InsertCurrentEpochExt(epoch); err != nil {
		return err
	}
	if err := batch.InsertBlockEpochIndex(genesisHash, epoch.LastBlockHashInPreviousEpoch); err != nil {
		return err
	}
	if err := batch.InsertEpochExt(epoch.LastBlockHashInPreviousEpoch, epoch); err != nil {
		return err
	}
	for i := range genesis.Transactions {
		tx := &genesis.Transactions[i]
		var meta chain.TransactionMeta
		if i == 0 {
			meta = chain.NewCellbaseTransactionMeta(genesis.Header.Number, genesis.Header.Epoch, uint32(len(tx.Outputs)))
		} else {
			meta = chain.NewTransactionMeta(genesis.Header.Number, genesis.Header.Epoch, uint32(len(tx.Outputs)))
		}
		if err := batch.UpdateCellSet(tx.Hash, meta); err != nil {
			return err
		}
	}
	if err := batch.AttachBlock(&genesis); err != nil {
		return err
	}

	if err := batch.Commit(); err != nil {
		return err
	}
	committed = true
	s.log.Info("store: genesis initialized", "hash", genesisHash, "accumulated_capacity", accumulatedCapacity)
	return nil
}

// genesisAccumulatedCapacity sums the capacity of every output of the
// genesis cellbase except output 0 (the issuance output itself is excluded
// from the running DAO accounting, the same skip the Rust original performs
// via `.skip(1)`). Returns ErrOverflow if the sum would wrap a uint64.
func genesisAccumulatedCapacity(genesis *chain.Block) (uint64, error) {
	if len(genesis.Transactions) == 0 {
		return 0, nil
	}
	cellbase := &genesis.Transactions[0]
	if len(cellbase.Outputs) <= 1 {
		return 0, nil
	}
	var sum uint64
	for _, out := range cellbase.Outputs[1:] {
		var carry uint64
		sum, carry = bits.Add64(sum, out.Capacity, 0)
		if carry != 0 {
			return 0, newErr(ErrOverflow, "genesis accumulated capacity overflow", nil)
		}
	}
	return sum, nil
}
