package store

import "github.com/ckb-go/chainstore/chain"

// StoreBatch is the write-side facade (§4.F): every mutating method stages
// changes in an underlying Batch and nothing is visible to ChainStore
// readers until Commit succeeds. Discard (or an unflushed Batch going out
// of scope) leaves no trace, the same all-or-nothing contract the teacher
// relies on for its bbolt write transactions in node/store/apply_stage4_5.go.
type StoreBatch struct {
	batch Batch
}

// NewBatch starts a new write batch against backend.
func NewBatch(backend Backend) (*StoreBatch, error) {
	b, err := backend.Begin()
	if err != nil {
		return nil, err
	}
	return &StoreBatch{batch: b}, nil
}

// InsertBlock stores a block's header, uncles, proposal ids and body under
// its header hash. It does not touch the INDEX, CELL_META or CELL_SET
// columns; see AttachBlock.
func (b *StoreBatch) InsertBlock(block *chain.Block) error {
	hash := block.Header.Hash
	if err := b.batch.Insert(ColumnBlockHeader, hash[:], encodeHeader(block.Header)); err != nil {
		return err
	}
	if err := b.batch.Insert(ColumnBlockUncle, hash[:], encodeUncleBlocks(block.Uncles)); err != nil {
		return err
	}
	if err := b.batch.Insert(ColumnBlockProposalIDs, hash[:], encodeProposalShortIds(block.Proposals)); err != nil {
		return err
	}
	if err := b.batch.Insert(ColumnBlockBody, hash[:], encodeBlockBody(block.Transactions)); err != nil {
		return err
	}
	return nil
}

// InsertBlockExt stores the chain-position metadata for blockHash.
func (b *StoreBatch) InsertBlockExt(blockHash chain.Hash, ext chain.BlockExt) error {
	return b.batch.Insert(ColumnBlockExt, blockHash[:], encodeBlockExt(ext))
}

// InsertTipHeader records header's hash as the chain tip. The header
// itself must already have been (or be about to be) stored via
// InsertBlock; this only updates the META pointer.
func (b *StoreBatch) InsertTipHeader(header chain.Header) error {
	return b.batch.Insert(ColumnMeta, metaKeyTipHeader, header.Hash[:])
}

// InsertCurrentEpochExt records epoch as the singleton "current epoch".
func (b *StoreBatch) InsertCurrentEpochExt(epoch chain.EpochExt) error {
	return b.batch.Insert(ColumnMeta, metaKeyCurrentEpoch, encodeEpochExt(epoch))
}

// InsertBlockEpochIndex records that blockHash belongs to the epoch
// anchored at epochHash.
func (b *StoreBatch) InsertBlockEpochIndex(blockHash, epochHash chain.Hash) error {
	return b.batch.Insert(ColumnBlockEpoch, blockHash[:], epochHash[:])
}

// InsertEpochExt stores epoch under its anchor hash and publishes the
// number-to-anchor direction of the EPOCH column.
func (b *StoreBatch) InsertEpochExt(anchorHash chain.Hash, epoch chain.EpochExt) error {
	if err := b.batch.Insert(ColumnEpoch, anchorHash[:], encodeEpochExt(epoch)); err != nil {
		return err
	}
	return b.batch.Insert(ColumnEpoch, encodeU64(epoch.Number), anchorHash[:])
}

// AttachBlock extends the live chain with block: it publishes the
// transaction addresses and cell metadata of every transaction, the
// INDEX column's two directions, and marks each uncle as seen.
func (b *StoreBatch) AttachBlock(block *chain.Block) error {
	blockHash := block.Header.Hash

	for i := range block.Transactions {
		tx := &block.Transactions[i]
		addr := chain.TransactionAddress{BlockHash: blockHash, Index: uint32(i)}
		if err := b.batch.Insert(ColumnTransactionAddr, tx.Hash[:], encodeTransactionAddress(addr)); err != nil {
			return err
		}

		cellbase := i == 0
		for j := range tx.Outputs {
			out := &tx.Outputs[j]
			op := chain.OutPoint{TxHash: tx.Hash, Index: uint32(j)}
			meta := chain.CellMeta{
				OutPoint: op,
				BlockInfo: chain.BlockInfo{
					Number: block.Header.Number,
					Epoch:  block.Header.Epoch,
				},
				Cellbase: cellbase,
				Capacity: out.Capacity,
				DataHash: out.DataHash,
			}
			if err := b.batch.Insert(ColumnCellMeta, cellKeyBytes(op), encodeCellMeta(meta)); err != nil {
				return err
			}
		}
	}

	numberKey := encodeU64(block.Header.Number)
	if err := b.batch.Insert(ColumnIndex, numberKey, blockHash[:]); err != nil {
		return err
	}
	for _, uncle := range block.Uncles {
		if err := b.batch.Insert(ColumnUncles, uncle.Header.Hash[:], []byte{}); err != nil {
			return err
		}
	}
	return b.batch.Insert(ColumnIndex, blockHash[:], numberKey)
}

// DetachBlock reverses AttachBlock: it removes the transaction addresses,
// cell metadata, uncle markers and both INDEX directions contributed by
// block. It does not touch CELL_SET; spend/unspend bookkeeping there is
// the caller's responsibility via UpdateCellSet/DeleteCellSet, since
// detaching a block does not by itself tell the batch which outputs of
// earlier transactions were re-live'd.
func (b *StoreBatch) DetachBlock(block *chain.Block) error {
	for i := range block.Transactions {
		tx := &block.Transactions[i]
		if err := b.batch.Delete(ColumnTransactionAddr, tx.Hash[:]); err != nil {
			return err
		}
		for j := range tx.Outputs {
			op := chain.OutPoint{TxHash: tx.Hash, Index: uint32(j)}
			if err := b.batch.Delete(ColumnCellMeta, cellKeyBytes(op)); err != nil {
				return err
			}
		}
	}

	for _, uncle := range block.Uncles {
		if err := b.batch.Delete(ColumnUncles, uncle.Header.Hash[:]); err != nil {
			return err
		}
	}
	if err := b.batch.Delete(ColumnIndex, encodeU64(block.Header.Number)); err != nil {
		return err
	}
	return b.batch.Delete(ColumnIndex, block.Header.Hash[:])
}

// UpdateCellSet replaces (or creates) the TransactionMeta recorded for
// txHash. Callers must not call this with an all-dead meta; use
// DeleteCellSet instead once TransactionMeta.AllDead() holds.
func (b *StoreBatch) UpdateCellSet(txHash chain.Hash, meta chain.TransactionMeta) error {
	return b.batch.Insert(ColumnCellSet, txHash[:], encodeTransactionMeta(meta))
}

// DeleteCellSet removes the CELL_SET entry for txHash entirely, once every
// output it ever created has been spent.
func (b *StoreBatch) DeleteCellSet(txHash chain.Hash) error {
	return b.batch.Delete(ColumnCellSet, txHash[:])
}

// Commit makes every staged mutation visible atomically and consumes the
// batch.
func (b *StoreBatch) Commit() error {
	return b.batch.Commit()
}

// Discard abandons the batch. It is safe to call after Commit.
func (b *StoreBatch) Discard() error {
	return b.batch.Discard()
}
