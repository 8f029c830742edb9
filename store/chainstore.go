package store

import (
	"log/slog"

	"github.com/ckb-go/chainstore/chain"
)

// ChainStore is the read-side facade (§4.E): every getter here either
// returns a fully decoded value or ok=false for "not present". A readable
// backend that yields corrupt bytes is not a caller-recoverable condition,
// so Read/decode failures panic instead of threading an error return
// through every getter (see panics.go) — mirroring the teacher's stance in
// node/store/db.go that "db operation should be ok" once Open succeeds.
type ChainStore struct {
	backend Backend
	caches  *caches
	log     *slog.Logger
}

// NewChainStore wraps backend with the read-through caches described by
// cfg. Use DefaultStoreConfig for the common case.
func NewChainStore(backend Backend, cfg StoreConfig) (*ChainStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := newCaches(cfg)
	if err != nil {
		return nil, err
	}
	return &ChainStore{
		backend: backend,
		caches:  c,
		log:     slog.Default().With("component", "chainstore"),
	}, nil
}

func (s *ChainStore) read(col Column, key []byte) ([]byte, bool) {
	val, ok, err := s.backend.Read(col, key)
	if err != nil {
		panicBackendIO(err)
	}
	return val, ok
}

func (s *ChainStore) processRead(col Column, key []byte, fn func([]byte) error) bool {
	ok, err := s.backend.ProcessRead(col, key, fn)
	if err != nil {
		panicBackendIO(err)
	}
	return ok
}

// BlockHeader returns the header stored under hash, consulting the header
// cache before touching the backend.
func (s *ChainStore) BlockHeader(hash chain.Hash) (chain.Header, bool) {
	if s.caches.headers != nil {
		if h, ok := s.caches.headers.Get(hash); ok {
			return h, true
		}
	}

	raw, ok := s.read(ColumnBlockHeader, hash[:])
	if !ok {
		return chain.Header{}, false
	}
	h, err := decodeHeader(raw)
	if err != nil {
		panicDecode("header", err)
	}

	if s.caches.headers != nil {
		s.caches.headers.Add(hash, h)
	}
	return h, true
}

// BlockBody returns every transaction of the block stored under hash.
func (s *ChainStore) BlockBody(hash chain.Hash) ([]chain.Transaction, bool) {
	raw, ok := s.read(ColumnBlockBody, hash[:])
	if !ok {
		return nil, false
	}
	txs, err := decodeBlockBody(raw)
	if err != nil {
		panicDecode("block body", err)
	}
	return txs, true
}

// BlockTxHashes returns only the transaction hashes of the block, without
// decoding any transaction body.
func (s *ChainStore) BlockTxHashes(hash chain.Hash) ([]chain.Hash, bool) {
	var hashes []chain.Hash
	found := s.processRead(ColumnBlockBody, hash[:], func(raw []byte) error {
		h, err := bodyTxHashes(raw)
		if err != nil {
			return err
		}
		hashes = h
		return nil
	})
	if !found {
		return nil, false
	}
	return hashes, true
}

// BlockProposalTxIds returns the proposal short ids of the block stored
// under hash.
func (s *ChainStore) BlockProposalTxIds(hash chain.Hash) ([]chain.ProposalShortId, bool) {
	raw, ok := s.read(ColumnBlockProposalIDs, hash[:])
	if !ok {
		return nil, false
	}
	ids, err := decodeProposalShortIds(raw)
	if err != nil {
		panicDecode("proposal short ids", err)
	}
	return ids, true
}

// BlockUncles returns the uncle blocks embedded under hash.
func (s *ChainStore) BlockUncles(hash chain.Hash) ([]chain.UncleBlock, bool) {
	raw, ok := s.read(ColumnBlockUncle, hash[:])
	if !ok {
		return nil, false
	}
	uncles, err := decodeUncleBlocks(raw)
	if err != nil {
		panicDecode("uncle blocks", err)
	}
	return uncles, true
}

// BlockExt returns the chain-position metadata for the block stored under
// hash.
func (s *ChainStore) BlockExt(hash chain.Hash) (chain.BlockExt, bool) {
	raw, ok := s.read(ColumnBlockExt, hash[:])
	if !ok {
		return chain.BlockExt{}, false
	}
	ext, err := decodeBlockExt(raw)
	if err != nil {
		panicDecode("block ext", err)
	}
	return ext, true
}

// Block assembles the full block stored under hash from its header, body,
// uncles and proposal ids. It panics if the header is present but any of
// the other three columns is missing, since the write facade always
// inserts all four together.
func (s *ChainStore) Block(hash chain.Hash) (*chain.Block, bool) {
	header, ok := s.BlockHeader(hash)
	if !ok {
		return nil, false
	}
	body, ok := s.BlockBody(hash)
	if !ok {
		panic(newErr(ErrDecode, "block body missing for stored header", nil))
	}
	uncles, ok := s.BlockUncles(hash)
	if !ok {
		panic(newErr(ErrDecode, "block uncles missing for stored header", nil))
	}
	proposals, ok := s.BlockProposalTxIds(hash)
	if !ok {
		panic(newErr(ErrDecode, "block proposals missing for stored header", nil))
	}
	return &chain.Block{
		Header:       header,
		Transactions: body,
		Uncles:       uncles,
		Proposals:    proposals,
	}, true
}

// BlockHash returns the hash of the block at the given height, the INDEX
// column's number-to-hash direction.
func (s *ChainStore) BlockHash(number uint64) (chain.Hash, bool) {
	raw, ok := s.read(ColumnIndex, encodeU64(number))
	if !ok {
		return chain.Hash{}, false
	}
	var h chain.Hash
	if len(raw) != 32 {
		panicDecode("block hash", nil)
	}
	copy(h[:], raw)
	return h, true
}

// BlockNumber returns the height of the block identified by hash, the
// INDEX column's hash-to-number direction.
func (s *ChainStore) BlockNumber(hash chain.Hash) (uint64, bool) {
	raw, ok := s.read(ColumnIndex, hash[:])
	if !ok {
		return 0, false
	}
	n, err := decodeBlockNumber(raw)
	if err != nil {
		panicDecode("block number", err)
	}
	return n, true
}

// IsUncle reports whether hash has ever been recorded as an uncle.
func (s *ChainStore) IsUncle(hash chain.Hash) bool {
	_, ok := s.read(ColumnUncles, hash[:])
	return ok
}

// TipHeader returns the header currently recorded as the chain tip.
func (s *ChainStore) TipHeader() (chain.Header, bool) {
	raw, ok := s.read(ColumnMeta, metaKeyTipHeader)
	if !ok {
		return chain.Header{}, false
	}
	var hash chain.Hash
	if len(raw) != 32 {
		panicDecode("tip header pointer", nil)
	}
	copy(hash[:], raw)
	return s.BlockHeader(hash)
}

// Cellbase returns transaction 0 of the block stored under blockHash.
func (s *ChainStore) Cellbase(blockHash chain.Hash) (chain.Transaction, bool) {
	var tx chain.Transaction
	found := s.processRead(ColumnBlockBody, blockHash[:], func(raw []byte) error {
		t, err := bodyTransactionAt(raw, 0)
		if err != nil {
			return err
		}
		tx = t
		return nil
	})
	if !found {
		return chain.Transaction{}, false
	}
	return tx, true
}

// TransactionAddress resolves hash to its physical location.
func (s *ChainStore) TransactionAddress(hash chain.Hash) (chain.TransactionAddress, bool) {
	raw, ok := s.read(ColumnTransactionAddr, hash[:])
	if !ok {
		return chain.TransactionAddress{}, false
	}
	addr, err := decodeTransactionAddress(raw)
	if err != nil {
		panicDecode("transaction address", err)
	}
	return addr, true
}

// Transaction resolves hash to its decoded transaction and the hash of the
// block containing it.
func (s *ChainStore) Transaction(hash chain.Hash) (chain.Transaction, chain.Hash, bool) {
	addr, ok := s.TransactionAddress(hash)
	if !ok {
		return chain.Transaction{}, chain.Hash{}, false
	}
	var tx chain.Transaction
	found := s.processRead(ColumnBlockBody, addr.BlockHash[:], func(raw []byte) error {
		t, err := bodyTransactionAt(raw, int(addr.Index))
		if err != nil {
			return err
		}
		tx = t
		return nil
	})
	if !found {
		panic(newErr(ErrDecode, "transaction address points to missing block body", nil))
	}
	return tx, addr.BlockHash, true
}

// CellMeta returns the persisted liveness-independent metadata of output
// index of transaction txHash.
func (s *ChainStore) CellMeta(txHash chain.Hash, index uint32) (chain.CellMeta, bool) {
	key := cellKeyBytes(chain.OutPoint{TxHash: txHash, Index: index})
	raw, ok := s.read(ColumnCellMeta, key)
	if !ok {
		return chain.CellMeta{}, false
	}
	m, err := decodeCellMeta(raw)
	if err != nil {
		panicDecode("cell meta", err)
	}
	return m, true
}

// CellOutput resolves (txHash, index) to its output, consulting the cell
// output cache before resolving the owning transaction's address and
// decoding just that one output out of its block body.
func (s *ChainStore) CellOutput(txHash chain.Hash, index uint32) (chain.CellOutput, bool) {
	key := cellOutputKey{txHash: txHash, index: index}
	if s.caches.outputs != nil {
		if out, ok := s.caches.outputs.Get(key); ok {
			return out, true
		}
	}

	addr, ok := s.TransactionAddress(txHash)
	if !ok {
		return chain.CellOutput{}, false
	}
	var out chain.CellOutput
	found := s.processRead(ColumnBlockBody, addr.BlockHash[:], func(raw []byte) error {
		o, err := bodyOutputAt(raw, int(addr.Index), int(index))
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	if !found {
		return chain.CellOutput{}, false
	}

	if s.caches.outputs != nil {
		s.caches.outputs.Add(key, out)
	}
	return out, true
}

// CurrentEpochExt returns the singleton "current epoch" record.
func (s *ChainStore) CurrentEpochExt() (chain.EpochExt, bool) {
	raw, ok := s.read(ColumnMeta, metaKeyCurrentEpoch)
	if !ok {
		return chain.EpochExt{}, false
	}
	e, err := decodeEpochExt(raw)
	if err != nil {
		panicDecode("current epoch ext", err)
	}
	return e, true
}

// EpochExt returns the epoch ext anchored at hash (the hash of the last
// block of the previous epoch).
func (s *ChainStore) EpochExt(hash chain.Hash) (chain.EpochExt, bool) {
	raw, ok := s.read(ColumnEpoch, hash[:])
	if !ok {
		return chain.EpochExt{}, false
	}
	e, err := decodeEpochExt(raw)
	if err != nil {
		panicDecode("epoch ext", err)
	}
	return e, true
}

// EpochIndex resolves an epoch number to its anchor hash, the EPOCH
// column's number-to-hash direction.
func (s *ChainStore) EpochIndex(number uint64) (chain.Hash, bool) {
	raw, ok := s.read(ColumnEpoch, encodeU64(number))
	if !ok {
		return chain.Hash{}, false
	}
	var h chain.Hash
	if len(raw) != 32 {
		panicDecode("epoch index", nil)
	}
	copy(h[:], raw)
	return h, true
}

// BlockEpochIndex resolves a block hash to the anchor hash of the epoch it
// belongs to.
func (s *ChainStore) BlockEpochIndex(blockHash chain.Hash) (chain.Hash, bool) {
	raw, ok := s.read(ColumnBlockEpoch, blockHash[:])
	if !ok {
		return chain.Hash{}, false
	}
	var h chain.Hash
	if len(raw) != 32 {
		panicDecode("block epoch index", nil)
	}
	copy(h[:], raw)
	return h, true
}

// TraverseCellSet visits every (tx_hash, TransactionMeta) pair currently
// recorded in the live cell set. callback errors abort the traversal and
// are returned wrapped in an ErrBackendIO *Error; errors.Is and errors.As
// still reach the callback's own error through Unwrap.
func (s *ChainStore) TraverseCellSet(callback func(txHash chain.Hash, meta chain.TransactionMeta) error) error {
	return s.backend.Traverse(ColumnCellSet, func(key, val []byte) error {
		if len(key) != 32 {
			panicDecode("cell set key", nil)
		}
		var txHash chain.Hash
		copy(txHash[:], key)
		meta, err := decodeTransactionMeta(val)
		if err != nil {
			panicDecode("transaction meta", err)
		}
		return callback(txHash, meta)
	})
}

// NewBatch starts a write batch against the store's backend.
func (s *ChainStore) NewBatch() (*StoreBatch, error) {
	return NewBatch(s.backend)
}

// Close releases the underlying backend.
func (s *ChainStore) Close() error {
	return s.backend.Close()
}
