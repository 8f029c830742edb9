package chain

import "math/big"

// EpochExt is the reward and difficulty snapshot for one epoch. It is
// indexed by its anchor: the hash of the last block of the previous epoch.
type EpochExt struct {
	Number                       uint64
	BaseBlockReward              uint64
	RemainderReward              uint64
	PreviousEpochHashRate        *big.Int
	LastBlockHashInPreviousEpoch Hash
	StartNumber                  uint64
	Length                       uint64
	Difficulty                   *big.Int
}

// TransactionAddress resolves a transaction hash to its physical location:
// the containing block and the transaction's index within it.
type TransactionAddress struct {
	BlockHash Hash
	Index     uint32
}
