package chain

import "math/big"

// DaoStats carries the running NervosDAO accounting CKB layers on top of
// block processing; the storage engine persists it verbatim.
type DaoStats struct {
	AccumulatedRate     uint64
	AccumulatedCapacity uint64
}

// DefaultAccumulatedRate seeds DaoStats.AccumulatedRate at genesis.
const DefaultAccumulatedRate uint64 = 10_000_000_000_000_000

// BlockExt is chain-position metadata about an attached block that is not
// part of the header itself: when it was received, the chain's total work
// through this block, and verification/fee bookkeeping.
type BlockExt struct {
	ReceivedAt        uint64
	TotalDifficulty   *big.Int
	TotalUnclesCount  uint64
	Verified          *bool // nil: not yet verified
	TxsFees           []uint64
	DaoStats          DaoStats
}
