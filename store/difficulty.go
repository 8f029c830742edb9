package store

import "math/big"

// AccumulateDifficulty adds a block's own difficulty to the running total
// difficulty of its parent, the value genesis and AttachBlock callers store
// as a block's BlockExt.TotalDifficulty. Genesis has no parent, so it seeds
// the chain by accumulating onto a zero total.
func AccumulateDifficulty(parentTotal, blockDifficulty *big.Int) *big.Int {
	return new(big.Int).Add(parentTotal, blockDifficulty)
}
