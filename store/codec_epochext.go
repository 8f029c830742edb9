package store

import (
	"fmt"
	"math/big"

	"github.com/ckb-go/chainstore/chain"
)

// Layout: number u64le | base_block_reward u64le | remainder_reward u64le |
// prev_hash_rate_len u32le | bytes | last_block_hash(32) | start_number
// u64le | length u64le | difficulty_len u32le | bytes
func encodeEpochExt(e chain.EpochExt) []byte {
	rate := e.PreviousEpochHashRate
	if rate == nil {
		rate = new(big.Int)
	}
	rb := rate.Bytes()
	diff := e.Difficulty
	if diff == nil {
		diff = new(big.Int)
	}
	db := diff.Bytes()

	out := appendU64(nil, e.Number)
	out = appendU64(out, e.BaseBlockReward)
	out = appendU64(out, e.RemainderReward)
	out = appendU32(out, uint32(len(rb)))
	out = append(out, rb...)
	out = append(out, e.LastBlockHashInPreviousEpoch[:]...)
	out = appendU64(out, e.StartNumber)
	out = appendU64(out, e.Length)
	out = appendU32(out, uint32(len(db)))
	out = append(out, db...)
	return out
}

func decodeEpochExt(b []byte) (chain.EpochExt, error) {
	c := newCursor(b)
	var e chain.EpochExt
	var err error

	if e.Number, err = c.readU64LE(); err != nil {
		return e, err
	}
	if e.BaseBlockReward, err = c.readU64LE(); err != nil {
		return e, err
	}
	if e.RemainderReward, err = c.readU64LE(); err != nil {
		return e, err
	}
	rlen, err := c.readU32LE()
	if err != nil {
		return e, err
	}
	rb, err := c.readExact(int(rlen))
	if err != nil {
		return e, err
	}
	e.PreviousEpochHashRate = new(big.Int).SetBytes(rb)
	if e.LastBlockHashInPreviousEpoch, err = c.readHash(); err != nil {
		return e, err
	}
	if e.StartNumber, err = c.readU64LE(); err != nil {
		return e, err
	}
	if e.Length, err = c.readU64LE(); err != nil {
		return e, err
	}
	dlen, err := c.readU32LE()
	if err != nil {
		return e, err
	}
	db, err := c.readExact(int(dlen))
	if err != nil {
		return e, err
	}
	e.Difficulty = new(big.Int).SetBytes(db)
	if !c.atEnd() {
		return e, fmt.Errorf("epoch_ext: trailing bytes")
	}
	return e, nil
}

// TransactionAddress is small and fixed width (hash + index), so it lives
// here as a one-off rather than earning its own file.
const transactionAddressLen = 32 + 4

func encodeTransactionAddress(a chain.TransactionAddress) []byte {
	out := make([]byte, 0, transactionAddressLen)
	out = append(out, a.BlockHash[:]...)
	out = appendU32(out, a.Index)
	return out
}

func decodeTransactionAddress(b []byte) (chain.TransactionAddress, error) {
	if len(b) != transactionAddressLen {
		return chain.TransactionAddress{}, fmt.Errorf("transaction_addr: expected %d bytes, got %d", transactionAddressLen, len(b))
	}
	c := newCursor(b)
	var a chain.TransactionAddress
	h, err := c.readHash()
	if err != nil {
		return a, err
	}
	a.BlockHash = h
	idx, err := c.readU32LE()
	if err != nil {
		return a, err
	}
	a.Index = idx
	return a, nil
}
