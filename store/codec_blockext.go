package store

import (
	"fmt"
	"math/big"

	"github.com/ckb-go/chainstore/chain"
)

// BlockExt is always decoded whole (no caller asks for "just the
// TotalDifficulty"), so unlike Header it could live in the simple family,
// but TotalDifficulty is variable width like Header.Difficulty, so it keeps
// the same length-prefixed-bignum trick and lives alongside the other
// structured records for consistency with the teacher's undo.go layout
// (fixed fields first, variable fields length-prefixed, trailing flags).
//
// Layout: received_at u64le | total_difficulty_len u32le | bytes |
// total_uncles_count u64le | verified_known u8 | verified_value u8 |
// txs_fees_count u32le | txs_fees u64le*count | accumulated_rate u64le |
// accumulated_capacity u64le
func encodeBlockExt(e chain.BlockExt) []byte {
	diff := e.TotalDifficulty
	if diff == nil {
		diff = new(big.Int)
	}
	db := diff.Bytes()

	out := appendU64(nil, e.ReceivedAt)
	out = appendU32(out, uint32(len(db)))
	out = append(out, db...)
	out = appendU64(out, e.TotalUnclesCount)
	if e.Verified == nil {
		out = append(out, 0, 0)
	} else if *e.Verified {
		out = append(out, 1, 1)
	} else {
		out = append(out, 1, 0)
	}
	out = appendU32(out, uint32(len(e.TxsFees)))
	for _, f := range e.TxsFees {
		out = appendU64(out, f)
	}
	out = appendU64(out, e.DaoStats.AccumulatedRate)
	out = appendU64(out, e.DaoStats.AccumulatedCapacity)
	return out
}

func decodeBlockExt(b []byte) (chain.BlockExt, error) {
	c := newCursor(b)
	var e chain.BlockExt
	var err error

	if e.ReceivedAt, err = c.readU64LE(); err != nil {
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
	e.TotalDifficulty = new(big.Int).SetBytes(db)
	if e.TotalUnclesCount, err = c.readU64LE(); err != nil {
		return e, err
	}
	known, err := c.readU8()
	if err != nil {
		return e, err
	}
	value, err := c.readU8()
	if err != nil {
		return e, err
	}
	if known == 1 {
		v := value == 1
		e.Verified = &v
	}
	feeCount, err := c.readU32LE()
	if err != nil {
		return e, err
	}
	e.TxsFees = make([]uint64, feeCount)
	for i := range e.TxsFees {
		if e.TxsFees[i], err = c.readU64LE(); err != nil {
			return e, err
		}
	}
	if e.DaoStats.AccumulatedRate, err = c.readU64LE(); err != nil {
		return e, err
	}
	if e.DaoStats.AccumulatedCapacity, err = c.readU64LE(); err != nil {
		return e, err
	}
	if !c.atEnd() {
		return e, fmt.Errorf("block_ext: trailing bytes")
	}
	return e, nil
}
