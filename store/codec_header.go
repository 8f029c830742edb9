package store

import (
	"fmt"
	"math/big"

	"github.com/ckb-go/chainstore/chain"
)

// Header is a fixed-shape record (component B family 1), but unlike Body it
// needs no partial-access API: callers always want the whole header, so we
// decode it in one pass.
//
// Layout: parent_hash(32) | number u64le | timestamp u64le | epoch u64le |
// difficulty_len u32le | difficulty_bytes | transactions_root(32) |
// proposals_hash(32) | uncles_hash(32) | dao(32) | nonce(16) | hash(32)
func encodeHeader(h chain.Header) []byte {
	diff := h.Difficulty
	if diff == nil {
		diff = new(big.Int)
	}
	db := diff.Bytes()

	out := make([]byte, 0, 32+8+8+8+4+len(db)+32+32+32+32+16+32)
	out = append(out, h.ParentHash[:]...)
	out = appendU64(out, h.Number)
	out = appendU64(out, h.Timestamp)
	out = appendU64(out, h.Epoch)
	out = appendU32(out, uint32(len(db)))
	out = append(out, db...)
	out = append(out, h.TransactionsRoot[:]...)
	out = append(out, h.ProposalsHash[:]...)
	out = append(out, h.UnclesHash[:]...)
	out = append(out, h.Dao[:]...)
	out = append(out, h.Nonce[:]...)
	out = append(out, h.Hash[:]...)
	return out
}

func decodeHeader(b []byte) (chain.Header, error) {
	c := newCursor(b)
	h, _, err := decodeHeaderPrefix(c)
	if err != nil {
		return chain.Header{}, err
	}
	if !c.atEnd() {
		return chain.Header{}, fmt.Errorf("header: trailing bytes")
	}
	return h, nil
}

// decodeHeaderPrefix decodes a header starting at c's current position and
// returns the byte offset (within c's underlying buffer) where the header
// ends, for callers that embed a header followed by more data (UncleBlock).
func decodeHeaderPrefix(c *cursor) (chain.Header, int, error) {
	var h chain.Header
	var err error

	if h.ParentHash, err = c.readHash(); err != nil {
		return chain.Header{}, 0, err
	}
	if h.Number, err = c.readU64LE(); err != nil {
		return chain.Header{}, 0, err
	}
	if h.Timestamp, err = c.readU64LE(); err != nil {
		return chain.Header{}, 0, err
	}
	if h.Epoch, err = c.readU64LE(); err != nil {
		return chain.Header{}, 0, err
	}
	dlen, err := c.readU32LE()
	if err != nil {
		return chain.Header{}, 0, err
	}
	db, err := c.readExact(int(dlen))
	if err != nil {
		return chain.Header{}, 0, err
	}
	h.Difficulty = new(big.Int).SetBytes(db)
	if h.TransactionsRoot, err = c.readHash(); err != nil {
		return chain.Header{}, 0, err
	}
	if h.ProposalsHash, err = c.readHash(); err != nil {
		return chain.Header{}, 0, err
	}
	if h.UnclesHash, err = c.readHash(); err != nil {
		return chain.Header{}, 0, err
	}
	dao, err := c.readExact(32)
	if err != nil {
		return chain.Header{}, 0, err
	}
	copy(h.Dao[:], dao)
	nonce, err := c.readExact(16)
	if err != nil {
		return chain.Header{}, 0, err
	}
	copy(h.Nonce[:], nonce)
	if h.Hash, err = c.readHash(); err != nil {
		return chain.Header{}, 0, err
	}
	return h, c.pos, nil
}
