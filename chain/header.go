package chain

import "math/big"

// Header is the fixed-shape block header. Difficulty is a big-integer;
// every other field is fixed width, which is what lets the store codec
// treat Header as a cheap, whole-record decode.
type Header struct {
	ParentHash       Hash
	Number           uint64
	Timestamp        uint64
	Epoch            uint64
	Difficulty       *big.Int
	TransactionsRoot Hash
	ProposalsHash    Hash
	UnclesHash       Hash
	Dao              [32]byte
	Nonce            [16]byte

	// Hash is the content-derived header identity, populated by
	// ComputeHash. It is excluded from its own preimage.
	Hash Hash
}

// ComputeHash derives and stores h.Hash from the header's content.
func (h *Header) ComputeHash() Hash {
	var buf []byte
	buf = append(buf, h.ParentHash[:]...)
	buf = appendU64(buf, h.Number)
	buf = appendU64(buf, h.Timestamp)
	buf = appendU64(buf, h.Epoch)
	diff := h.Difficulty
	if diff == nil {
		diff = new(big.Int)
	}
	db := diff.Bytes()
	buf = appendU32(buf, uint32(len(db)))
	buf = append(buf, db...)
	buf = append(buf, h.TransactionsRoot[:]...)
	buf = append(buf, h.ProposalsHash[:]...)
	buf = append(buf, h.UnclesHash[:]...)
	buf = append(buf, h.Dao[:]...)
	buf = append(buf, h.Nonce[:]...)
	hash := sum256(buf)
	h.Hash = hash
	return hash
}
