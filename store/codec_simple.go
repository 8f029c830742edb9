package store

import (
	"fmt"

	"github.com/ckb-go/chainstore/chain"
)

// codec_simple implements the length-prefixed sequential encoding family
// (§4.B.2): small, fixed-shape records that are always decoded whole, never
// partially. Every field here is itself fixed width, so "length-prefixed"
// degenerates to "concatenated in a fixed order" — the same shape as the
// teacher's encodeIndexEntry/encodeUtxoEntry in node/store/db.go and
// node/store/utxo_encoding.go.

// Layout: tx_hash(32) | out_index u32le | block_number u64le | epoch u64le |
// cellbase u8 | capacity u64le | data_hash(32)
const cellMetaEncodedLen = 32 + 4 + 8 + 8 + 1 + 8 + 32

func encodeCellMeta(m chain.CellMeta) []byte {
	out := make([]byte, 0, cellMetaEncodedLen)
	out = append(out, m.OutPoint.TxHash[:]...)
	out = appendU32(out, m.OutPoint.Index)
	out = appendU64(out, m.BlockInfo.Number)
	out = appendU64(out, m.BlockInfo.Epoch)
	if m.Cellbase {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	out = appendU64(out, m.Capacity)
	out = append(out, m.DataHash[:]...)
	return out
}

func decodeCellMeta(b []byte) (chain.CellMeta, error) {
	if len(b) != cellMetaEncodedLen {
		return chain.CellMeta{}, fmt.Errorf("cell_meta: expected %d bytes, got %d", cellMetaEncodedLen, len(b))
	}
	c := newCursor(b)
	var m chain.CellMeta
	txHash, err := c.readHash()
	if err != nil {
		return chain.CellMeta{}, err
	}
	m.OutPoint.TxHash = txHash
	idx, err := c.readU32LE()
	if err != nil {
		return chain.CellMeta{}, err
	}
	m.OutPoint.Index = idx
	if m.BlockInfo.Number, err = c.readU64LE(); err != nil {
		return chain.CellMeta{}, err
	}
	if m.BlockInfo.Epoch, err = c.readU64LE(); err != nil {
		return chain.CellMeta{}, err
	}
	cb, err := c.readU8()
	if err != nil {
		return chain.CellMeta{}, err
	}
	m.Cellbase = cb == 1
	if m.Capacity, err = c.readU64LE(); err != nil {
		return chain.CellMeta{}, err
	}
	dh, err := c.readHash()
	if err != nil {
		return chain.CellMeta{}, err
	}
	m.DataHash = dh
	return m, nil
}

// encodeBlockNumber/decodeBlockNumber are the BlockNumber member of the
// simple family, used wherever a bare number needs to travel as a value
// rather than as a key (the INDEX column's hash->number direction reuses
// this encoding).
func encodeBlockNumber(n uint64) []byte {
	return encodeU64(n)
}

func decodeBlockNumber(b []byte) (uint64, error) {
	n, ok := decodeU64(b)
	if !ok {
		return 0, fmt.Errorf("block_number: expected 8 bytes, got %d", len(b))
	}
	return n, nil
}
