package chain

import "encoding/binary"

// OutPoint identifies one output of one transaction: (tx_hash, index).
type OutPoint struct {
	TxHash Hash
	Index  uint32
}

// CellKeyLen is the width of the canonical KV key derived from an OutPoint:
// tx_hash(32) || index_le_u32(4).
const CellKeyLen = 32 + 4

// CellKey is the canonical 36-byte concatenation used as the CELL_META key
// throughout the store. CELL_SET is keyed by the bare 32-byte tx hash.
type CellKey [CellKeyLen]byte

// Key returns the canonical CellKey for the OutPoint.
func (p OutPoint) Key() CellKey {
	var k CellKey
	copy(k[0:32], p.TxHash[:])
	binary.LittleEndian.PutUint32(k[32:36], p.Index)
	return k
}

// ParseCellKey reverses Key.
func ParseCellKey(b []byte) (OutPoint, bool) {
	if len(b) != CellKeyLen {
		return OutPoint{}, false
	}
	var p OutPoint
	copy(p.TxHash[:], b[0:32])
	p.Index = binary.LittleEndian.Uint32(b[32:36])
	return p, true
}
