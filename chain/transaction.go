package chain

import (
	"encoding/binary"
)

// Transaction is the unit of state transition: it spends Inputs, references
// Deps for cell data it merely reads, and creates Outputs (each paired 1:1
// with an OutputsData blob). Witnesses carry unlock proofs the storage
// engine never interprets.
type Transaction struct {
	Version     uint32
	Inputs      []OutPoint
	Outputs     []CellOutput
	OutputsData [][]byte
	Deps        []OutPoint
	Witnesses   [][]byte

	// Hash is the content-derived transaction identity. It is populated by
	// ComputeHash and is never itself part of the hash preimage.
	Hash Hash
}

// IsCellbase reports whether tx is the first transaction of its containing
// block by construction: it has no real inputs.
func (tx *Transaction) IsCellbase() bool {
	return len(tx.Inputs) == 0
}

// ComputeHash derives and stores tx.Hash from the transaction's content.
// Inputs, outputs, outputs_data, deps and witnesses are all included in the
// preimage; Hash itself is not.
func (tx *Transaction) ComputeHash() Hash {
	var buf []byte
	buf = appendU32(buf, tx.Version)

	buf = appendU32(buf, uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf = append(buf, in.TxHash[:]...)
		buf = appendU32(buf, in.Index)
	}

	buf = appendU32(buf, uint32(len(tx.Deps)))
	for _, d := range tx.Deps {
		buf = append(buf, d.TxHash[:]...)
		buf = appendU32(buf, d.Index)
	}

	buf = appendU32(buf, uint32(len(tx.Outputs)))
	for i := range tx.Outputs {
		buf = appendCellOutput(buf, &tx.Outputs[i])
	}

	buf = appendU32(buf, uint32(len(tx.OutputsData)))
	for _, d := range tx.OutputsData {
		buf = appendU32(buf, uint32(len(d)))
		buf = append(buf, d...)
	}

	buf = appendU32(buf, uint32(len(tx.Witnesses)))
	for _, w := range tx.Witnesses {
		buf = appendU32(buf, uint32(len(w)))
		buf = append(buf, w...)
	}

	h := sum256(buf)
	tx.Hash = h
	return h
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendCellOutput(buf []byte, c *CellOutput) []byte {
	buf = appendU64(buf, c.Capacity)
	buf = appendScript(buf, &c.LockScript)
	if c.TypeScript != nil {
		buf = append(buf, 1)
		buf = appendScript(buf, c.TypeScript)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, c.DataHash[:]...)
	return buf
}

func appendScript(buf []byte, s *Script) []byte {
	buf = append(buf, s.CodeHash[:]...)
	buf = append(buf, byte(s.HashType))
	buf = appendU32(buf, uint32(len(s.Args)))
	buf = append(buf, s.Args...)
	return buf
}
