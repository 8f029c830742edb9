package store

import (
	"encoding/binary"
	"fmt"

	"github.com/ckb-go/chainstore/chain"
)

// codec_body implements the offset-table member of the structured family
// (§4.B.1) for Transaction and BlockBody. Both need O(1) partial access
// relative to sibling items rather than the teacher's flat
// encode-whole-decode-whole records, so every variable-length list (cell
// outputs, outputs_data, witnesses, transactions) carries a leading table of
// absolute offsets into its own blob instead of being walked linearly.
//
// An offset table of N items has N+1 uint32 entries; item i occupies
// blob[offsets[i]:offsets[i+1]]. offsets[0] is always 0 and offsets[N] is
// len(blob), so reading item i never requires decoding item i-1.

func appendOffsetTable(out []byte, offsets []uint32) []byte {
	out = appendU32(out, uint32(len(offsets)-1))
	for _, off := range offsets {
		out = appendU32(out, off)
	}
	return out
}

// readOffsetTable reads a count-prefixed offset table at c's current
// position and returns the (count+1) offsets; the last one is the length
// of the blob they're relative to. The caller still owns reading the blob
// itself.
func readOffsetTable(c *cursor) ([]uint32, error) {
	n, err := c.readU32LE()
	if err != nil {
		return nil, err
	}
	offsets := make([]uint32, n+1)
	for i := range offsets {
		v, err := c.readU32LE()
		if err != nil {
			return nil, err
		}
		offsets[i] = v
	}
	return offsets, nil
}

// sliceItem returns blob[offsets[i]:offsets[i+1]], validating bounds.
func sliceItem(blob []byte, offsets []uint32, i int) ([]byte, error) {
	if i < 0 || i+1 >= len(offsets) {
		return nil, fmt.Errorf("store: offset table index %d out of range", i)
	}
	start, end := offsets[i], offsets[i+1]
	if end < start || int(end) > len(blob) {
		return nil, fmt.Errorf("store: malformed offset table entry [%d:%d] over %d-byte blob", start, end, len(blob))
	}
	return blob[start:end], nil
}

func encodeScript(s *chain.Script) []byte {
	out := make([]byte, 0, 32+1+4+len(s.Args))
	out = append(out, s.CodeHash[:]...)
	out = append(out, byte(s.HashType))
	out = appendU32(out, uint32(len(s.Args)))
	out = append(out, s.Args...)
	return out
}

func decodeScript(c *cursor) (chain.Script, error) {
	var s chain.Script
	h, err := c.readHash()
	if err != nil {
		return s, err
	}
	s.CodeHash = h
	ht, err := c.readU8()
	if err != nil {
		return s, err
	}
	s.HashType = chain.HashType(ht)
	alen, err := c.readU32LE()
	if err != nil {
		return s, err
	}
	args, err := c.readExact(int(alen))
	if err != nil {
		return s, err
	}
	s.Args = append([]byte(nil), args...)
	return s, nil
}

func encodeCellOutput(c *chain.CellOutput) []byte {
	out := make([]byte, 0, 64)
	out = appendU64(out, c.Capacity)
	out = append(out, encodeScript(&c.LockScript)...)
	if c.TypeScript != nil {
		out = append(out, 1)
		out = append(out, encodeScript(c.TypeScript)...)
	} else {
		out = append(out, 0)
	}
	out = append(out, c.DataHash[:]...)
	return out
}

func decodeCellOutput(b []byte) (chain.CellOutput, error) {
	c := newCursor(b)
	var out chain.CellOutput
	cap, err := c.readU64LE()
	if err != nil {
		return out, err
	}
	out.Capacity = cap
	lock, err := decodeScript(c)
	if err != nil {
		return out, err
	}
	out.LockScript = lock
	hasType, err := c.readU8()
	if err != nil {
		return out, err
	}
	if hasType == 1 {
		ts, err := decodeScript(c)
		if err != nil {
			return out, err
		}
		out.TypeScript = &ts
	}
	dh, err := c.readHash()
	if err != nil {
		return out, err
	}
	out.DataHash = dh
	return out, nil
}

func encodeOutPoint(p chain.OutPoint) []byte {
	out := make([]byte, 0, 36)
	out = append(out, p.TxHash[:]...)
	out = appendU32(out, p.Index)
	return out
}

func decodeOutPoint(c *cursor) (chain.OutPoint, error) {
	var p chain.OutPoint
	h, err := c.readHash()
	if err != nil {
		return p, err
	}
	p.TxHash = h
	idx, err := c.readU32LE()
	if err != nil {
		return p, err
	}
	p.Index = idx
	return p, nil
}

// buildBlobWithOffsets appends each item's own encoding into a contiguous
// blob and records the offset table the caller should precede it with.
func buildBlobWithOffsets(n int, item func(i int) []byte) (blob []byte, offsets []uint32) {
	offsets = make([]uint32, n+1)
	for i := 0; i < n; i++ {
		offsets[i] = uint32(len(blob))
		blob = append(blob, item(i)...)
	}
	offsets[n] = uint32(len(blob))
	return blob, offsets
}

// encodeTransaction produces the structured, offset-tabled encoding of tx.
// Layout: version u32le | inputs(count u32le + 36*count bytes) |
// deps(count u32le + 36*count bytes) | outputs offset table + blob |
// outputs_data offset table + blob | witnesses offset table + blob |
// hash(32)
//
// Inputs and deps are fixed 36-byte OutPoints, so they need no offset table
// to index directly; outputs, outputs_data and witnesses are variable
// length and each gets its own table so body.output(tx_i, out_j) never
// walks earlier outputs.
func encodeTransaction(tx *chain.Transaction) []byte {
	var out []byte
	out = appendU32(out, tx.Version)

	out = appendU32(out, uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		out = append(out, encodeOutPoint(in)...)
	}

	out = appendU32(out, uint32(len(tx.Deps)))
	for _, d := range tx.Deps {
		out = append(out, encodeOutPoint(d)...)
	}

	outBlob, outOffsets := buildBlobWithOffsets(len(tx.Outputs), func(i int) []byte {
		return encodeCellOutput(&tx.Outputs[i])
	})
	out = appendOffsetTable(out, outOffsets)
	out = append(out, outBlob...)

	dataBlob, dataOffsets := buildBlobWithOffsets(len(tx.OutputsData), func(i int) []byte {
		d := tx.OutputsData[i]
		item := appendU32(nil, uint32(len(d)))
		return append(item, d...)
	})
	out = appendOffsetTable(out, dataOffsets)
	out = append(out, dataBlob...)

	witBlob, witOffsets := buildBlobWithOffsets(len(tx.Witnesses), func(i int) []byte {
		w := tx.Witnesses[i]
		item := appendU32(nil, uint32(len(w)))
		return append(item, w...)
	})
	out = appendOffsetTable(out, witOffsets)
	out = append(out, witBlob...)

	out = append(out, tx.Hash[:]...)
	return out
}

func decodeTransaction(b []byte) (chain.Transaction, error) {
	c := newCursor(b)
	var tx chain.Transaction
	var err error

	if tx.Version, err = c.readU32LE(); err != nil {
		return tx, err
	}

	inCount, err := c.readU32LE()
	if err != nil {
		return tx, err
	}
	tx.Inputs = make([]chain.OutPoint, inCount)
	for i := range tx.Inputs {
		if tx.Inputs[i], err = decodeOutPoint(c); err != nil {
			return tx, err
		}
	}

	depCount, err := c.readU32LE()
	if err != nil {
		return tx, err
	}
	tx.Deps = make([]chain.OutPoint, depCount)
	for i := range tx.Deps {
		if tx.Deps[i], err = decodeOutPoint(c); err != nil {
			return tx, err
		}
	}

	outOffsets, err := readOffsetTable(c)
	if err != nil {
		return tx, err
	}
	outBlob, err := c.readExact(int(outOffsets[len(outOffsets)-1]))
	if err != nil {
		return tx, err
	}
	tx.Outputs = make([]chain.CellOutput, len(outOffsets)-1)
	for i := range tx.Outputs {
		item, err := sliceItem(outBlob, outOffsets, i)
		if err != nil {
			return tx, err
		}
		if tx.Outputs[i], err = decodeCellOutput(item); err != nil {
			return tx, err
		}
	}

	dataOffsets, err := readOffsetTable(c)
	if err != nil {
		return tx, err
	}
	dataBlob, err := c.readExact(int(dataOffsets[len(dataOffsets)-1]))
	if err != nil {
		return tx, err
	}
	tx.OutputsData = make([][]byte, len(dataOffsets)-1)
	for i := range tx.OutputsData {
		item, err := sliceItem(dataBlob, dataOffsets, i)
		if err != nil {
			return tx, err
		}
		d, err := decodeLengthPrefixed(item)
		if err != nil {
			return tx, err
		}
		tx.OutputsData[i] = d
	}

	witOffsets, err := readOffsetTable(c)
	if err != nil {
		return tx, err
	}
	witBlob, err := c.readExact(int(witOffsets[len(witOffsets)-1]))
	if err != nil {
		return tx, err
	}
	tx.Witnesses = make([][]byte, len(witOffsets)-1)
	for i := range tx.Witnesses {
		item, err := sliceItem(witBlob, witOffsets, i)
		if err != nil {
			return tx, err
		}
		w, err := decodeLengthPrefixed(item)
		if err != nil {
			return tx, err
		}
		tx.Witnesses[i] = w
	}

	h, err := c.readHash()
	if err != nil {
		return tx, err
	}
	tx.Hash = h

	if !c.atEnd() {
		return tx, fmt.Errorf("transaction: trailing bytes")
	}
	return tx, nil
}

func decodeLengthPrefixed(b []byte) ([]byte, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("store: truncated length-prefixed item")
	}
	n := binary.LittleEndian.Uint32(b)
	if int(n) != len(b)-4 {
		return nil, fmt.Errorf("store: length-prefixed item size mismatch")
	}
	return append([]byte(nil), b[4:]...), nil
}

// transactionOutputAt decodes only output index idx of the structured
// transaction encoding in b, touching neither sibling outputs nor
// outputs_data/witnesses. Used by ChainStore.CellOutput-style lookups that
// already know which transaction and index they want.
func transactionOutputAt(b []byte, idx int) (chain.CellOutput, error) {
	c := newCursor(b)
	if _, err := c.readU32LE(); err != nil { // version
		return chain.CellOutput{}, err
	}
	inCount, err := c.readU32LE()
	if err != nil {
		return chain.CellOutput{}, err
	}
	if _, err := c.readExact(int(inCount) * 36); err != nil {
		return chain.CellOutput{}, err
	}
	depCount, err := c.readU32LE()
	if err != nil {
		return chain.CellOutput{}, err
	}
	if _, err := c.readExact(int(depCount) * 36); err != nil {
		return chain.CellOutput{}, err
	}
	outOffsets, err := readOffsetTable(c)
	if err != nil {
		return chain.CellOutput{}, err
	}
	outBlob, err := c.readExact(int(outOffsets[len(outOffsets)-1]))
	if err != nil {
		return chain.CellOutput{}, err
	}
	item, err := sliceItem(outBlob, outOffsets, idx)
	if err != nil {
		return chain.CellOutput{}, err
	}
	return decodeCellOutput(item)
}

// --- BlockBody: the top-level container for a block's transaction list ---
//
// Layout: tx_count u32le | offset table over the tx blob (its own count
// u32le, then tx_count+1 u32le) | tx_count*32 contiguous transaction
// hashes | tx blob (each
// transaction encoded per encodeTransaction, concatenated).
//
// Putting tx_hashes in their own contiguous region lets tx_hashes() return
// in one slice copy without touching the tx blob at all, and lets
// body.transaction(i)'s hash be read without decoding the transaction.

func encodeBlockBody(txs []chain.Transaction) []byte {
	txBlob, txOffsets := buildBlobWithOffsets(len(txs), func(i int) []byte {
		return encodeTransaction(&txs[i])
	})

	out := appendU32(nil, uint32(len(txs)))
	out = appendOffsetTable(out, txOffsets)
	for i := range txs {
		out = append(out, txs[i].Hash[:]...)
	}
	out = append(out, txBlob...)
	return out
}

func bodyHeader(b []byte) (count int, offsets []uint32, hashesEnd int, err error) {
	c := newCursor(b)
	n, err := c.readU32LE()
	if err != nil {
		return 0, nil, 0, err
	}
	offsets, err = readOffsetTable(c)
	if err != nil {
		return 0, nil, 0, err
	}
	if len(offsets)-1 != int(n) {
		return 0, nil, 0, fmt.Errorf("block body: tx_count %d does not match offset table", n)
	}
	return int(n), offsets, c.pos + int(n)*32, nil
}

func decodeBlockBody(b []byte) ([]chain.Transaction, error) {
	n, offsets, hashesEnd, err := bodyHeader(b)
	if err != nil {
		return nil, err
	}
	if hashesEnd > len(b) {
		return nil, fmt.Errorf("block body: truncated tx_hashes region")
	}
	blob := b[hashesEnd:]
	txs := make([]chain.Transaction, n)
	for i := 0; i < n; i++ {
		item, err := sliceItem(blob, offsets, i)
		if err != nil {
			return nil, err
		}
		if txs[i], err = decodeTransaction(item); err != nil {
			return nil, err
		}
	}
	return txs, nil
}

// bodyTxCount returns tx_count without touching the tx blob.
func bodyTxCount(b []byte) (int, error) {
	n, _, _, err := bodyHeader(b)
	return n, err
}

// bodyTransactionAt decodes only transaction i, in time proportional to
// that transaction's own size, not the body's.
func bodyTransactionAt(b []byte, i int) (chain.Transaction, error) {
	n, offsets, hashesEnd, err := bodyHeader(b)
	if err != nil {
		return chain.Transaction{}, err
	}
	if i < 0 || i >= n {
		return chain.Transaction{}, fmt.Errorf("block body: transaction index %d out of range", i)
	}
	if hashesEnd > len(b) {
		return chain.Transaction{}, fmt.Errorf("block body: truncated tx_hashes region")
	}
	item, err := sliceItem(b[hashesEnd:], offsets, i)
	if err != nil {
		return chain.Transaction{}, err
	}
	return decodeTransaction(item)
}

// bodyTxHashAt reads transaction i's hash directly out of the contiguous
// hash region, without touching the tx blob.
func bodyTxHashAt(b []byte, i int) (chain.Hash, error) {
	n, _, hashesEnd, err := bodyHeader(b)
	if err != nil {
		return chain.Hash{}, err
	}
	if i < 0 || i >= n {
		return chain.Hash{}, fmt.Errorf("block body: transaction index %d out of range", i)
	}
	c := newCursor(b)
	// hashesEnd - n*32 is where the hash region starts.
	start := hashesEnd - n*32 + i*32
	if start+32 > len(b) {
		return chain.Hash{}, fmt.Errorf("block body: truncated tx_hashes region")
	}
	c.pos = start
	return c.readHash()
}

// bodyTxHashes returns the full contiguous hash region as a single slice
// copy, without decoding any transaction.
func bodyTxHashes(b []byte) ([]chain.Hash, error) {
	n, _, hashesEnd, err := bodyHeader(b)
	if err != nil {
		return nil, err
	}
	start := hashesEnd - n*32
	if hashesEnd > len(b) {
		return nil, fmt.Errorf("block body: truncated tx_hashes region")
	}
	hashes := make([]chain.Hash, n)
	for i := 0; i < n; i++ {
		copy(hashes[i][:], b[start+i*32:start+(i+1)*32])
	}
	return hashes, nil
}

// bodyOutputAt decodes only output outIdx of transaction txIdx: O(1)
// relative to sibling transactions and sibling outputs alike.
func bodyOutputAt(b []byte, txIdx, outIdx int) (chain.CellOutput, error) {
	n, offsets, hashesEnd, err := bodyHeader(b)
	if err != nil {
		return chain.CellOutput{}, err
	}
	if txIdx < 0 || txIdx >= n {
		return chain.CellOutput{}, fmt.Errorf("block body: transaction index %d out of range", txIdx)
	}
	if hashesEnd > len(b) {
		return chain.CellOutput{}, fmt.Errorf("block body: truncated tx_hashes region")
	}
	item, err := sliceItem(b[hashesEnd:], offsets, txIdx)
	if err != nil {
		return chain.CellOutput{}, err
	}
	return transactionOutputAt(item, outIdx)
}
