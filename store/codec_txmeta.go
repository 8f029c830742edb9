package store

import (
	"fmt"

	"github.com/ckb-go/chainstore/chain"
)

// TransactionMeta's Bits field is variable width (it tracks OutputCount
// outputs), so it can't be a fixed simple-family record, but nothing reads
// less than the whole bitmap, so it gets no offset table either.
//
// Layout: block_number u64le | epoch u64le | output_count u32le | cellbase
// u8 | bits (bitmapLen(output_count) bytes)
func encodeTransactionMeta(m chain.TransactionMeta) []byte {
	out := appendU64(nil, m.BlockNumber)
	out = appendU64(out, m.Epoch)
	out = appendU32(out, m.OutputCount)
	if m.Cellbase {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	out = append(out, m.Bits...)
	return out
}

func decodeTransactionMeta(b []byte) (chain.TransactionMeta, error) {
	c := newCursor(b)
	var m chain.TransactionMeta
	var err error

	if m.BlockNumber, err = c.readU64LE(); err != nil {
		return m, err
	}
	if m.Epoch, err = c.readU64LE(); err != nil {
		return m, err
	}
	if m.OutputCount, err = c.readU32LE(); err != nil {
		return m, err
	}
	cb, err := c.readU8()
	if err != nil {
		return m, err
	}
	m.Cellbase = cb == 1
	want := int((m.OutputCount + 7) / 8)
	bits, err := c.readExact(want)
	if err != nil {
		return m, err
	}
	m.Bits = append([]byte(nil), bits...)
	if !c.atEnd() {
		return m, fmt.Errorf("transaction_meta: trailing bytes")
	}
	return m, nil
}
