package store

import (
	"fmt"

	"github.com/ckb-go/chainstore/chain"
)

// codec_uncles covers UncleBlocks (a block's embedded sibling headers) and
// ProposalShortIds, the two remaining structured-family records after
// Header and BlockBody.
//
// ProposalShortIds are fixed 10-byte entries, so proposalShortIdAt can index
// directly with no offset table: offset = 4 (count) + i*10.
func encodeProposalShortIds(ids []chain.ProposalShortId) []byte {
	out := appendU32(nil, uint32(len(ids)))
	for _, id := range ids {
		out = append(out, id[:]...)
	}
	return out
}

func decodeProposalShortIds(b []byte) ([]chain.ProposalShortId, error) {
	c := newCursor(b)
	n, err := c.readU32LE()
	if err != nil {
		return nil, err
	}
	ids := make([]chain.ProposalShortId, n)
	for i := range ids {
		raw, err := c.readExact(chain.ProposalShortIdLen)
		if err != nil {
			return nil, err
		}
		copy(ids[i][:], raw)
	}
	if !c.atEnd() {
		return nil, fmt.Errorf("proposal_short_ids: trailing bytes")
	}
	return ids, nil
}

// proposalShortIdAt reads entry i directly without decoding its neighbors.
func proposalShortIdAt(b []byte, i int) (chain.ProposalShortId, error) {
	var id chain.ProposalShortId
	c := newCursor(b)
	n, err := c.readU32LE()
	if err != nil {
		return id, err
	}
	if i < 0 || i >= int(n) {
		return id, fmt.Errorf("proposal_short_ids: index %d out of range", i)
	}
	start := 4 + i*chain.ProposalShortIdLen
	if start+chain.ProposalShortIdLen > len(b) {
		return id, fmt.Errorf("proposal_short_ids: truncated record")
	}
	copy(id[:], b[start:start+chain.ProposalShortIdLen])
	return id, nil
}

// UncleBlocks are variable length (each carries its own proposals list), so
// the list gets an offset table exactly like BlockBody's transactions.
// Layout: count u32le | offset table (count+1 u32le) | blob, where each
// blob item is encodeHeader(header) followed by encodeProposalShortIds.
func encodeUncleBlocks(uncles []chain.UncleBlock) []byte {
	blob, offsets := buildBlobWithOffsets(len(uncles), func(i int) []byte {
		item := encodeHeader(uncles[i].Header)
		item = append(item, encodeProposalShortIds(uncles[i].Proposals)...)
		return item
	})
	out := appendOffsetTable(nil, offsets)
	out = append(out, blob...)
	return out
}

func decodeUncleItem(b []byte) (chain.UncleBlock, error) {
	// Header has no fixed width (difficulty is variable-length), so we
	// decode it first and rely on decodeHeader's own trailing-bytes check
	// being relaxed via a length-prefixed split instead: we re-derive the
	// header's consumed length by decoding through a cursor shared with the
	// proposals decode rather than slicing header bytes out ahead of time.
	c := newCursor(b)
	h, hlen, err := decodeHeaderPrefix(c)
	if err != nil {
		return chain.UncleBlock{}, err
	}
	proposals, err := decodeProposalShortIds(b[hlen:])
	if err != nil {
		return chain.UncleBlock{}, err
	}
	return chain.UncleBlock{Header: h, Proposals: proposals}, nil
}

func decodeUncleBlocks(b []byte) ([]chain.UncleBlock, error) {
	c := newCursor(b)
	offsets, err := readOffsetTable(c)
	if err != nil {
		return nil, err
	}
	blob, err := c.readExact(int(offsets[len(offsets)-1]))
	if err != nil {
		return nil, err
	}
	uncles := make([]chain.UncleBlock, len(offsets)-1)
	for i := range uncles {
		item, err := sliceItem(blob, offsets, i)
		if err != nil {
			return nil, err
		}
		if uncles[i], err = decodeUncleItem(item); err != nil {
			return nil, err
		}
	}
	return uncles, nil
}

// uncleAt decodes only uncle i.
func uncleAt(b []byte, i int) (chain.UncleBlock, error) {
	c := newCursor(b)
	offsets, err := readOffsetTable(c)
	if err != nil {
		return chain.UncleBlock{}, err
	}
	blob, err := c.readExact(int(offsets[len(offsets)-1]))
	if err != nil {
		return chain.UncleBlock{}, err
	}
	item, err := sliceItem(blob, offsets, i)
	if err != nil {
		return chain.UncleBlock{}, err
	}
	return decodeUncleItem(item)
}
