package chain

// ProposalShortIdLen is the width of a truncated transaction-id proposal
// advertisement.
const ProposalShortIdLen = 10

// ProposalShortId is a truncated transaction hash used to propose a
// transaction for inclusion in a later block without shipping its full body.
type ProposalShortId [ProposalShortIdLen]byte

// ProposalShortIdFromHash truncates a transaction hash to its proposal id.
func ProposalShortIdFromHash(h Hash) ProposalShortId {
	var id ProposalShortId
	copy(id[:], h[:ProposalShortIdLen])
	return id
}

// UncleBlock is an orphaned sibling block embedded by reference (header +
// proposals only, no body) so its proof-of-work still contributes to the
// chain's total security.
type UncleBlock struct {
	Header    Header
	Proposals []ProposalShortId
}

// Block is the full on-wire block: header, transactions, embedded uncles and
// proposed-transaction ids.
type Block struct {
	Header       Header
	Transactions []Transaction
	Uncles       []UncleBlock
	Proposals    []ProposalShortId
}

// Cellbase returns the block's first transaction, the coin-issuance
// transaction every non-empty block carries.
func (b *Block) Cellbase() *Transaction {
	if len(b.Transactions) == 0 {
		return nil
	}
	return &b.Transactions[0]
}

// Equal performs a deep, content-based comparison (used by round-trip
// tests rather than reflect.DeepEqual, since big.Int and slice-of-slice
// fields don't compare usefully with ==).
func (b *Block) Equal(o *Block) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Header.Hash != o.Header.Hash {
		return false
	}
	if len(b.Transactions) != len(o.Transactions) {
		return false
	}
	for i := range b.Transactions {
		if b.Transactions[i].Hash != o.Transactions[i].Hash {
			return false
		}
	}
	if len(b.Uncles) != len(o.Uncles) {
		return false
	}
	for i := range b.Uncles {
		if b.Uncles[i].Header.Hash != o.Uncles[i].Header.Hash {
			return false
		}
	}
	if len(b.Proposals) != len(o.Proposals) {
		return false
	}
	for i := range b.Proposals {
		if b.Proposals[i] != o.Proposals[i] {
			return false
		}
	}
	return true
}
