package store

import (
	"encoding/binary"

	"github.com/ckb-go/chainstore/chain"
)

// Column names a disjoint keyspace in the backend, one per logical
// relation. Names follow the teacher's bucket-naming convention
// (lower_snake_case, content-describing) rather than the original spec
// text's SCREAMING_CASE, which described the Rust column-family constants.
type Column string

const (
	ColumnBlockHeader      Column = "block_header"
	ColumnBlockBody        Column = "block_body"
	ColumnBlockUncle       Column = "block_uncle"
	ColumnBlockProposalIDs Column = "block_proposal_ids"
	ColumnBlockExt         Column = "block_ext"
	ColumnBlockEpoch       Column = "block_epoch"
	ColumnIndex            Column = "index"
	ColumnMeta             Column = "meta"
	ColumnTransactionAddr  Column = "transaction_addr"
	ColumnCellMeta         Column = "cell_meta"
	ColumnCellSet          Column = "cell_set"
	ColumnEpoch            Column = "epoch"
	ColumnUncles           Column = "uncles"
)

// Columns is the fixed, compile-time-constant column set published to
// backend openers (§6: "The count is a compile-time constant COLUMNS").
var Columns = []Column{
	ColumnBlockHeader,
	ColumnBlockBody,
	ColumnBlockUncle,
	ColumnBlockProposalIDs,
	ColumnBlockExt,
	ColumnBlockEpoch,
	ColumnIndex,
	ColumnMeta,
	ColumnTransactionAddr,
	ColumnCellMeta,
	ColumnCellSet,
	ColumnEpoch,
	ColumnUncles,
}

// COLUMNS is the published column count.
const COLUMNS = 13

// Singleton META keys.
var (
	metaKeyTipHeader    = []byte("TIP_HEADER")
	metaKeyCurrentEpoch = []byte("CURRENT_EPOCH")
	metaKeySchemaVer    = []byte("SCHEMA_VERSION")
)

// encodeU64 encodes a block or epoch number as a little-endian u64, the
// INDEX/EPOCH dual-direction key convention from §4.C.
func encodeU64(n uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], n)
	return b[:]
}

func decodeU64(b []byte) (uint64, bool) {
	if len(b) != 8 {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

func cellKeyBytes(p chain.OutPoint) []byte {
	k := p.Key()
	return k[:]
}
