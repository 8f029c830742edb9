package chain

// HashType selects how a Script's CodeHash is interpreted when the engine
// resolves the lock/type script. The store never interprets it; it is
// carried as an opaque attribute of CellOutput.
type HashType byte

const (
	HashTypeData HashType = 0x00
	HashTypeType HashType = 0x01
)

// Script is a lock or type script attached to a CellOutput. Scripts are
// never evaluated by the storage engine; they are opaque payloads addressed
// by CodeHash.
type Script struct {
	CodeHash Hash
	HashType HashType
	Args     []byte
}

func (s *Script) equal(o *Script) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.CodeHash != o.CodeHash || s.HashType != o.HashType {
		return false
	}
	if len(s.Args) != len(o.Args) {
		return false
	}
	for i := range s.Args {
		if s.Args[i] != o.Args[i] {
			return false
		}
	}
	return true
}

// CellOutput represents a spendable coin: a capacity amount locked under a
// lock script, optionally guarded by an additional type script, with a
// data_hash binding it to the cell's associated output data.
type CellOutput struct {
	Capacity    uint64
	LockScript  Script
	TypeScript  *Script // nil if absent
	DataHash    Hash
}

func (c *CellOutput) Equal(o *CellOutput) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Capacity != o.Capacity || c.DataHash != o.DataHash {
		return false
	}
	if !c.LockScript.equal(&o.LockScript) {
		return false
	}
	return c.TypeScript.equal(o.TypeScript)
}
