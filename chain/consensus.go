package chain

// Consensus is the genesis descriptor the store's genesis initializer
// consumes. The storage engine treats it as an opaque data bundle; it
// performs no consensus validation of its own.
type Consensus struct {
	GenesisBlock    Block
	GenesisEpochExt EpochExt
}
