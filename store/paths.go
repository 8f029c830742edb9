package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// ChainDir returns the on-disk directory for a given chain under datadir:
//
//	datadir/chains/<chain_id_hex>/
func ChainDir(datadir, chainIDHex string) string {
	return filepath.Join(datadir, "chains", chainIDHex)
}

// DBPath returns the bbolt file path for the chain's store within its
// ChainDir.
func DBPath(datadir, chainIDHex string) string {
	return filepath.Join(ChainDir(datadir, chainIDHex), "store.db")
}

// EnsureChainDir creates datadir/chains/<chain_id_hex> if absent, so
// OpenBoltBackend never fails solely because a parent directory is
// missing.
func EnsureChainDir(datadir, chainIDHex string) error {
	dir := ChainDir(datadir, chainIDHex)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
