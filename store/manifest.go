package store

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DiagnosticManifest is a non-authoritative sidecar written alongside the
// bbolt file for operators and tooling: it is never read back by the
// engine itself to make a decision, only to answer "what does this store
// contain" without opening it. The engine's actual compatibility gate is
// the schema-version stamp embedded in the META column (see
// checkOrStampVersion in backend_bolt.go); this file can go stale or be
// deleted without affecting correctness.
type DiagnosticManifest struct {
	SchemaVersion uint32 `json:"schema_version"`
	ChainIDHex    string `json:"chain_id_hex"`

	TipHashHex string `json:"tip_hash"`
	TipHeight  uint64 `json:"tip_height"`
}

func manifestPath(chainDir string) string {
	return filepath.Join(chainDir, "MANIFEST.json")
}

// ReadDiagnosticManifest reads the sidecar manifest, if present.
func ReadDiagnosticManifest(chainDir string) (*DiagnosticManifest, error) {
	b, err := os.ReadFile(manifestPath(chainDir))
	if err != nil {
		return nil, err
	}
	var m DiagnosticManifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("manifest json: %w", err)
	}
	return &m, nil
}

// WriteDiagnosticManifest snapshots s's current tip into the sidecar
// manifest for chainIDHex, using write-temp/fsync/rename/fsync-dir so a
// crash mid-write never leaves a half-written manifest behind.
func WriteDiagnosticManifest(chainDir, chainIDHex string, s *ChainStore) error {
	m := &DiagnosticManifest{
		SchemaVersion: SchemaVersion,
		ChainIDHex:    chainIDHex,
	}
	if tip, ok := s.TipHeader(); ok {
		m.TipHashHex = hex.EncodeToString(tip.Hash[:])
		m.TipHeight = tip.Number
	}
	return writeManifestAtomic(chainDir, m)
}

func writeManifestAtomic(chainDir string, m *DiagnosticManifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest json: %w", err)
	}
	b = append(b, '\n')

	final := manifestPath(chainDir)
	tmp := final + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("manifest open tmp: %w", err)
	}
	_, werr := f.Write(b)
	serr := f.Sync()
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("manifest write tmp: %w", werr)
	}
	if serr != nil {
		return fmt.Errorf("manifest fsync tmp: %w", serr)
	}
	if cerr != nil {
		return fmt.Errorf("manifest close tmp: %w", cerr)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("manifest rename: %w", err)
	}

	d, err := os.Open(chainDir)
	if err != nil {
		return fmt.Errorf("manifest fsync dir open: %w", err)
	}
	if err := d.Sync(); err != nil {
		_ = d.Close()
		return fmt.Errorf("manifest fsync dir: %w", err)
	}
	if err := d.Close(); err != nil {
		return fmt.Errorf("manifest fsync dir close: %w", err)
	}
	return nil
}
