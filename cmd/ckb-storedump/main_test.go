package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRun_MissingArgsReturnsExitCode2(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(nil, &out, &errOut)
	if code != 2 {
		t.Fatalf("code=%d, want 2", code)
	}
	if errOut.Len() == 0 {
		t.Fatalf("expected usage message on stderr")
	}
}

func TestRun_InvalidLogLevelReturnsExitCode2(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"-datadir", dir, "-chain-id", "ab", "-log-level", "verbose"}, &out, &errOut)
	if code != 2 {
		t.Fatalf("code=%d, want 2", code)
	}
}

func TestRun_EmptyStoreReportsEmpty(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run([]string{"-datadir", dir, "-chain-id", "ab"}, &out, &errOut)
	if code != 0 {
		t.Fatalf("code=%d, want 0, stderr=%q", code, errOut.String())
	}
	if out.String() != "store: empty (no genesis applied)\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "chains", "ab", "store.db")); err != nil {
		t.Fatalf("expected store.db to be created: %v", err)
	}
}
