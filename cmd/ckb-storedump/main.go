// Command ckb-storedump opens a chain store and prints a summary of its
// current tip, mirroring the inspection output rubin-node prints at
// startup but scoped to what the storage engine alone can answer.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ckb-go/chainstore/store"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ckb-storedump", flag.ContinueOnError)
	fs.SetOutput(stderr)

	datadir := fs.String("datadir", "", "node data directory")
	chainIDHex := fs.String("chain-id", "", "64-character hex chain id")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *datadir == "" || *chainIDHex == "" {
		_, _ = fmt.Fprintln(stderr, "usage: ckb-storedump -datadir DIR -chain-id HEX")
		return 2
	}

	level, err := parseLogLevel(*logLevel)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid log-level: %v\n", err)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := store.EnsureChainDir(*datadir, *chainIDHex); err != nil {
		_, _ = fmt.Fprintf(stderr, "ensure chain dir: %v\n", err)
		return 2
	}
	backend, err := store.OpenBoltBackend(store.DBPath(*datadir, *chainIDHex))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "open backend: %v\n", err)
		return 2
	}
	defer func() { _ = backend.Close() }()

	cs, err := store.NewChainStore(backend, store.DefaultStoreConfig())
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "new chain store: %v\n", err)
		return 2
	}

	tip, ok := cs.TipHeader()
	if !ok {
		_, _ = fmt.Fprintln(stdout, "store: empty (no genesis applied)")
		return 0
	}
	_, _ = fmt.Fprintf(stdout, "tip: number=%d hash=%x timestamp=%d epoch=%d\n",
		tip.Number, tip.Hash, tip.Timestamp, tip.Epoch)

	if ext, ok := cs.BlockExt(tip.Hash); ok {
		_, _ = fmt.Fprintf(stdout, "tip ext: total_difficulty=%s total_uncles=%d\n",
			ext.TotalDifficulty.String(), ext.TotalUnclesCount)
	}
	if epoch, ok := cs.CurrentEpochExt(); ok {
		_, _ = fmt.Fprintf(stdout, "current epoch: number=%d start=%d length=%d\n",
			epoch.Number, epoch.StartNumber, epoch.Length)
	}

	if err := store.WriteDiagnosticManifest(store.ChainDir(*datadir, *chainIDHex), *chainIDHex, cs); err != nil {
		_, _ = fmt.Fprintf(stderr, "write manifest: %v\n", err)
		return 1
	}
	return 0
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
