package store

import "log/slog"

// Read-path backend and decode failures are converted to panics: per the
// engine's error-handling contract, a readable-but-corrupt database or a
// misconfigured column count is not locally recoverable, so helpers unwrap
// by policy instead of threading an error return through every getter. Both
// paths log at error before unwinding, since the panic message alone
// reaches whatever recovers it, not necessarily an operator's log stream.

func panicBackendIO(err error) {
	slog.Default().Error("store: backend read failed", "err", err)
	panic(newErr(ErrBackendIO, "backend read failed", err))
}

func panicDecode(what string, err error) {
	slog.Default().Error("store: decode failed", "what", what, "err", err)
	panic(newErr(ErrDecode, "failed to decode "+what, err))
}
