package main

import (
	"fmt"
	"log/slog"

	"tokenledger/core/state"
)

// restoreState loads the persisted ledger. A snapshot that is present but
// cannot be carried over, including one tagged with a newer schema version,
// stops the daemon unless allowReset is set. With allowReset the discarded
// snapshot is deleted so the empty state becomes authoritative.
func restoreState(store *state.SnapshotStore, opts state.Options, allowReset bool, logger *slog.Logger) (*state.State, state.RestoreReport, error) {
	st, report, err := store.Load(opts)
	if err != nil {
		return nil, report, err
	}
	if report.Err == nil {
		return st, report, nil
	}
	if !allowReset {
		return nil, report, fmt.Errorf("snapshot version %d could not be restored (rerun with -allow-reset to discard it): %w", report.Version, report.Err)
	}
	logger.Warn("discarding unreadable snapshot",
		slog.Uint64("version", uint64(report.Version)),
		slog.Any("error", report.Err))
	if err := store.Reset(); err != nil {
		return nil, report, err
	}
	return st, report, nil
}
