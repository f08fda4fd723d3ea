package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"tokenledger/core/state"
	"tokenledger/core/types"
	"tokenledger/observability"
)

// daemon owns the ledger state. Every access goes through mu so that each
// state operation runs as one indivisible step.
type daemon struct {
	mu       sync.Mutex
	state    *state.State
	store    *state.SnapshotStore
	metrics  *observability.LedgerMetrics
	logger   *slog.Logger
	interval time.Duration
	now      func() types.Timestamp

	auctionDue bool
	lastSave   time.Time
	lastErr    error
}

func newDaemon(st *state.State, store *state.SnapshotStore, metrics *observability.LedgerMetrics, logger *slog.Logger, interval time.Duration) *daemon {
	if logger == nil {
		logger = slog.Default()
	}
	return &daemon{
		state:    st,
		store:    store,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
		now:      types.Now,
	}
}

// run refreshes metrics and persists snapshots until ctx is cancelled. A
// final snapshot is written on the way out.
func (d *daemon) run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.tick()
	for {
		select {
		case <-ctx.Done():
			return d.save()
		case <-ticker.C:
			d.tick()
			if err := d.save(); err != nil {
				d.logger.Error("snapshot failed", slog.Any("error", err))
			}
		}
	}
}

func (d *daemon) tick() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	due := d.state.IsAuctionDue(now)
	d.metrics.SetAuctionDue(due)
	if due && !d.auctionDue {
		bidding := d.state.BiddingState()
		d.logger.Info("auction due",
			slog.Uint64("cycles", bidding.CyclesSinceAuction),
			slog.Int("bidders", len(bidding.Bids)),
			slog.Float64("fee_ratio", bidding.FeeRatio))
	}
	d.auctionDue = due
}

func (d *daemon) save() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	size, err := d.store.Save(d.state)
	d.metrics.RecordSnapshot(size, err)
	d.lastErr = err
	if err != nil {
		return err
	}
	d.lastSave = time.Now()
	d.logger.Debug("snapshot written", slog.Int("bytes", size))
	return nil
}

var errNoSnapshot = errors.New("no snapshot written yet")

// health reports the outcome of the most recent snapshot.
func (d *daemon) health() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastErr != nil {
		return d.lastErr
	}
	if d.lastSave.IsZero() {
		return errNoSnapshot
	}
	return nil
}
