package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sufield/todoapi/internal/bg"
	"github.com/sufield/todoapi/internal/ports"
)

// Reaper periodically purges tombstoned items whose undo window has elapsed.
//
// Each sweep lists candidates in one transaction and purges each in its own,
// where ItemService.Purge re-checks the window under the row lock. A restore
// that lands between the two therefore wins.
type Reaper struct {
	store    ports.Store
	clock    ports.Clock
	items    *ItemService
	interval time.Duration
	batch    int
	runner   bg.Runner
	logger   *slog.Logger
}

// NewReaper wires a Reaper around items. WithPurgeInterval, WithPurgeBatch,
// WithRunner and WithLogger apply.
func NewReaper(store ports.Store, clock ports.Clock, items *ItemService, opts ...Option) *Reaper {
	s := buildSettings(opts)
	return &Reaper{
		store:    store,
		clock:    clock,
		items:    items,
		interval: s.purgeInterval,
		batch:    s.purgeBatch,
		runner:   s.runner,
		logger:   s.logger,
	}
}

// Sweep runs one pass and returns how many items it purged. Per-item
// failures are logged and skipped; only a failure to list candidates is
// returned.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	cutoff := r.clock.Now().Add(-r.items.UndoWindow())

	var ids []int64
	err := r.store.Atomic(ctx, func(tx ports.Tx) error {
		var err error
		ids, err = tx.Items().ListPurgeable(ctx, cutoff, r.batch)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("list purgeable items: %w", err)
	}

	purged := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return purged, ctx.Err()
		}
		ok, err := r.items.Purge(ctx, id)
		if err != nil {
			r.logger.Warn("purge failed", "item_id", id, "error", err)
			continue
		}
		if ok {
			purged++
		}
	}

	if purged > 0 {
		r.logger.Info("purged tombstoned items", "count", purged, "candidates", len(ids))
	}
	return purged, nil
}

// Run sweeps every interval until ctx is done. It returns nil on
// cancellation.
func (r *Reaper) Run(ctx context.Context) error {
	r.logger.Info("reaper started", "interval", r.interval, "batch", r.batch)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper stopped")
			return nil
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("reaper sweep failed", "error", err)
			}
		}
	}
}

// Start launches Run through the configured runner and returns a channel
// that receives Run's result.
func (r *Reaper) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	r.runner.Do(func() {
		done <- r.Run(ctx)
	})
	return done
}
