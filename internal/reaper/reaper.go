package reaper

import (
	"context"
	"log/slog"
	"time"

	"github.com/p-arndt/pfand/protocol"
)

// Reaper forces expired leases back to the reservoir on a fixed interval.
// On startup it reconciles the ledger: leases still marked active from a
// previous run have no slot behind them anymore and are marked orphaned.
type Reaper struct {
	store    ReaperStore
	manager  LeaseManager
	interval time.Duration
	logger   *slog.Logger
}

func New(st ReaperStore, mgr LeaseManager, interval time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		store:    st,
		manager:  mgr,
		interval: interval,
		logger:   logger,
	}
}

func (r *Reaper) Run(ctx context.Context) {
	r.logger.Info("reaper started", "interval", r.interval)

	r.reconcile(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper stopped")
			return
		case <-ticker.C:
			r.reapExpired(ctx)
		}
	}
}

func (r *Reaper) reapExpired(ctx context.Context) {
	expired, err := r.store.ListExpiredLeases()
	if err != nil {
		r.logger.Error("reaper: list expired", "error", err)
		return
	}

	for _, lease := range expired {
		r.logger.Info("reaping expired lease", "lease_id", lease.ID, "expired_at", lease.ExpiresAt)

		if err := r.manager.ForceReturn(ctx, lease.ID, protocol.StatusExpired); err != nil {
			r.logger.Error("reaper: force return", "lease_id", lease.ID, "error", err)
		}
	}
}

func (r *Reaper) reconcile(ctx context.Context) {
	r.logger.Info("reconciliation starting")

	active, err := r.store.ListActiveLeases()
	if err != nil {
		r.logger.Error("reconcile: list active leases", "error", err)
		return
	}

	for _, lease := range active {
		if r.manager.Outstanding(lease.ID) {
			continue
		}

		r.logger.Warn("reconcile: lease has no slot behind it, marking orphaned",
			"lease_id", lease.ID)
		if err := r.manager.ForceReturn(ctx, lease.ID, protocol.StatusOrphaned); err != nil {
			r.logger.Error("reconcile: force return", "lease_id", lease.ID, "error", err)
		}
	}

	r.logger.Info("reconciliation complete")
}
