package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/p-arndt/pfand/internal/config"
	"github.com/p-arndt/pfand/internal/store"
	"github.com/p-arndt/pfand/protocol"
)

// Sentinel errors
var (
	ErrNilDependency = errors.New("broker: nil dependency")
	ErrLeaseNotFound = errors.New("lease not found")
	ErrLeaseExpired  = errors.New("lease expired")
)

// Broker checks sandboxes out of the reservoir as TTL-bound leases and
// records every lease in the ledger. The in-memory lease table is the
// authority on which slots are outstanding; the ledger survives restarts.
type Broker struct {
	cfg       *config.Config
	store     LeaseStore
	reservoir Reservoir
	logger    *slog.Logger

	mu     sync.Mutex
	leases map[string]SlotLease
}

// New fails fast with ErrNilDependency when a collaborator is missing;
// a broker is never constructed half-wired.
func New(cfg *config.Config, st LeaseStore, rv Reservoir, logger *slog.Logger) (*Broker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config", ErrNilDependency)
	}
	if st == nil {
		return nil, fmt.Errorf("%w: store", ErrNilDependency)
	}
	if rv == nil {
		return nil, fmt.Errorf("%w: reservoir", ErrNilDependency)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger", ErrNilDependency)
	}
	return &Broker{
		cfg:       cfg,
		store:     st,
		reservoir: rv,
		logger:    logger,
		leases:    make(map[string]SlotLease),
	}, nil
}

type CheckoutOpts struct {
	TTLSeconds int
}

// Checkout acquires one slot from the reservoir and opens a ledger entry.
// pool.ErrExhausted passes through untouched so callers can match on it.
func (b *Broker) Checkout(ctx context.Context, opts CheckoutOpts) (*protocol.LeaseInfo, error) {
	ttl := b.resolveTTL(opts.TTLSeconds)

	sl, err := b.reservoir.Acquire()
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()[:12]
	now := time.Now().UTC()
	expiresAt := now.Add(time.Duration(ttl) * time.Second)

	rec := &store.Lease{
		ID:           id,
		Slot:         sl.SlotID(),
		Image:        b.cfg.Image,
		Status:       protocol.StatusActive,
		AcquiredAt:   now,
		ExpiresAt:    expiresAt,
		LastActivity: now,
	}
	if err := b.store.CreateLease(rec); err != nil {
		sl.Release()
		return nil, fmt.Errorf("record lease: %w", err)
	}

	b.mu.Lock()
	b.leases[id] = sl
	b.mu.Unlock()

	b.logger.Info("lease checked out", "lease_id", id, "slot", sl.SlotID(), "expires_at", expiresAt)

	return leaseInfo(rec), nil
}

// Return hands a lease's slot back to the reservoir and closes the ledger
// entry. Returning a lease that was already closed is a no-op.
func (b *Broker) Return(ctx context.Context, id string) error {
	return b.ForceReturn(ctx, id, protocol.StatusReturned)
}

// ForceReturn is Return with an explicit terminal status; the reaper uses
// it to mark expiry and orphaning.
func (b *Broker) ForceReturn(ctx context.Context, id string, status string) error {
	b.mu.Lock()
	sl, outstanding := b.leases[id]
	delete(b.leases, id)
	b.mu.Unlock()

	if !outstanding {
		rec, err := b.store.GetLease(id)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%w: %s", ErrLeaseNotFound, id)
		}
		if rec.Status != protocol.StatusActive {
			return nil // already closed
		}
		// Active in the ledger but not held here: lost across a restart.
		// Close the ledger entry; there is no slot to hand back.
		return b.store.MarkLeaseReturned(id, status)
	}

	// Blocking: the slot is reset before it re-enters the reservoir.
	sl.Release()

	if err := b.store.MarkLeaseReturned(id, status); err != nil {
		return err
	}

	b.logger.Info("lease returned", "lease_id", id, "slot", sl.SlotID(), "status", status)
	return nil
}

// Extend pushes a lease's expiry out by ttlSeconds from now.
func (b *Broker) Extend(ctx context.Context, id string, ttlSeconds int) (*protocol.LeaseInfo, error) {
	rec, err := b.store.GetLease(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrLeaseNotFound, id)
	}
	if rec.Status != protocol.StatusActive {
		return nil, fmt.Errorf("%w: %s (status=%s)", ErrLeaseExpired, id, rec.Status)
	}
	if time.Now().After(rec.ExpiresAt) {
		return nil, fmt.Errorf("%w: %s", ErrLeaseExpired, id)
	}

	ttl := b.resolveTTL(ttlSeconds)
	expiresAt := time.Now().UTC().Add(time.Duration(ttl) * time.Second)
	if err := b.store.ExtendLease(id, expiresAt); err != nil {
		return nil, err
	}

	rec.ExpiresAt = expiresAt
	return leaseInfo(rec), nil
}

// Get returns one lease from the ledger.
func (b *Broker) Get(ctx context.Context, id string) (*protocol.LeaseInfo, error) {
	rec, err := b.store.GetLease(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrLeaseNotFound, id)
	}
	return leaseInfo(rec), nil
}

// List returns all ledger entries, newest first.
func (b *Broker) List(ctx context.Context) ([]protocol.LeaseInfo, error) {
	recs, err := b.store.ListLeases()
	if err != nil {
		return nil, err
	}
	result := make([]protocol.LeaseInfo, len(recs))
	for i, r := range recs {
		result[i] = *leaseInfo(r)
	}
	return result, nil
}

// Outstanding reports whether the broker currently holds the lease's slot.
func (b *Broker) Outstanding(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.leases[id]
	return ok
}

// Status reports reservoir occupancy.
func (b *Broker) Status() protocol.StatusResponse {
	b.mu.Lock()
	outstanding := len(b.leases)
	b.mu.Unlock()

	stats := b.reservoir.Stats()
	return protocol.StatusResponse{
		Image:       b.cfg.Image,
		Available:   stats.Available,
		Capacity:    stats.Capacity,
		Outstanding: outstanding,
		Acquired:    stats.Acquired,
		Returned:    stats.Returned,
		Discarded:   stats.Discarded,
	}
}

// Shutdown force-returns every outstanding lease so the reservoir can be
// drained cleanly.
func (b *Broker) Shutdown(ctx context.Context) {
	b.mu.Lock()
	ids := make([]string, 0, len(b.leases))
	for id := range b.leases {
		ids = append(ids, id)
	}
	b.mu.Unlock()

	for _, id := range ids {
		if err := b.ForceReturn(ctx, id, protocol.StatusReturned); err != nil {
			b.logger.Error("shutdown return", "lease_id", id, "error", err)
		}
	}
}

func (b *Broker) resolveTTL(ttlSeconds int) int {
	if ttlSeconds <= 0 {
		return b.cfg.LeaseTTLSeconds
	}
	return ttlSeconds
}

func leaseInfo(rec *store.Lease) *protocol.LeaseInfo {
	return &protocol.LeaseInfo{
		ID:         rec.ID,
		Slot:       rec.Slot,
		Image:      rec.Image,
		Status:     rec.Status,
		AcquiredAt: rec.AcquiredAt,
		ExpiresAt:  rec.ExpiresAt,
	}
}
