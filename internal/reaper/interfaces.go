package reaper

import (
	"context"

	"github.com/p-arndt/pfand/internal/store"
)

// ReaperStore abstracts ledger operations needed by the reaper.
type ReaperStore interface {
	ListExpiredLeases() ([]*store.Lease, error)
	ListActiveLeases() ([]*store.Lease, error)
}

// LeaseManager abstracts the broker operations needed by the reaper.
type LeaseManager interface {
	ForceReturn(ctx context.Context, id string, status string) error
	Outstanding(id string) bool
}
