package broker

import (
	"time"

	"github.com/p-arndt/pfand/internal/store"
	"github.com/p-arndt/pfand/pool"
)

// LeaseStore abstracts ledger operations needed by the broker.
type LeaseStore interface {
	CreateLease(l *store.Lease) error
	GetLease(id string) (*store.Lease, error)
	ListLeases() ([]*store.Lease, error)
	MarkLeaseReturned(id string, status string) error
	ExtendLease(id string, expiresAt time.Time) error
}

// SlotLease is one checked-out reservoir slot. Release hands the slot back
// to the reservoir, blocking while the backing resource is reset.
type SlotLease interface {
	SlotID() string
	Release()
}

// Reservoir abstracts the pooled resource supply.
type Reservoir interface {
	Acquire() (SlotLease, error)
	Available() int
	Capacity() int
	Stats() pool.Stats
}
