package broker

import (
	"github.com/p-arndt/pfand/internal/sandbox"
	"github.com/p-arndt/pfand/pool"
)

// poolReservoir adapts a sandbox pool to the Reservoir interface.
type poolReservoir struct {
	p *pool.Pool[*sandbox.Box]
}

// PoolReservoir wraps a pre-warmed sandbox pool for use by the broker.
func PoolReservoir(p *pool.Pool[*sandbox.Box]) Reservoir {
	return poolReservoir{p: p}
}

func (r poolReservoir) Acquire() (SlotLease, error) {
	l, err := r.p.Acquire()
	if err != nil {
		return nil, err
	}
	return &boxLease{lease: l, slotID: l.Value().Slot()}, nil
}

func (r poolReservoir) Available() int    { return r.p.Size() }
func (r poolReservoir) Capacity() int     { return r.p.Cap() }
func (r poolReservoir) Stats() pool.Stats { return r.p.Stats() }

// boxLease pins the slot id at acquire time; the underlying lease zeroes
// its value on release.
type boxLease struct {
	lease  *pool.Lease[*sandbox.Box]
	slotID string
}

func (b *boxLease) SlotID() string { return b.slotID }
func (b *boxLease) Release()       { b.lease.Release() }
