// Package pool hands out exclusive leases on a fixed reservoir of pre-built
// objects. The reservoir is stocked once at construction and never grows;
// returning a lease resets the object and makes it available to the next
// acquirer. The free list is a stack, so the most recently returned object
// is handed out first.
package pool

import (
	"errors"
	"fmt"
	"sync"
)

// ErrExhausted is returned by Acquire when no object is available. It is
// recoverable: retry after a lease is returned, or treat it as a capacity
// signal.
var ErrExhausted = errors.New("pool: exhausted")

// Resettable is optionally implemented by pooled objects that carry state
// between uses. The pool calls Reset as a lease is returned, so a leased
// object's prior state is never visible to the next acquirer. A Reset that
// panics discards the object instead of corrupting the reservoir.
type Resettable interface {
	Reset()
}

// Cloner is implemented by objects that can stock a pool from a prototype.
type Cloner[T any] interface {
	Clone() T
}

// Stats is a point-in-time snapshot of pool activity.
type Stats struct {
	Acquired  uint64 `json:"acquired"`
	Returned  uint64 `json:"returned"`
	Discarded uint64 `json:"discarded"`
	Available int    `json:"available"`
	Capacity  int    `json:"capacity"`
}

// Pool is a bounded reservoir of reusable objects. The free list is guarded
// by a mutex so Acquire and lease returns may run from multiple goroutines;
// the objects themselves are handed out exclusively and need no locking
// while leased.
type Pool[T any] struct {
	mu       sync.Mutex
	free     []T
	capacity int

	acquired  uint64
	returned  uint64
	discarded uint64
}

// New builds a pool of exactly capacity objects, all initially available.
// build is called once per slot.
func New[T any](capacity int, build func() T) (*Pool[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("pool: capacity must be positive, got %d", capacity)
	}
	if build == nil {
		return nil, errors.New("pool: build function is required")
	}
	p := &Pool[T]{
		capacity: capacity,
		free:     make([]T, 0, capacity),
	}
	for i := 0; i < capacity; i++ {
		p.free = append(p.free, build())
	}
	return p, nil
}

// NewFromPrototype stocks a pool by cloning proto capacity times.
func NewFromPrototype[T Cloner[T]](capacity int, proto T) (*Pool[T], error) {
	return New(capacity, proto.Clone)
}

// Acquire removes the most recently returned object from the free list and
// wraps it in a Lease. It fails with ErrExhausted when the reservoir is
// empty; check Empty or Size first to avoid that, or retry later.
func (p *Pool[T]) Acquire() (*Lease[T], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.free)
	if n == 0 {
		return nil, ErrExhausted
	}

	obj := p.free[n-1]
	var zero T
	p.free[n-1] = zero
	p.free = p.free[:n-1]
	p.acquired++

	return &Lease[T]{pool: p, obj: obj}, nil
}

// Empty reports whether no object is currently available.
func (p *Pool[T]) Empty() bool {
	return p.Size() == 0
}

// Size returns the number of available objects.
func (p *Pool[T]) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Cap returns the reservoir capacity fixed at construction. Discarded
// objects reduce what Size can reach but never change Cap.
func (p *Pool[T]) Cap() int {
	return p.capacity
}

// Stats returns a snapshot of pool counters.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Acquired:  p.acquired,
		Returned:  p.returned,
		Discarded: p.discarded,
		Available: len(p.free),
		Capacity:  p.capacity,
	}
}

// put returns obj to the free list after resetting it. Called by Lease.
func (p *Pool[T]) put(obj T) {
	if r, ok := any(obj).(Resettable); ok {
		if !safeReset(r) {
			p.mu.Lock()
			p.discarded++
			p.mu.Unlock()
			return
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, obj)
	p.returned++
}

func safeReset(r Resettable) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	r.Reset()
	return true
}
