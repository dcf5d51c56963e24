package sandbox

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	releaseTimeout = 60 * time.Second
	resetTimeout   = 30 * time.Second
)

// runtime is the slice of Client that a Box needs; narrowed for tests.
type runtime interface {
	RemoveContainer(ctx context.Context, containerID string) error
	ResetWorkspace(ctx context.Context, containerID string) error
}

// Box is one pooled sandbox container. It satisfies hold.Resource (Release
// force-removes the container, blocking until Docker confirms) and
// pool.Resettable (Reset wipes the workspace before the box re-enters the
// reservoir).
type Box struct {
	rt          runtime
	containerID string
	slotID      string

	mu      sync.Mutex
	removed bool
}

func NewBox(c *Client, containerID, slotID string) *Box {
	return &Box{rt: c, containerID: containerID, slotID: slotID}
}

// ContainerID returns the backing container's id.
func (b *Box) ContainerID() string { return b.containerID }

// Slot returns the stable slot id the box occupies in the reservoir.
func (b *Box) Slot() string { return b.slotID }

// Releasable implements hold.Resource.
func (b *Box) Releasable() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.removed
}

// Release implements hold.Resource by force-removing the container. Only
// the first call has effect.
func (b *Box) Release() error {
	b.mu.Lock()
	if b.removed {
		b.mu.Unlock()
		return nil
	}
	b.removed = true
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	return b.rt.RemoveContainer(ctx, b.containerID)
}

// Reset implements pool.Resettable. A box whose workspace cannot be wiped
// must not re-enter the reservoir: the container is removed and the panic
// makes the pool discard the box.
func (b *Box) Reset() {
	ctx, cancel := context.WithTimeout(context.Background(), resetTimeout)
	defer cancel()

	if err := b.rt.ResetWorkspace(ctx, b.containerID); err != nil {
		_ = b.Release()
		panic(fmt.Sprintf("sandbox: reset %s: %v", b.slotID, err))
	}
}
