package sandbox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p-arndt/pfand/internal/config"
	"github.com/p-arndt/pfand/pool"
)

// NewReservoir pre-warms cfg.Capacity containers and stocks a pool with
// them. On any creation failure the already-created containers are removed
// before the error is returned, so a failed warm-up leaves nothing behind.
func NewReservoir(ctx context.Context, c *Client, cfg *config.Config, logger *slog.Logger) (*pool.Pool[*Box], error) {
	boxes := make([]*Box, 0, cfg.Capacity)

	for i := 0; i < cfg.Capacity; i++ {
		slotID := fmt.Sprintf("slot-%d", i)
		containerID, err := c.CreateContainer(ctx, CreateOpts{
			SlotID: slotID,
			Image:  cfg.Image,
			Limits: cfg.Sandbox,
		})
		if err != nil {
			for _, b := range boxes {
				b.Release()
			}
			return nil, fmt.Errorf("warming %s: %w", slotID, err)
		}
		logger.Info("warmed sandbox", "slot", slotID, "container", containerID[:12])
		boxes = append(boxes, NewBox(c, containerID, slotID))
	}

	next := 0
	return pool.New(cfg.Capacity, func() *Box {
		b := boxes[next]
		next++
		return b
	})
}

// DrainReservoir acquires every remaining box and removes its container.
// Called on shutdown after outstanding leases have been returned.
func DrainReservoir(p *pool.Pool[*Box], logger *slog.Logger) {
	for {
		l, err := p.Acquire()
		if err != nil {
			return
		}
		b := l.Value()
		logger.Info("removing pooled sandbox", "slot", b.Slot())
		if err := b.Release(); err != nil {
			logger.Error("remove pooled sandbox", "slot", b.Slot(), "error", err)
		}
		// The box is gone; dropping the lease without Release keeps it
		// out of the free list.
	}
}

// SweepLeftovers removes containers left behind by a previous daemon run.
func SweepLeftovers(ctx context.Context, c *Client, logger *slog.Logger) error {
	leftovers, err := c.ListPooledContainers(ctx)
	if err != nil {
		return err
	}
	for _, info := range leftovers {
		logger.Info("sweeping leftover sandbox", "slot", info.SlotID, "container", info.ContainerID[:12])
		if err := c.RemoveContainer(ctx, info.ContainerID); err != nil {
			logger.Error("sweep leftover", "container", info.ContainerID[:12], "error", err)
		}
	}
	return nil
}
