package api

import (
	"context"

	"github.com/p-arndt/pfand/internal/broker"
	"github.com/p-arndt/pfand/protocol"
)

// LeaseService abstracts the broker operations needed by API handlers.
type LeaseService interface {
	Checkout(ctx context.Context, opts broker.CheckoutOpts) (*protocol.LeaseInfo, error)
	Return(ctx context.Context, id string) error
	Extend(ctx context.Context, id string, ttlSeconds int) (*protocol.LeaseInfo, error)
	Get(ctx context.Context, id string) (*protocol.LeaseInfo, error)
	List(ctx context.Context) ([]protocol.LeaseInfo, error)
	Status() protocol.StatusResponse
}
