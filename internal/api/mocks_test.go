package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/p-arndt/pfand/internal/broker"
	"github.com/p-arndt/pfand/protocol"
)

type MockLeaseService struct {
	mock.Mock
}

func (m *MockLeaseService) Checkout(ctx context.Context, opts broker.CheckoutOpts) (*protocol.LeaseInfo, error) {
	args := m.Called(ctx, opts)
	if info := args.Get(0); info != nil {
		return info.(*protocol.LeaseInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeaseService) Return(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeaseService) Extend(ctx context.Context, id string, ttlSeconds int) (*protocol.LeaseInfo, error) {
	args := m.Called(ctx, id, ttlSeconds)
	if info := args.Get(0); info != nil {
		return info.(*protocol.LeaseInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeaseService) Get(ctx context.Context, id string) (*protocol.LeaseInfo, error) {
	args := m.Called(ctx, id)
	if info := args.Get(0); info != nil {
		return info.(*protocol.LeaseInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeaseService) List(ctx context.Context) ([]protocol.LeaseInfo, error) {
	args := m.Called(ctx)
	if leases := args.Get(0); leases != nil {
		return leases.([]protocol.LeaseInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeaseService) Status() protocol.StatusResponse {
	args := m.Called()
	return args.Get(0).(protocol.StatusResponse)
}
