package reaper

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/p-arndt/pfand/internal/store"
)

// MockReaperStore mocks the ReaperStore interface.
type MockReaperStore struct {
	mock.Mock
}

func (m *MockReaperStore) ListExpiredLeases() ([]*store.Lease, error) {
	args := m.Called()
	if leases := args.Get(0); leases != nil {
		return leases.([]*store.Lease), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReaperStore) ListActiveLeases() ([]*store.Lease, error) {
	args := m.Called()
	if leases := args.Get(0); leases != nil {
		return leases.([]*store.Lease), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockLeaseManager mocks the LeaseManager interface.
type MockLeaseManager struct {
	mock.Mock
}

func (m *MockLeaseManager) ForceReturn(ctx context.Context, id string, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLeaseManager) Outstanding(id string) bool {
	return m.Called(id).Bool(0)
}
