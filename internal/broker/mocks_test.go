package broker

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/p-arndt/pfand/internal/store"
	"github.com/p-arndt/pfand/pool"
)

// MockLeaseStore mocks the LeaseStore interface.
type MockLeaseStore struct {
	mock.Mock
}

func (m *MockLeaseStore) CreateLease(l *store.Lease) error {
	args := m.Called(l)
	return args.Error(0)
}

func (m *MockLeaseStore) GetLease(id string) (*store.Lease, error) {
	args := m.Called(id)
	if l := args.Get(0); l != nil {
		return l.(*store.Lease), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeaseStore) ListLeases() ([]*store.Lease, error) {
	args := m.Called()
	if leases := args.Get(0); leases != nil {
		return leases.([]*store.Lease), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLeaseStore) MarkLeaseReturned(id string, status string) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockLeaseStore) ExtendLease(id string, expiresAt time.Time) error {
	args := m.Called(id, expiresAt)
	return args.Error(0)
}

// MockReservoir mocks the Reservoir interface.
type MockReservoir struct {
	mock.Mock
}

func (m *MockReservoir) Acquire() (SlotLease, error) {
	args := m.Called()
	if sl := args.Get(0); sl != nil {
		return sl.(SlotLease), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReservoir) Available() int {
	return m.Called().Int(0)
}

func (m *MockReservoir) Capacity() int {
	return m.Called().Int(0)
}

func (m *MockReservoir) Stats() pool.Stats {
	return m.Called().Get(0).(pool.Stats)
}

// fakeSlotLease is a hand-rolled SlotLease that counts releases.
type fakeSlotLease struct {
	slot     string
	releases int
}

func (f *fakeSlotLease) SlotID() string { return f.slot }
func (f *fakeSlotLease) Release()       { f.releases++ }
