package testutil

import (
	"testing"
	"time"

	"github.com/p-arndt/pfand/internal/config"
	"github.com/p-arndt/pfand/internal/store"
	"github.com/p-arndt/pfand/protocol"
)

// TestConfig returns a Config with sensible test defaults.
func TestConfig() *config.Config {
	return &config.Config{
		Listen:              "127.0.0.1:0",
		APIKey:              "test-api-key",
		DBPath:              ":memory:",
		Image:               "sandbox-runtime:base",
		Capacity:            2,
		LeaseTTLSeconds:     300,
		ReapIntervalSeconds: 5,
		Sandbox: config.Sandbox{
			CPULimit:       1.0,
			MemLimit:       "512m",
			PidsLimit:      256,
			NetworkMode:    "none",
			ReadonlyRootfs: true,
		},
	}
}

// TestLease returns an active ledger entry for a pooled slot.
func TestLease(id string) *store.Lease {
	now := time.Now().UTC()
	return &store.Lease{
		ID:           id,
		Slot:         "slot-0",
		Image:        "sandbox-runtime:base",
		Status:       protocol.StatusActive,
		AcquiredAt:   now,
		ExpiresAt:    now.Add(5 * time.Minute),
		LastActivity: now,
	}
}

// NewTestStore creates an in-memory SQLite store for testing.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}
