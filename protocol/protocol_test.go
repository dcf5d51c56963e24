package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseInfoRoundtrip(t *testing.T) {
	info := LeaseInfo{
		ID:         "lease-123",
		Slot:       "slot-0",
		Image:      "sandbox-runtime:base",
		Status:     StatusActive,
		AcquiredAt: time.Now().UTC().Truncate(time.Second),
		ExpiresAt:  time.Now().UTC().Add(15 * time.Minute).Truncate(time.Second),
	}

	data, err := json.Marshal(info)
	require.NoError(t, err)

	var decoded LeaseInfo
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, info, decoded)
}

func TestCheckoutRequestOmitsZeroTTL(t *testing.T) {
	data, err := json.Marshal(CheckoutRequest{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	data, err = json.Marshal(CheckoutRequest{TTLSeconds: 60})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ttl_seconds":60}`, string(data))
}

func TestStatusConstantsAreDistinct(t *testing.T) {
	statuses := []string{StatusActive, StatusReturned, StatusExpired, StatusOrphaned}
	seen := map[string]bool{}
	for _, s := range statuses {
		assert.False(t, seen[s], "duplicate status %q", s)
		seen[s] = true
	}
}
