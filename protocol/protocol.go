// Package protocol defines the JSON message types exchanged between the
// pfand daemon and its clients, plus the constants shared with the sandbox
// runtime.
package protocol

import "time"

// Lease lifecycle states as stored in the ledger and reported by the API.
const (
	StatusActive   = "active"   // checked out, TTL running
	StatusReturned = "returned" // handed back by the client
	StatusExpired  = "expired"  // TTL ran out, reaper forced the return
	StatusOrphaned = "orphaned" // active in the ledger but lost across a restart
)

// LeaseInfo describes one lease as reported by the API.
type LeaseInfo struct {
	ID         string    `json:"id"`
	Slot       string    `json:"slot"`
	Image      string    `json:"image"`
	Status     string    `json:"status"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// CheckoutRequest asks the daemon for a lease on one pooled sandbox.
type CheckoutRequest struct {
	TTLSeconds int `json:"ttl_seconds,omitempty"`
}

// ExtendRequest pushes a lease's expiry further out.
type ExtendRequest struct {
	TTLSeconds int `json:"ttl_seconds,omitempty"`
}

// StatusResponse reports reservoir occupancy.
type StatusResponse struct {
	Image       string `json:"image"`
	Available   int    `json:"available"`
	Capacity    int    `json:"capacity"`
	Outstanding int    `json:"outstanding"`
	Acquired    uint64 `json:"acquired"`
	Returned    uint64 `json:"returned"`
	Discarded   uint64 `json:"discarded"`
}

// LabelPrefix marks containers managed by pfand.
const LabelPrefix = "pfand."

// DefaultTTLSeconds bounds a lease when the client does not pick a TTL.
const DefaultTTLSeconds = 900

// WorkspaceMount is the writable directory wiped when a box returns to the
// reservoir.
const WorkspaceMount = "/workspace"
