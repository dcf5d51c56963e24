package api

import (
	"fmt"
	"regexp"
)

var (
	// leaseIDPattern matches the short UUID prefix leases are keyed by
	leaseIDPattern = regexp.MustCompile(`^[a-f0-9][a-f0-9-]{10}[a-f0-9]$`)
)

// validateTTL bounds lease TTLs; zero means the server default.
func validateTTL(ttlSeconds int) error {
	if ttlSeconds < 0 {
		return fmt.Errorf("ttl_seconds must be non-negative")
	}
	if ttlSeconds > 86400 {
		return fmt.Errorf("ttl_seconds must not exceed 86400 (24 hours)")
	}
	return nil
}

// ValidateLeaseID checks the lease ID format before it reaches the broker.
func ValidateLeaseID(id string) error {
	if id == "" {
		return fmt.Errorf("lease id is required")
	}
	if !leaseIDPattern.MatchString(id) {
		return fmt.Errorf("invalid lease id format")
	}
	return nil
}
