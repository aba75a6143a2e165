package revocation

import (
	"fmt"
	"time"

	"ishemalink/pkg/platform/sentinel"
)

// validateTTL rejects entries that would never expire or are already dead.
func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}

// RemainingTTL is how long a revocation for a token expiring at expiresAt must
// be kept. Already-expired tokens get a one second floor so the write succeeds.
func RemainingTTL(expiresAt, now time.Time) time.Duration {
	ttl := expiresAt.Sub(now)
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}
