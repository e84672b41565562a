package shared

import (
	"context"
	"time"
)

// IdempotencyStore records request keys that have already been applied so
// that a replayed request can return the original outcome instead of being
// executed twice.
type IdempotencyStore interface {
	// MarkApplied records the result reference for a request key with a TTL.
	// Returns true if the key was newly recorded, false if it already existed.
	MarkApplied(ctx context.Context, key, result string, ttl time.Duration) (bool, error)

	// AppliedResult returns the recorded result reference for a key.
	// The second return value is false when the key has not been seen.
	AppliedResult(ctx context.Context, key string) (string, bool, error)

	// Close releases store resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long an applied request key is remembered.
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
