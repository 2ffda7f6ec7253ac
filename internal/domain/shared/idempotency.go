package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which (handler, event) pairs already ran so a
// redelivered event does not raise a second alert or metric sample
type IdempotencyStore interface {
	// MarkProcessed records key and reports whether it was new
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	Close() error
}

// IdempotencyConfig controls the deduplication window
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

// DefaultIdempotencyConfig keeps keys for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{Enabled: true, TTL: 24 * time.Hour}
}
