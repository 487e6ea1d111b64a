package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers webhook delivery IDs so a redelivered event is
// processed at most once within the TTL window.
type IdempotencyStore interface {
	// MarkProcessed records a delivery ID with a TTL. It returns true when
	// the ID was newly recorded and false when an unexpired mark already
	// existed.
	MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether a delivery ID holds an unexpired mark.
	IsProcessed(ctx context.Context, deliveryID string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
