package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// EventCache implements ports.EventCache using Redis. It short-circuits
// verbatim redeliveries of an already-fulfilled gateway event id; the order
// table's unique constraint remains the authoritative idempotency layer.
type EventCache struct {
	client *goredis.Client
	prefix string
}

// NewEventCache creates a new Redis-backed processed-event cache.
func NewEventCache(client *goredis.Client) *EventCache {
	return &EventCache{
		client: client,
		prefix: "event:",
	}
}

// Get retrieves a cached fulfillment result by gateway event id.
// Returns nil, nil if the key does not exist.
func (c *EventCache) Get(ctx context.Context, eventID string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+eventID).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis event get: %w", err)
	}
	return val, nil
}

// Set stores a fulfillment result with TTL.
func (c *EventCache) Set(ctx context.Context, eventID string, value []byte, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+eventID, value, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis event set: %w", err)
	}
	return nil
}
