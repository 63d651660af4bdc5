package cache

import (
	"context"
	"time"
)

// NoOpCache is used when no cache provider is configured:
// every lookup is a miss and every store succeeds.
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetCompletion(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (c *NoOpCache) SetCompletion(ctx context.Context, key, text string, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
