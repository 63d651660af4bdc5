package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Cache stores completions so an identical prompt is not sent twice.
type Cache interface {
	// GetCompletion returns the cached text and whether it was found.
	GetCompletion(ctx context.Context, key string) (string, bool, error)

	// SetCompletion stores a completion with TTL.
	SetCompletion(ctx context.Context, key, text string, ttl time.Duration) error

	// Close closes the cache connection
	Close() error
}

// Key derives a cache key from the endpoint, model, sampling parameters and prompt.
func Key(endpoint, model string, temperature, topP float64, prompt string) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(formatFloat(temperature)))
	h.Write([]byte{0})
	h.Write([]byte(formatFloat(topP)))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
