package store

import (
	"context"
	"encoding/json"
	"time"
)

// CachedResponse is a previously generated AI response held under a cache key.
type CachedResponse struct {
	// Key is the fingerprint the entry is stored under.
	Key string `json:"cache_key"`

	// Payload is the opaque JSON payload, in practice {"text": "..."}.
	Payload json.RawMessage `json:"response"`

	// ExpiresAt is the absolute expiry; the entry is live only while
	// now < ExpiresAt.
	ExpiresAt time.Time `json:"expires_at"`
}

// ResponseCacheStore defines the interface for persisting reusable AI
// responses keyed by fingerprint.
type ResponseCacheStore interface {
	// Get retrieves the live entry for key. Returns ErrCacheEntryNotFound
	// if no entry exists or the entry has expired. Expired rows are not
	// deleted; they persist until overwritten.
	Get(ctx context.Context, key string) (*CachedResponse, error)

	// Put upserts the entry for key with expiry now + ttl. Any previous
	// entry for the key is overwritten unconditionally (last-writer-wins).
	Put(ctx context.Context, key string, payload json.RawMessage, ttl time.Duration) error
}
