package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/traderoom/journal-api/internal/platform/logger"
	"github.com/traderoom/journal-api/internal/store"
)

// PostgresResponseCacheStore implements the store.ResponseCacheStore
// interface using a PostgreSQL database as the storage backend.
type PostgresResponseCacheStore struct {
	db store.DBTX
}

// NewPostgresResponseCacheStore creates a new PostgreSQL implementation of
// the ResponseCacheStore interface. It accepts a database connection that
// should be initialized and managed by the caller.
func NewPostgresResponseCacheStore(db store.DBTX) *PostgresResponseCacheStore {
	return &PostgresResponseCacheStore{db: db}
}

// Ensure PostgresResponseCacheStore implements store.ResponseCacheStore
var _ store.ResponseCacheStore = (*PostgresResponseCacheStore)(nil)

// Get implements store.ResponseCacheStore.Get. Expiry is enforced in the
// query itself: a row whose expires_at is not strictly in the future is
// reported as a miss and left in place until overwritten.
func (s *PostgresResponseCacheStore) Get(ctx context.Context, key string) (*store.CachedResponse, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT cache_key, response, expires_at
		FROM ai_response_cache
		WHERE cache_key = $1 AND expires_at > now()
	`

	var entry store.CachedResponse
	err := s.db.QueryRowContext(ctx, query, key).Scan(&entry.Key, &entry.Payload, &entry.ExpiresAt)
	if err != nil {
		mapped := MapError(err)
		if store.IsNotFoundError(mapped) {
			return nil, store.ErrCacheEntryNotFound
		}
		log.Warn("failed to read response cache",
			"cache_key", key,
			"error", err)
		return nil, fmt.Errorf("failed to read response cache: %w", mapped)
	}

	return &entry, nil
}

// Put implements store.ResponseCacheStore.Put using an upsert keyed on
// cache_key. Last writer wins; there is no version check because responses
// for an identical key are expected to be semantically equivalent.
func (s *PostgresResponseCacheStore) Put(
	ctx context.Context,
	key string,
	payload json.RawMessage,
	ttl time.Duration,
) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO ai_response_cache (cache_key, response, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cache_key) DO UPDATE
		SET response = EXCLUDED.response,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at
	`

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, query, key, payload, now.Add(ttl), now)
	if err != nil {
		log.Warn("failed to store response cache entry",
			"cache_key", key,
			"error", err)
		return fmt.Errorf("failed to store response cache entry: %w", MapError(err))
	}

	return nil
}
