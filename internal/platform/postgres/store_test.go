package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"
)

// Test timeout to prevent long-running tests
const testTimeout = 5 * time.Second

// getTestDB opens a connection to the database named by DATABASE_URL and
// ensures the tables under test exist. Tests calling this are skipped when
// no database is available.
func getTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("skipping database test: DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open database connection")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping database")

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS ai_response_cache (
			cache_key TEXT PRIMARY KEY,
			response JSONB NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY,
			subscription_tier TEXT NOT NULL DEFAULT 'free',
			daily_ai_requests INTEGER NOT NULL DEFAULT 0,
			last_ai_reset_date TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err, "failed to create test table")
	}

	return db
}

// uniqueKey returns a cache key that will not collide across test runs.
func uniqueKey(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("test:%s:%d", t.Name(), time.Now().UnixNano())
}
