package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/traderoom/journal-api/internal/domain"
	"github.com/traderoom/journal-api/internal/platform/logger"
	"github.com/traderoom/journal-api/internal/store"
)

// PostgresProfileStore implements the store.ProfileStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProfileStore struct {
	db store.DBTX
}

// NewPostgresProfileStore creates a new PostgreSQL implementation of the
// ProfileStore interface. It accepts a database connection that should be
// initialized and managed by the caller.
func NewPostgresProfileStore(db store.DBTX) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

// Ensure PostgresProfileStore implements store.ProfileStore
var _ store.ProfileStore = (*PostgresProfileStore)(nil)

// Create implements store.ProfileStore.Create
func (s *PostgresProfileStore) Create(ctx context.Context, profile *domain.Profile) error {
	log := logger.FromContext(ctx)

	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO profiles
			(id, subscription_tier, daily_ai_requests, last_ai_reset_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, query,
		profile.ID,
		profile.SubscriptionTier,
		profile.DailyAIRequests,
		profile.LastAIResetDate,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create profile",
			"profile_id", profile.ID,
			"error", err)
		return fmt.Errorf("failed to create profile: %w", MapError(err))
	}

	return nil
}

// GetByID implements store.ProfileStore.GetByID
func (s *PostgresProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT id, subscription_tier, daily_ai_requests, last_ai_reset_date, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var profile domain.Profile
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.SubscriptionTier,
		&profile.DailyAIRequests,
		&profile.LastAIResetDate,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsNotFoundError(mapped) {
			return nil, store.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", mapped)
	}

	return &profile, nil
}

// UpdateUsage implements store.ProfileStore.UpdateUsage
func (s *PostgresProfileStore) UpdateUsage(
	ctx context.Context,
	id uuid.UUID,
	dailyRequests int,
	resetDate string,
) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE profiles
		SET daily_ai_requests = $1, last_ai_reset_date = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, dailyRequests, resetDate, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update profile usage",
			"profile_id", id,
			"error", err)
		return fmt.Errorf("failed to update profile usage: %w", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return store.ErrProfileNotFound
	}

	return nil
}

// WithTx implements store.ProfileStore.WithTx
func (s *PostgresProfileStore) WithTx(tx store.DBTX) store.ProfileStore {
	return &PostgresProfileStore{db: tx}
}
