package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/traderoom/journal-api/internal/domain"
)

// ProfileStore defines the interface for profile data persistence.
type ProfileStore interface {
	// Create saves a new profile to the store.
	// Returns ErrDuplicate if a profile already exists for the user.
	// Returns validation errors from the domain Profile if data is invalid.
	Create(ctx context.Context, profile *domain.Profile) error

	// GetByID retrieves a profile by the owning user's ID.
	// Returns ErrProfileNotFound if the profile does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)

	// UpdateUsage persists the daily AI usage counter and its reset date for
	// the given user. This is a plain read-modify-write update with no
	// locking; concurrent increments to the same profile can lose updates.
	// Returns ErrProfileNotFound if the profile does not exist.
	UpdateUsage(ctx context.Context, id uuid.UUID, dailyRequests int, resetDate string) error

	// WithTx returns a new ProfileStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx DBTX) ProfileStore
}
