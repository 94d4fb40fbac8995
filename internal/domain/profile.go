package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyProfileID = errors.New("profile ID cannot be empty")
	ErrUnknownTier    = errors.New("unknown subscription tier")
)

// Tier identifies a subscription level. The tier governs the user's daily
// AI request ceiling.
type Tier string

const (
	TierFree  Tier = "free"
	TierPro   Tier = "pro"
	TierElite Tier = "elite"
)

// Valid reports whether t is one of the known subscription tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierElite:
		return true
	}
	return false
}

// Profile represents a trader's account profile as seen by this service.
// The auth provider owns identity; this service owns the AI usage counters.
type Profile struct {
	ID               uuid.UUID `json:"id"`
	SubscriptionTier Tier      `json:"subscription_tier"`

	// DailyAIRequests counts requests made on LastAIResetDate. The count is
	// logically zero whenever LastAIResetDate is not today's UTC date; no
	// scheduled job resets it.
	DailyAIRequests int `json:"daily_ai_requests"`

	// LastAIResetDate is the UTC calendar date (YYYY-MM-DD) the counter
	// last advanced on.
	LastAIResetDate string `json:"last_ai_reset_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile creates a Profile for the given user ID on the free tier with
// a zeroed usage counter.
func NewProfile(id uuid.UUID) (*Profile, error) {
	profile := &Profile{
		ID:               id,
		SubscriptionTier: TierFree,
		DailyAIRequests:  0,
		LastAIResetDate:  UTCDateString(time.Now()),
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return profile, nil
}

// Validate checks if the Profile has valid data.
// Returns an error if any field fails validation.
func (p *Profile) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProfileID
	}

	if !p.SubscriptionTier.Valid() {
		return ErrUnknownTier
	}

	if p.DailyAIRequests < 0 {
		return errors.New("daily AI request count cannot be negative")
	}

	return nil
}

// UTCDateString formats t as the UTC calendar date string (YYYY-MM-DD) used
// for the quota counter's logical reset comparison.
func UTCDateString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
