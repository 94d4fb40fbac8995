// Package quota enforces the per-user daily AI request budget.
//
// The budget is a soft governance signal, not a security boundary: when the
// profile read or write fails for infrastructure reasons the gate fails
// open and allows the request, so a transient accounting failure never
// blocks a user-facing feature.
package quota

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/traderoom/journal-api/internal/config"
	"github.com/traderoom/journal-api/internal/domain"
	"github.com/traderoom/journal-api/internal/platform/logger"
	"github.com/traderoom/journal-api/internal/store"
)

// Built-in daily ceilings per subscription tier.
const (
	DefaultFreeDailyLimit  = 10
	DefaultProDailyLimit   = 100
	DefaultEliteDailyLimit = 500
)

// Decision is the outcome of one pass through the gate.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Remaining is the number of requests left today after this one.
	// It is -1 when the gate failed open and the true count is unknown.
	Remaining int
}

// Gate meters daily AI usage against the tier ceiling stored on the user's
// profile.
type Gate struct {
	profiles store.ProfileStore
	limits   map[domain.Tier]int

	// now is indirected for tests exercising the date rollover.
	now func() time.Time
}

// NewGate creates a Gate over the given profile store. Zero values in cfg
// fall back to the built-in tier ceilings.
func NewGate(profiles store.ProfileStore, cfg config.QuotaConfig) *Gate {
	limits := map[domain.Tier]int{
		domain.TierFree:  cfg.FreeDailyLimit,
		domain.TierPro:   cfg.ProDailyLimit,
		domain.TierElite: cfg.EliteDailyLimit,
	}
	if limits[domain.TierFree] <= 0 {
		limits[domain.TierFree] = DefaultFreeDailyLimit
	}
	if limits[domain.TierPro] <= 0 {
		limits[domain.TierPro] = DefaultProDailyLimit
	}
	if limits[domain.TierElite] <= 0 {
		limits[domain.TierElite] = DefaultEliteDailyLimit
	}

	return &Gate{
		profiles: profiles,
		limits:   limits,
		now:      time.Now,
	}
}

// Limit returns the daily ceiling for the given tier. Unknown tiers get the
// free-tier ceiling.
func (g *Gate) Limit(tier domain.Tier) int {
	if limit, ok := g.limits[tier]; ok {
		return limit
	}
	return g.limits[domain.TierFree]
}

// IncrementDailyUsage charges one request against the user's daily budget.
//
// The stored counter is logically zero whenever its reset date is not
// today's UTC date; no scheduled job performs the reset. At the ceiling the
// request is rejected before being counted, leaving stored state untouched.
// Otherwise count+1 and today's date are persisted and the request is
// allowed.
//
// The read-modify-write is not transactional: two concurrent increments for
// the same user can race and lose an update. That is an accepted gap, in
// line with quota being a soft signal.
func (g *Gate) IncrementDailyUsage(ctx context.Context, userID uuid.UUID) Decision {
	log := logger.FromContext(ctx)

	profile, err := g.profiles.GetByID(ctx, userID)
	if err != nil {
		// Fail open: never block a user because accounting is down.
		log.Warn("quota profile read failed, allowing request",
			"user_id", userID,
			"error", err)
		return Decision{Allowed: true, Remaining: -1}
	}

	today := domain.UTCDateString(g.now())

	count := profile.DailyAIRequests
	if profile.LastAIResetDate != today {
		count = 0
	}

	limit := g.Limit(profile.SubscriptionTier)
	if count >= limit {
		return Decision{Allowed: false, Remaining: 0}
	}

	if err := g.profiles.UpdateUsage(ctx, userID, count+1, today); err != nil {
		log.Warn("quota usage write failed, allowing request",
			"user_id", userID,
			"error", err)
		return Decision{Allowed: true, Remaining: -1}
	}

	return Decision{Allowed: true, Remaining: limit - count - 1}
}

// RemainingToday reports the requests left in the user's budget without
// charging one. Used by the usage endpoint; fails open like the increment
// path.
func (g *Gate) RemainingToday(ctx context.Context, userID uuid.UUID) Decision {
	log := logger.FromContext(ctx)

	profile, err := g.profiles.GetByID(ctx, userID)
	if err != nil {
		log.Warn("quota profile read failed",
			"user_id", userID,
			"error", err)
		return Decision{Allowed: true, Remaining: -1}
	}

	today := domain.UTCDateString(g.now())

	count := profile.DailyAIRequests
	if profile.LastAIResetDate != today {
		count = 0
	}

	limit := g.Limit(profile.SubscriptionTier)
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{Allowed: remaining > 0, Remaining: remaining}
}
