// Package gateway orchestrates AI inference calls: cache lookup, quota
// gating, the paced upstream call, and cache write-back. Every AI feature
// of the application goes through Gateway.Generate.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/traderoom/journal-api/internal/cache"
	"github.com/traderoom/journal-api/internal/platform/gemini"
	"github.com/traderoom/journal-api/internal/platform/logger"
	"github.com/traderoom/journal-api/internal/quota"
	"github.com/traderoom/journal-api/internal/store"
)

// DefaultCacheTTL applies when a request does not name one.
const DefaultCacheTTL = 60 * time.Minute

// Generator produces text from a conversation transcript. Implemented by
// *gemini.Client; faked in tests.
type Generator interface {
	Generate(ctx context.Context, model string, messages []gemini.Message) (string, error)
}

// UsageGate meters per-user daily usage. Implemented by *quota.Gate.
type UsageGate interface {
	IncrementDailyUsage(ctx context.Context, userID uuid.UUID) quota.Decision
}

// Request describes one logical inference call.
type Request struct {
	UserID       uuid.UUID
	Prompt       string
	SystemPrompt string

	// Model overrides the client's default model when non-empty.
	Model string

	// CacheKey, when set, is used verbatim so callers can share responses
	// across calls by a business fingerprint. When empty the key is derived
	// from the prompt and system prompt.
	CacheKey string

	// CacheTTL defaults to DefaultCacheTTL when zero.
	CacheTTL time.Duration

	// SkipUsageCheck bypasses the quota gate entirely: neither the check
	// nor the counter mutation happens. Used for unlimited tiers.
	SkipUsageCheck bool
}

// Response is the outcome of one logical inference call.
type Response struct {
	Text string `json:"text"`

	// Cached reports whether the text was served from the response cache.
	// Cache hits are free: they consume no quota and issue no upstream call.
	Cached bool `json:"cached"`

	// RemainingRequests is the user's budget left today, or -1 when usage
	// checking was skipped or failed open.
	RemainingRequests int `json:"remainingRequests"`
}

// cachePayload is the JSON shape stored in the response cache.
type cachePayload struct {
	Text string `json:"text"`
}

// Gateway is the single entry point for AI inference.
type Gateway struct {
	generator  Generator
	cacheStore store.ResponseCacheStore
	gate       UsageGate
}

// New creates a Gateway over the given collaborators.
func New(generator Generator, cacheStore store.ResponseCacheStore, gate UsageGate) *Gateway {
	return &Gateway{
		generator:  generator,
		cacheStore: cacheStore,
		gate:       gate,
	}
}

// Generate runs one logical call: cache lookup, quota gate, upstream call,
// cache write-back.
//
// Cache hits return immediately and consume no quota. On a miss the quota
// gate runs first (unless skipped) so a rejected request never reaches the
// upstream. The counter is charged exactly once per logical call, before
// the upstream request; RemainingRequests comes from that same decision.
//
// Cache read and write failures are absorbed here: a failed read is a miss
// and a failed write is logged and ignored, trading strict caching for
// availability.
func (g *Gateway) Generate(ctx context.Context, req Request) (*Response, error) {
	log := logger.FromContext(ctx)

	if req.Prompt == "" {
		return nil, ErrEmptyPrompt
	}

	key := cache.EffectiveKey(req.CacheKey, req.Prompt, req.SystemPrompt)

	if entry, err := g.cacheStore.Get(ctx, key); err == nil {
		var payload cachePayload
		if jsonErr := json.Unmarshal(entry.Payload, &payload); jsonErr == nil && payload.Text != "" {
			log.Debug("serving cached response", "cache_key", key)
			return &Response{Text: payload.Text, Cached: true, RemainingRequests: -1}, nil
		}
		log.Warn("discarding malformed cache entry", "cache_key", key)
	} else if !store.IsNotFoundError(err) {
		// Read failures degrade to a miss rather than failing the call.
		log.Warn("cache read failed, treating as miss", "cache_key", key, "error", err)
	}

	remaining := -1
	if !req.SkipUsageCheck {
		decision := g.gate.IncrementDailyUsage(ctx, req.UserID)
		if !decision.Allowed {
			return nil, fmt.Errorf("%w: user %s", ErrQuotaExceeded, req.UserID)
		}
		remaining = decision.Remaining
	}

	messages := make([]gemini.Message, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, gemini.Message{Role: gemini.RoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, gemini.Message{Role: gemini.RoleUser, Content: req.Prompt})

	text, err := g.generator.Generate(ctx, req.Model, messages)
	if err != nil {
		return nil, err
	}

	ttl := req.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	payload, err := json.Marshal(cachePayload{Text: text})
	if err == nil {
		if storeErr := g.cacheStore.Put(ctx, key, payload, ttl); storeErr != nil {
			// Write failures cost a future cache hit, nothing more.
			log.Warn("cache write failed", "cache_key", key, "error", storeErr)
		}
	}

	return &Response{Text: text, Cached: false, RemainingRequests: remaining}, nil
}
