package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traderoom/journal-api/internal/config"
	"github.com/traderoom/journal-api/internal/domain"
	"github.com/traderoom/journal-api/internal/platform/gemini"
	"github.com/traderoom/journal-api/internal/quota"
	"github.com/traderoom/journal-api/internal/store"
)

// fakeGenerator records upstream calls and returns a fixed result.
type fakeGenerator struct {
	text string
	err  error

	calls    int
	lastMsgs []gemini.Message
}

func (f *fakeGenerator) Generate(ctx context.Context, model string, messages []gemini.Message) (string, error) {
	f.calls++
	f.lastMsgs = messages
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// fakeCacheStore is an in-memory ResponseCacheStore honoring expiry at read
// time, with injectable failures.
type fakeCacheStore struct {
	entries map[string]*store.CachedResponse

	getErr error
	putErr error

	puts    int
	lastTTL time.Duration
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{entries: make(map[string]*store.CachedResponse)}
}

func (f *fakeCacheStore) Get(ctx context.Context, key string) (*store.CachedResponse, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	entry, ok := f.entries[key]
	if !ok || !entry.ExpiresAt.After(time.Now()) {
		return nil, store.ErrCacheEntryNotFound
	}
	return entry, nil
}

func (f *fakeCacheStore) Put(ctx context.Context, key string, payload json.RawMessage, ttl time.Duration) error {
	f.puts++
	f.lastTTL = ttl
	if f.putErr != nil {
		return f.putErr
	}
	f.entries[key] = &store.CachedResponse{
		Key:       key,
		Payload:   payload,
		ExpiresAt: time.Now().Add(ttl),
	}
	return nil
}

var _ store.ResponseCacheStore = (*fakeCacheStore)(nil)

// fakeGate records increments and returns a fixed decision.
type fakeGate struct {
	decision   quota.Decision
	increments int
}

func (f *fakeGate) IncrementDailyUsage(ctx context.Context, userID uuid.UUID) quota.Decision {
	f.increments++
	return f.decision
}

func allowAll() *fakeGate {
	return &fakeGate{decision: quota.Decision{Allowed: true, Remaining: 9}}
}

func TestGenerateCacheMissCallsUpstreamAndStores(t *testing.T) {
	gen := &fakeGenerator{text: "You sized up after two losses."}
	cacheStore := newFakeCacheStore()
	gate := allowAll()
	gw := New(gen, cacheStore, gate)

	resp, err := gw.Generate(context.Background(), Request{
		UserID:       uuid.New(),
		Prompt:       "review my trades",
		SystemPrompt: "you are a trading coach",
	})
	require.NoError(t, err)

	assert.Equal(t, "You sized up after two losses.", resp.Text)
	assert.False(t, resp.Cached)
	assert.Equal(t, 9, resp.RemainingRequests)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, gate.increments, "exactly one increment per logical call")
	assert.Equal(t, 1, cacheStore.puts)
	assert.Equal(t, DefaultCacheTTL, cacheStore.lastTTL)
}

func TestGenerateCacheHitSkipsQuotaAndUpstream(t *testing.T) {
	gen := &fakeGenerator{text: "fresh"}
	cacheStore := newFakeCacheStore()
	gate := allowAll()
	gw := New(gen, cacheStore, gate)

	// Prime the cache through a first call.
	first, err := gw.Generate(context.Background(), Request{
		UserID: uuid.New(),
		Prompt: "same prompt",
	})
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := gw.Generate(context.Background(), Request{
		UserID: uuid.New(),
		Prompt: "same prompt",
	})
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, "fresh", second.Text)
	assert.Equal(t, 1, gen.calls, "cache hit must not reach the upstream")
	assert.Equal(t, 1, gate.increments, "cache hits are free")
}

func TestGenerateExpiredEntryIsRegenerated(t *testing.T) {
	gen := &fakeGenerator{text: "new answer"}
	cacheStore := newFakeCacheStore()
	gw := New(gen, cacheStore, allowAll())

	key := "explicit-key"
	cacheStore.entries[key] = &store.CachedResponse{
		Key:       key,
		Payload:   json.RawMessage(`{"text":"stale answer"}`),
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	resp, err := gw.Generate(context.Background(), Request{
		UserID:   uuid.New(),
		Prompt:   "p",
		CacheKey: key,
	})
	require.NoError(t, err)

	assert.False(t, resp.Cached)
	assert.Equal(t, "new answer", resp.Text)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateQuotaRejectionNeverCallsUpstream(t *testing.T) {
	gen := &fakeGenerator{text: "should not be seen"}
	cacheStore := newFakeCacheStore()
	gate := &fakeGate{decision: quota.Decision{Allowed: false, Remaining: 0}}
	gw := New(gen, cacheStore, gate)

	_, err := gw.Generate(context.Background(), Request{
		UserID: uuid.New(),
		Prompt: "p",
	})

	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 0, gen.calls)
	assert.Equal(t, 0, cacheStore.puts)
}

func TestGenerateSkipUsageCheckNeverTouchesGate(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	gate := &fakeGate{decision: quota.Decision{Allowed: false}}
	gw := New(gen, newFakeCacheStore(), gate)

	resp, err := gw.Generate(context.Background(), Request{
		UserID:         uuid.New(),
		Prompt:         "p",
		SkipUsageCheck: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, gate.increments, "skip must bypass check and mutation")
	assert.Equal(t, -1, resp.RemainingRequests)
}

func TestGenerateCacheReadErrorIsTreatedAsMiss(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	cacheStore := newFakeCacheStore()
	cacheStore.getErr = errors.New("connection refused")
	gw := New(gen, cacheStore, allowAll())

	resp, err := gw.Generate(context.Background(), Request{UserID: uuid.New(), Prompt: "p"})
	require.NoError(t, err)

	assert.False(t, resp.Cached)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateCacheWriteErrorIsSwallowed(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	cacheStore := newFakeCacheStore()
	cacheStore.putErr = errors.New("disk full")
	gw := New(gen, cacheStore, allowAll())

	resp, err := gw.Generate(context.Background(), Request{UserID: uuid.New(), Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
}

func TestGenerateUpstreamErrorPropagatesWithoutCacheWrite(t *testing.T) {
	gen := &fakeGenerator{err: gemini.ErrUpstream}
	cacheStore := newFakeCacheStore()
	gw := New(gen, cacheStore, allowAll())

	_, err := gw.Generate(context.Background(), Request{UserID: uuid.New(), Prompt: "p"})

	assert.ErrorIs(t, err, gemini.ErrUpstream)
	assert.Equal(t, 0, cacheStore.puts)
}

func TestGenerateEmptyPrompt(t *testing.T) {
	gw := New(&fakeGenerator{}, newFakeCacheStore(), allowAll())

	_, err := gw.Generate(context.Background(), Request{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestGenerateBuildsTranscriptWithSystemPrompt(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	gw := New(gen, newFakeCacheStore(), allowAll())

	_, err := gw.Generate(context.Background(), Request{
		UserID:       uuid.New(),
		Prompt:       "question",
		SystemPrompt: "instructions",
	})
	require.NoError(t, err)

	require.Len(t, gen.lastMsgs, 2)
	assert.Equal(t, gemini.RoleSystem, gen.lastMsgs[0].Role)
	assert.Equal(t, "instructions", gen.lastMsgs[0].Content)
	assert.Equal(t, gemini.RoleUser, gen.lastMsgs[1].Role)
	assert.Equal(t, "question", gen.lastMsgs[1].Content)
}

func TestGenerateCustomTTLAndExplicitKey(t *testing.T) {
	gen := &fakeGenerator{text: "weekly recap"}
	cacheStore := newFakeCacheStore()
	gw := New(gen, cacheStore, allowAll())

	_, err := gw.Generate(context.Background(), Request{
		UserID:   uuid.New(),
		Prompt:   "summarize week 9",
		CacheKey: "weekly:user-1:2026-W09",
		CacheTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cacheStore.lastTTL)
	_, ok := cacheStore.entries["weekly:user-1:2026-W09"]
	assert.True(t, ok, "entry must be stored under the explicit key")
}

// profileStoreForGateway backs a real quota.Gate for the end-to-end
// quota scenario.
type profileStoreForGateway struct {
	profile     *domain.Profile
	updateCalls int
}

func (p *profileStoreForGateway) Create(ctx context.Context, profile *domain.Profile) error {
	return nil
}

func (p *profileStoreForGateway) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	copied := *p.profile
	return &copied, nil
}

func (p *profileStoreForGateway) UpdateUsage(ctx context.Context, id uuid.UUID, dailyRequests int, resetDate string) error {
	p.updateCalls++
	p.profile.DailyAIRequests = dailyRequests
	p.profile.LastAIResetDate = resetDate
	return nil
}

func (p *profileStoreForGateway) WithTx(tx store.DBTX) store.ProfileStore {
	return p
}

func TestGenerateFreeTierAtLimitScenario(t *testing.T) {
	// Prompt "hello", free tier, count already at the ceiling today: the
	// call fails with a quota error, no upstream request happens, and the
	// stored count is unchanged.
	userID := uuid.New()
	profiles := &profileStoreForGateway{profile: &domain.Profile{
		ID:               userID,
		SubscriptionTier: domain.TierFree,
		DailyAIRequests:  10,
		LastAIResetDate:  domain.UTCDateString(time.Now()),
	}}

	gen := &fakeGenerator{text: "nope"}
	gw := New(gen, newFakeCacheStore(), quota.NewGate(profiles, config.QuotaConfig{}))

	_, err := gw.Generate(context.Background(), Request{
		UserID: userID,
		Prompt: "hello",
	})

	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 0, gen.calls)
	assert.Equal(t, 0, profiles.updateCalls)
	assert.Equal(t, 10, profiles.profile.DailyAIRequests)
}
