package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traderoom/journal-api/internal/api/shared"
	"github.com/traderoom/journal-api/internal/domain"
	"github.com/traderoom/journal-api/internal/gateway"
	"github.com/traderoom/journal-api/internal/platform/logger"
	"github.com/traderoom/journal-api/internal/quota"
	"github.com/traderoom/journal-api/internal/service/insight"
	"github.com/traderoom/journal-api/internal/store"
)

// fakeInsights returns fixed results per method.
type fakeInsights struct {
	insight *insight.Insight
	trade   *insight.VoiceTrade
	err     error

	lastTier domain.Tier
}

func (f *fakeInsights) SummarizeJournal(ctx context.Context, userID uuid.UUID, entry string) (*insight.Insight, error) {
	return f.insight, f.err
}

func (f *fakeInsights) ScanPatterns(ctx context.Context, userID uuid.UUID, trades []insight.TradeRecord) (*insight.Insight, error) {
	return f.insight, f.err
}

func (f *fakeInsights) AnalyzeCheckIn(ctx context.Context, userID uuid.UUID, checkIn string) (*insight.Insight, error) {
	return f.insight, f.err
}

func (f *fakeInsights) WeeklySummary(ctx context.Context, userID uuid.UUID, trades []insight.TradeRecord, weekStart time.Time) (*insight.Insight, error) {
	return f.insight, f.err
}

func (f *fakeInsights) CopilotReply(ctx context.Context, userID uuid.UUID, tier domain.Tier, question string) (*insight.Insight, error) {
	f.lastTier = tier
	return f.insight, f.err
}

func (f *fakeInsights) ParseVoiceTrade(ctx context.Context, userID uuid.UUID, transcript string) (*insight.VoiceTrade, error) {
	return f.trade, f.err
}

// fakeUsage is a static UsageReporter.
type fakeUsage struct {
	decision quota.Decision
}

func (f *fakeUsage) RemainingToday(ctx context.Context, userID uuid.UUID) quota.Decision {
	return f.decision
}

func (f *fakeUsage) Limit(tier domain.Tier) int {
	switch tier {
	case domain.TierPro:
		return 100
	case domain.TierElite:
		return 500
	default:
		return 10
	}
}

// fakeProfiles serves one profile for every lookup.
type fakeProfiles struct {
	profile *domain.Profile
	err     error
}

func (f *fakeProfiles) Create(ctx context.Context, profile *domain.Profile) error { return nil }

func (f *fakeProfiles) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f *fakeProfiles) UpdateUsage(ctx context.Context, id uuid.UUID, dailyRequests int, resetDate string) error {
	return nil
}

func (f *fakeProfiles) WithTx(tx store.DBTX) store.ProfileStore { return f }

func newTestHandler(insights *fakeInsights, profiles *fakeProfiles) *AIHandler {
	if profiles == nil {
		profiles = &fakeProfiles{profile: &domain.Profile{
			ID:               uuid.New(),
			SubscriptionTier: domain.TierFree,
		}}
	}
	return NewAIHandler(insights, &fakeUsage{decision: quota.Decision{Allowed: true, Remaining: 7}}, profiles, logger.Setup("error"))
}

// doRequest performs an authenticated JSON request against the handler func.
func doRequest(t *testing.T, handlerFunc http.HandlerFunc, method, path string, body any, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if userID != uuid.Nil {
		ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
		req = req.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	handlerFunc(rec, req)
	return rec
}

func TestSummarizeJournalOK(t *testing.T) {
	insights := &fakeInsights{insight: &insight.Insight{Text: "Good discipline.", RemainingRequests: 7}}
	h := newTestHandler(insights, nil)

	rec := doRequest(t, h.SummarizeJournal, http.MethodPost, "/api/ai/journal-summary",
		JournalSummaryRequest{Entry: "Traded the open, stuck to plan."}, uuid.New())

	require.Equal(t, http.StatusOK, rec.Code)
	var resp InsightResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Good discipline.", resp.Text)
	assert.Equal(t, 7, resp.RemainingRequests)
}

func TestSummarizeJournalUnauthenticated(t *testing.T) {
	h := newTestHandler(&fakeInsights{}, nil)

	rec := doRequest(t, h.SummarizeJournal, http.MethodPost, "/api/ai/journal-summary",
		JournalSummaryRequest{Entry: "x"}, uuid.Nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSummarizeJournalRejectsEmptyEntry(t *testing.T) {
	h := newTestHandler(&fakeInsights{}, nil)

	rec := doRequest(t, h.SummarizeJournal, http.MethodPost, "/api/ai/journal-summary",
		map[string]string{"entry": ""}, uuid.New())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummarizeJournalInvalidBody(t *testing.T) {
	h := newTestHandler(&fakeInsights{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ai/journal-summary", bytes.NewBufferString("{not json"))
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, uuid.New())
	rec := httptest.NewRecorder()
	h.SummarizeJournal(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuotaExceededMapsTo429(t *testing.T) {
	insights := &fakeInsights{err: fmt.Errorf("wrapped: %w", gateway.ErrQuotaExceeded)}
	h := newTestHandler(insights, nil)

	rec := doRequest(t, h.SummarizeJournal, http.MethodPost, "/api/ai/journal-summary",
		JournalSummaryRequest{Entry: "entry"}, uuid.New())

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "tomorrow")
}

func TestScanPatternsValidatesTrades(t *testing.T) {
	h := newTestHandler(&fakeInsights{insight: &insight.Insight{Text: "ok"}}, nil)

	// Side must be buy or sell.
	rec := doRequest(t, h.ScanPatterns, http.MethodPost, "/api/ai/pattern-scan",
		PatternScanRequest{Trades: []TradePayload{{Symbol: "ES", Side: "hold", Quantity: 1}}}, uuid.New())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseVoiceTradeOK(t *testing.T) {
	insights := &fakeInsights{trade: &insight.VoiceTrade{Symbol: "AAPL", Side: "buy", Quantity: 100, Price: 187.5}}
	h := newTestHandler(insights, nil)

	rec := doRequest(t, h.ParseVoiceTrade, http.MethodPost, "/api/ai/voice-trade",
		VoiceTradeRequest{Transcript: "bought a hundred apple at 187 fifty"}, uuid.New())

	require.Equal(t, http.StatusOK, rec.Code)
	var resp VoiceTradeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.Equal(t, 100.0, resp.Quantity)
}

func TestParseVoiceTradeUnparsableMapsTo400(t *testing.T) {
	insights := &fakeInsights{err: insight.ErrUnparsableTranscript}
	h := newTestHandler(insights, nil)

	rec := doRequest(t, h.ParseVoiceTrade, http.MethodPost, "/api/ai/voice-trade",
		VoiceTradeRequest{Transcript: "mumble"}, uuid.New())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCopilotUsesProfileTier(t *testing.T) {
	insights := &fakeInsights{insight: &insight.Insight{Text: "ok"}}
	profiles := &fakeProfiles{profile: &domain.Profile{
		ID:               uuid.New(),
		SubscriptionTier: domain.TierElite,
	}}
	h := newTestHandler(insights, profiles)

	rec := doRequest(t, h.Copilot, http.MethodPost, "/api/ai/copilot",
		CopilotRequest{Question: "thoughts on my stop?"}, uuid.New())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TierElite, insights.lastTier)
}

func TestCopilotAssumesFreeTierWhenProfileLookupFails(t *testing.T) {
	insights := &fakeInsights{insight: &insight.Insight{Text: "ok"}}
	profiles := &fakeProfiles{err: store.ErrProfileNotFound}
	h := newTestHandler(insights, profiles)

	rec := doRequest(t, h.Copilot, http.MethodPost, "/api/ai/copilot",
		CopilotRequest{Question: "q"}, uuid.New())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TierFree, insights.lastTier)
}

func TestUsageEndpoint(t *testing.T) {
	profiles := &fakeProfiles{profile: &domain.Profile{
		ID:               uuid.New(),
		SubscriptionTier: domain.TierPro,
	}}
	h := newTestHandler(&fakeInsights{}, profiles)

	rec := doRequest(t, h.Usage, http.MethodGet, "/api/ai/usage", nil, uuid.New())

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UsageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Remaining)
	assert.Equal(t, 100, resp.Limit)
	assert.Equal(t, "pro", resp.Tier)
}

func TestDegradedInsightStillReturns200(t *testing.T) {
	insights := &fakeInsights{insight: &insight.Insight{
		Text:              "Review your plan.",
		Degraded:          true,
		RemainingRequests: -1,
	}}
	h := newTestHandler(insights, nil)

	rec := doRequest(t, h.AnalyzeCheckIn, http.MethodPost, "/api/ai/checkin",
		CheckInRequest{CheckIn: "feeling rushed"}, uuid.New())

	require.Equal(t, http.StatusOK, rec.Code)
	var resp InsightResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Degraded)
}
