package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/traderoom/journal-api/internal/api/shared"
	"github.com/traderoom/journal-api/internal/domain"
	"github.com/traderoom/journal-api/internal/platform/logger"
	"github.com/traderoom/journal-api/internal/quota"
	"github.com/traderoom/journal-api/internal/service/insight"
	"github.com/traderoom/journal-api/internal/store"
)

// InsightService is the subset of the insight service the handler uses.
type InsightService interface {
	SummarizeJournal(ctx context.Context, userID uuid.UUID, entry string) (*insight.Insight, error)
	ScanPatterns(ctx context.Context, userID uuid.UUID, trades []insight.TradeRecord) (*insight.Insight, error)
	AnalyzeCheckIn(ctx context.Context, userID uuid.UUID, checkIn string) (*insight.Insight, error)
	WeeklySummary(ctx context.Context, userID uuid.UUID, trades []insight.TradeRecord, weekStart time.Time) (*insight.Insight, error)
	CopilotReply(ctx context.Context, userID uuid.UUID, tier domain.Tier, question string) (*insight.Insight, error)
	ParseVoiceTrade(ctx context.Context, userID uuid.UUID, transcript string) (*insight.VoiceTrade, error)
}

// UsageReporter reports the user's remaining daily budget.
type UsageReporter interface {
	RemainingToday(ctx context.Context, userID uuid.UUID) quota.Decision
	Limit(tier domain.Tier) int
}

// AIHandler serves the AI endpoints.
type AIHandler struct {
	insights InsightService
	usage    UsageReporter
	profiles store.ProfileStore
	logger   *slog.Logger
}

// NewAIHandler creates an AIHandler with the given dependencies.
func NewAIHandler(insights InsightService, usage UsageReporter, profiles store.ProfileStore, logger *slog.Logger) *AIHandler {
	return &AIHandler{
		insights: insights,
		usage:    usage,
		profiles: profiles,
		logger:   logger,
	}
}

// authedUser extracts the authenticated user set by the auth middleware.
func (h *AIHandler) authedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

// decode reads and validates the request body into v.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Request validation failed")
		return false
	}
	return true
}

// SummarizeJournal handles POST /api/ai/journal-summary.
func (h *AIHandler) SummarizeJournal(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	var req JournalSummaryRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.insights.SummarizeJournal(r.Context(), userID, req.Entry)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toInsightResponse(result))
}

// ScanPatterns handles POST /api/ai/pattern-scan.
func (h *AIHandler) ScanPatterns(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	var req PatternScanRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.insights.ScanPatterns(r.Context(), userID, toRecords(req.Trades))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toInsightResponse(result))
}

// ParseVoiceTrade handles POST /api/ai/voice-trade.
func (h *AIHandler) ParseVoiceTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	var req VoiceTradeRequest
	if !decode(w, r, &req) {
		return
	}

	trade, err := h.insights.ParseVoiceTrade(r.Context(), userID, req.Transcript)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, VoiceTradeResponse{
		Symbol:   trade.Symbol,
		Side:     trade.Side,
		Quantity: trade.Quantity,
		Price:    trade.Price,
		Notes:    trade.Notes,
	})
}

// AnalyzeCheckIn handles POST /api/ai/checkin.
func (h *AIHandler) AnalyzeCheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	var req CheckInRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.insights.AnalyzeCheckIn(r.Context(), userID, req.CheckIn)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toInsightResponse(result))
}

// WeeklySummary handles POST /api/ai/weekly-summary.
func (h *AIHandler) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	var req WeeklySummaryRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.insights.WeeklySummary(r.Context(), userID, toRecords(req.Trades), req.WeekStart)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toInsightResponse(result))
}

// Copilot handles POST /api/ai/copilot. The user's tier decides whether the
// quota gate applies.
func (h *AIHandler) Copilot(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	var req CopilotRequest
	if !decode(w, r, &req) {
		return
	}

	tier := domain.TierFree
	if profile, err := h.profiles.GetByID(r.Context(), userID); err == nil {
		tier = profile.SubscriptionTier
	} else {
		logger.FromContext(r.Context()).Warn("profile lookup failed, assuming free tier",
			"user_id", userID,
			"error", err)
	}

	result, err := h.insights.CopilotReply(r.Context(), userID, tier, req.Question)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toInsightResponse(result))
}

// Usage handles GET /api/ai/usage.
func (h *AIHandler) Usage(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	tier := domain.TierFree
	if profile, err := h.profiles.GetByID(r.Context(), userID); err == nil {
		tier = profile.SubscriptionTier
	}

	decision := h.usage.RemainingToday(r.Context(), userID)
	shared.RespondWithJSON(w, r, http.StatusOK, UsageResponse{
		Remaining: decision.Remaining,
		Limit:     h.usage.Limit(tier),
		Tier:      string(tier),
	})
}
