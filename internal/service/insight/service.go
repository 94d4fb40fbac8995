package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/traderoom/journal-api/internal/cache"
	"github.com/traderoom/journal-api/internal/domain"
	"github.com/traderoom/journal-api/internal/gateway"
	"github.com/traderoom/journal-api/internal/platform/logger"
)

// AIGateway is the inference entry point the service depends on.
// Implemented by *gateway.Gateway; faked in tests.
type AIGateway interface {
	Generate(ctx context.Context, req gateway.Request) (*gateway.Response, error)
}

// Insight is the outcome of an advisory AI feature.
type Insight struct {
	Text string `json:"text"`

	// Cached reports whether the text came from the response cache.
	Cached bool `json:"cached"`

	// Degraded reports that the upstream was unavailable and Text is a
	// canned coaching tip rather than a generated analysis.
	Degraded bool `json:"degraded"`

	// RemainingRequests is the user's AI budget left today, -1 if unknown.
	RemainingRequests int `json:"remaining_requests"`
}

// TradeRecord is the journaled trade shape the prompts are built from.
type TradeRecord struct {
	Symbol   string    `json:"symbol"`
	Side     string    `json:"side"`
	Quantity float64   `json:"quantity"`
	Entry    float64   `json:"entry"`
	Exit     float64   `json:"exit"`
	PnL      float64   `json:"pnl"`
	OpenedAt time.Time `json:"opened_at"`
	Notes    string    `json:"notes,omitempty"`
}

// VoiceTrade is the structured result of parsing a dictated trade.
type VoiceTrade struct {
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Notes    string  `json:"notes,omitempty"`
}

// ErrUnparsableTranscript is returned when the model's voice-trade output
// cannot be decoded into a trade.
var ErrUnparsableTranscript = errors.New("could not parse a trade from the transcript")

// Service implements the AI features over the gateway.
type Service struct {
	gateway AIGateway
}

// NewService creates the insight service.
func NewService(gw AIGateway) *Service {
	return &Service{gateway: gw}
}

const coachSystemPrompt = "You are a trading performance coach. You analyze a retail trader's " +
	"journal with an eye for discipline, risk management, and emotional patterns. Be direct, " +
	"specific, and brief. Never give financial advice or predict markets."

// SummarizeJournal produces a short coaching summary of one journal entry.
// Degrades to a fallback tip when the upstream is unavailable.
func (s *Service) SummarizeJournal(ctx context.Context, userID uuid.UUID, entry string) (*Insight, error) {
	if strings.TrimSpace(entry) == "" {
		return nil, domain.ErrEmptyContent
	}

	prompt := fmt.Sprintf(
		"Summarize this trading journal entry in at most three sentences, then name the single "+
			"most important behavior to work on.\n\nJournal entry:\n%s", entry)

	return s.advisory(ctx, gateway.Request{
		UserID:       userID,
		Prompt:       prompt,
		SystemPrompt: coachSystemPrompt,
	}, "your journal entry")
}

// ScanPatterns looks for recurring behavioral patterns across recent trades.
func (s *Service) ScanPatterns(ctx context.Context, userID uuid.UUID, trades []TradeRecord) (*Insight, error) {
	if len(trades) == 0 {
		return nil, domain.ErrEmptyContent
	}

	prompt := fmt.Sprintf(
		"Here are my recent trades, one per line:\n%s\n\nIdentify up to three recurring "+
			"behavioral patterns (good or bad) and, for each, one concrete suggestion.",
		formatTrades(trades))

	return s.advisory(ctx, gateway.Request{
		UserID:       userID,
		Prompt:       prompt,
		SystemPrompt: coachSystemPrompt,
	}, "your recent trades")
}

// AnalyzeCheckIn reflects a daily mindset check-in back to the trader.
func (s *Service) AnalyzeCheckIn(ctx context.Context, userID uuid.UUID, checkIn string) (*Insight, error) {
	if strings.TrimSpace(checkIn) == "" {
		return nil, domain.ErrEmptyContent
	}

	prompt := fmt.Sprintf(
		"This is my pre-market mindset check-in for today:\n%s\n\nIn two or three sentences, "+
			"tell me whether my state of mind is a risk to my trading today and what to watch for.",
		checkIn)

	return s.advisory(ctx, gateway.Request{
		UserID:       userID,
		Prompt:       prompt,
		SystemPrompt: coachSystemPrompt,
	}, "your check-in")
}

// WeeklySummary produces the weekly performance recap. The response is
// cached for 24 hours under a business fingerprint of the user and ISO
// week, so repeated requests within the week share one generation.
func (s *Service) WeeklySummary(ctx context.Context, userID uuid.UUID, trades []TradeRecord, weekStart time.Time) (*Insight, error) {
	if len(trades) == 0 {
		return nil, domain.ErrEmptyContent
	}

	year, week := weekStart.UTC().ISOWeek()
	prompt := fmt.Sprintf(
		"Here are all my trades for the week starting %s, one per line:\n%s\n\nWrite a weekly "+
			"recap: overall result, what went well, what did not, and one focus for next week.",
		weekStart.UTC().Format("2006-01-02"), formatTrades(trades))

	return s.advisory(ctx, gateway.Request{
		UserID:       userID,
		Prompt:       prompt,
		SystemPrompt: coachSystemPrompt,
		CacheKey:     fmt.Sprintf("weekly:%s:%d-W%02d", userID, year, week),
		CacheTTL:     24 * time.Hour,
	}, "your weekly summary")
}

// CopilotReply answers one turn of the trade-copilot chat. Elite-tier users
// bypass the daily quota.
func (s *Service) CopilotReply(ctx context.Context, userID uuid.UUID, tier domain.Tier, question string) (*Insight, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyContent
	}

	return s.advisory(ctx, gateway.Request{
		UserID:         userID,
		Prompt:         question,
		SystemPrompt:   coachSystemPrompt,
		SkipUsageCheck: tier == domain.TierElite,
	}, "your question")
}

// ParseVoiceTrade turns a dictated trade into structured fields. Responses
// are cached by a fingerprint of the transcript alone, so the same dictation
// parses identically regardless of which feature asked. This feature cannot
// degrade to a tip: a parse either succeeds or errors.
func (s *Service) ParseVoiceTrade(ctx context.Context, userID uuid.UUID, transcript string) (*VoiceTrade, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, domain.ErrEmptyContent
	}

	prompt := fmt.Sprintf(
		"Extract the trade from this dictation and answer with ONLY a JSON object with keys "+
			`"symbol" (string), "side" ("buy" or "sell"), "quantity" (number), "price" (number), `+
			`and "notes" (string, optional). No prose, no code fences.`+
			"\n\nDictation: %s", transcript)

	resp, err := s.gateway.Generate(ctx, gateway.Request{
		UserID:       userID,
		Prompt:       prompt,
		SystemPrompt: "You convert spoken trade descriptions into structured JSON. Output JSON only.",
		CacheKey:     "voice:" + cache.DeriveKey(transcript, ""),
		CacheTTL:     24 * time.Hour,
	})
	if err != nil {
		return nil, err
	}

	trade, parseErr := decodeVoiceTrade(resp.Text)
	if parseErr != nil {
		logger.FromContext(ctx).Warn("voice trade output did not parse",
			"user_id", userID,
			"error", parseErr)
		return nil, fmt.Errorf("%w: %v", ErrUnparsableTranscript, parseErr)
	}

	return trade, nil
}

// advisory runs one advisory generation, degrading to a fallback tip when
// the upstream is unavailable. Quota and validation errors still propagate:
// they are user-facing conditions, not outages.
func (s *Service) advisory(ctx context.Context, req gateway.Request, fallbackContext string) (*Insight, error) {
	resp, err := s.gateway.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, gateway.ErrQuotaExceeded) || errors.Is(err, gateway.ErrEmptyPrompt) {
			return nil, err
		}
		logger.FromContext(ctx).Warn("AI unavailable, serving fallback tip",
			"user_id", req.UserID,
			"error", err)
		return &Insight{
			Text:              gateway.FallbackTip(fallbackContext),
			Degraded:          true,
			RemainingRequests: -1,
		}, nil
	}

	return &Insight{
		Text:              resp.Text,
		Cached:            resp.Cached,
		RemainingRequests: resp.RemainingRequests,
	}, nil
}

// formatTrades renders trades one per line for prompt building.
func formatTrades(trades []TradeRecord) string {
	lines := make([]string, 0, len(trades))
	for _, tr := range trades {
		line := fmt.Sprintf("%s %s %s qty=%g entry=%g exit=%g pnl=%+.2f",
			tr.OpenedAt.UTC().Format("2006-01-02"),
			strings.ToUpper(tr.Side), tr.Symbol,
			tr.Quantity, tr.Entry, tr.Exit, tr.PnL)
		if tr.Notes != "" {
			line += " notes=" + tr.Notes
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// decodeVoiceTrade parses the model output, tolerating the code fences
// models add despite instructions.
func decodeVoiceTrade(text string) (*VoiceTrade, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var trade VoiceTrade
	if err := json.Unmarshal([]byte(cleaned), &trade); err != nil {
		return nil, err
	}

	if trade.Symbol == "" {
		return nil, errors.New("missing symbol")
	}
	side := strings.ToLower(trade.Side)
	if side != "buy" && side != "sell" {
		return nil, fmt.Errorf("unrecognized side %q", trade.Side)
	}
	trade.Side = side
	if trade.Quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}

	return &trade, nil
}
