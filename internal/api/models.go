package api

import (
	"time"

	"github.com/traderoom/journal-api/internal/service/insight"
)

// Request models

// JournalSummaryRequest asks for a coaching summary of one journal entry.
type JournalSummaryRequest struct {
	Entry string `json:"entry" validate:"required,min=1,max=20000"`
}

// PatternScanRequest asks for behavioral patterns across recent trades.
type PatternScanRequest struct {
	Trades []TradePayload `json:"trades" validate:"required,min=1,max=200,dive"`
}

// VoiceTradeRequest asks for a dictated trade to be parsed.
type VoiceTradeRequest struct {
	Transcript string `json:"transcript" validate:"required,min=1,max=2000"`
}

// CheckInRequest asks for an analysis of a daily mindset check-in.
type CheckInRequest struct {
	CheckIn string `json:"check_in" validate:"required,min=1,max=5000"`
}

// WeeklySummaryRequest asks for the weekly performance recap.
type WeeklySummaryRequest struct {
	WeekStart time.Time      `json:"week_start" validate:"required"`
	Trades    []TradePayload `json:"trades"     validate:"required,min=1,max=500,dive"`
}

// CopilotRequest asks the trade copilot one question.
type CopilotRequest struct {
	Question string `json:"question" validate:"required,min=1,max=5000"`
}

// TradePayload is the wire form of a journaled trade.
type TradePayload struct {
	Symbol   string    `json:"symbol"   validate:"required,max=20"`
	Side     string    `json:"side"     validate:"required,oneof=buy sell"`
	Quantity float64   `json:"quantity" validate:"required,gt=0"`
	Entry    float64   `json:"entry"`
	Exit     float64   `json:"exit"`
	PnL      float64   `json:"pnl"`
	OpenedAt time.Time `json:"opened_at"`
	Notes    string    `json:"notes,omitempty" validate:"max=2000"`
}

// toRecord converts the wire form into the service's trade shape.
func (p TradePayload) toRecord() insight.TradeRecord {
	return insight.TradeRecord{
		Symbol:   p.Symbol,
		Side:     p.Side,
		Quantity: p.Quantity,
		Entry:    p.Entry,
		Exit:     p.Exit,
		PnL:      p.PnL,
		OpenedAt: p.OpenedAt,
		Notes:    p.Notes,
	}
}

func toRecords(payloads []TradePayload) []insight.TradeRecord {
	records := make([]insight.TradeRecord, 0, len(payloads))
	for _, p := range payloads {
		records = append(records, p.toRecord())
	}
	return records
}

// Response models

// InsightResponse is the standard response for advisory AI endpoints.
type InsightResponse struct {
	Text              string `json:"text"`
	Cached            bool   `json:"cached"`
	Degraded          bool   `json:"degraded"`
	RemainingRequests int    `json:"remaining_requests"`
}

func toInsightResponse(in *insight.Insight) InsightResponse {
	return InsightResponse{
		Text:              in.Text,
		Cached:            in.Cached,
		Degraded:          in.Degraded,
		RemainingRequests: in.RemainingRequests,
	}
}

// VoiceTradeResponse is the parsed trade returned by the voice endpoint.
type VoiceTradeResponse struct {
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Notes    string  `json:"notes,omitempty"`
}

// UsageResponse reports the user's AI budget for today.
type UsageResponse struct {
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
	Tier      string `json:"tier"`
}
