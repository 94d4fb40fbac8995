// Package insight implements the AI features of the trading journal:
// journal summaries, behavioral pattern scans, voice-trade parsing, daily
// check-in analysis, weekly recaps, and the trade copilot. Every feature is
// a thin prompt-builder over the gateway; advisory features degrade to a
// canned coaching tip when the upstream is unavailable instead of failing
// the user's action.
package insight
