package gateway

import "errors"

// Errors surfaced by the gateway.
var (
	// ErrQuotaExceeded is returned when the user's daily request budget is
	// spent. It is an expected, user-facing condition; callers translate it
	// into a "try again tomorrow" or upgrade message, never retry it.
	ErrQuotaExceeded = errors.New("daily AI request quota exceeded")

	// ErrEmptyPrompt is returned when a request carries no prompt text.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)
