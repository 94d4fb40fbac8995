package gemini

import "errors"

// Errors returned by the Gemini client.
var (
	// ErrMissingAPIKey is returned at construction when no API key is
	// configured. This is fatal and never retried.
	ErrMissingAPIKey = errors.New("gemini API key is not configured")

	// ErrRateLimited wraps an upstream 429. It is recovered internally via
	// backoff and only surfaces once the retry budget is exhausted.
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrUpstream wraps any other upstream failure: non-2xx status, an
	// error field in the body, or a response with no extractable text.
	// Recovered internally via backoff; surfaced after exhaustion.
	ErrUpstream = errors.New("upstream generation failed")

	// ErrEmptyTranscript is returned when a call is attempted with no
	// messages to send.
	ErrEmptyTranscript = errors.New("conversation transcript is empty")
)
