package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/traderoom/journal-api/internal/config"
	"github.com/traderoom/journal-api/internal/platform/logger"
)

// RequestPacer gates outbound requests. Every attempt, including retries,
// acquires a slot before sending.
type RequestPacer interface {
	Wait(ctx context.Context) error
}

// Client calls the generateContent endpoint of Google's generative-language
// API with pacing, retry, and backoff. It is safe for concurrent use.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	pacer      RequestPacer

	baseURL string
	apiKey  string
	model   string

	maxRetries       int
	retryBackoffBase time.Duration
	rateLimitBase    time.Duration
	generationConfig GenerationConfig

	// sleep is indirected so tests can record backoff waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Client from the LLM configuration. Returns
// ErrMissingAPIKey when no API key is configured; the key absence is a
// configuration error, surfaced immediately and never retried.
func NewClient(log *slog.Logger, cfg config.LLMConfig, pacer RequestPacer) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gemini base URL cannot be empty")
	}
	if pacer == nil {
		return nil, fmt.Errorf("request pacer cannot be nil")
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		log.Warn("invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	retryBase := time.Duration(cfg.RetryBackoffBaseMs) * time.Millisecond
	if retryBase <= 0 {
		retryBase = 5 * time.Second
	}
	rateLimitBase := time.Duration(cfg.RateLimitBackoffBaseMs) * time.Millisecond
	if rateLimitBase <= 0 {
		rateLimitBase = 10 * time.Second
	}

	requestTimeout := time.Duration(cfg.RequestTimeoutMs) * time.Millisecond
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return &Client{
		logger:           log,
		httpClient:       &http.Client{Timeout: requestTimeout},
		pacer:            pacer,
		baseURL:          cfg.BaseURL,
		apiKey:           cfg.GeminiAPIKey,
		model:            cfg.ModelName,
		maxRetries:       maxRetries,
		retryBackoffBase: retryBase,
		rateLimitBase:    rateLimitBase,
		generationConfig: DefaultGenerationConfig(),
		sleep:            sleepContext,
	}, nil
}

// DefaultModel returns the model used when a caller does not name one.
func (c *Client) DefaultModel() string {
	return c.model
}

// Generate sends the transcript to the named model (or the default model if
// empty) and returns the generated text. It makes up to maxRetries attempts,
// pacing each one, and backs off exponentially between failures: 429s wait
// 2^attempt times the rate-limit base, other transient failures 2^attempt
// times the retry base. Repeated 429s exhaust the attempt budget at the same
// rate as any other failure.
func (c *Client) Generate(ctx context.Context, model string, messages []Message) (string, error) {
	log := logger.FromContext(ctx)

	if len(messages) == 0 {
		return "", ErrEmptyTranscript
	}
	if model == "" {
		model = c.model
	}

	body, err := json.Marshal(wireRequest{
		Contents:         adaptMessages(messages),
		GenerationConfig: c.generationConfig,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.pacer.Wait(ctx); err != nil {
			return "", fmt.Errorf("cancelled while pacing request: %w", err)
		}

		log.Debug("calling gemini",
			"model", model,
			"attempt", attempt+1,
			"max_attempts", c.maxRetries)

		text, attemptErr := c.attempt(ctx, url, body)
		if attemptErr == nil {
			return text, nil
		}
		lastErr = attemptErr

		if attempt == c.maxRetries-1 {
			break
		}

		backoff := c.backoffFor(attemptErr, attempt)
		log.Warn("gemini attempt failed, backing off",
			"attempt", attempt+1,
			"backoff", backoff.String(),
			"error", attemptErr)

		if err := c.sleep(ctx, backoff); err != nil {
			return "", fmt.Errorf("cancelled during backoff: %w", err)
		}
	}

	log.Error("gemini call failed after all attempts",
		"model", model,
		"attempts", c.maxRetries,
		"error", lastErr)
	return "", fmt.Errorf("exhausted %d attempts: %w", c.maxRetries, lastErr)
}

// attempt performs one paced HTTP call and classifies the outcome.
func (c *Client) attempt(ctx context.Context, url string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, snippet)
	}

	var parsed wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: malformed response body: %v", ErrUpstream, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s (%s)", ErrUpstream, parsed.Error.Message, parsed.Error.Status)
	}

	text := parsed.text()
	if text == "" {
		return "", fmt.Errorf("%w: response contains no text", ErrUpstream)
	}

	return text, nil
}

// backoffFor returns 2^attempt times the schedule base for the failure
// class: 10s/20s/40s for rate limiting, 5s/10s/20s for everything else
// (at the default bases).
func (c *Client) backoffFor(err error, attempt int) time.Duration {
	base := c.retryBackoffBase
	if isRateLimited(err) {
		base = c.rateLimitBase
	}
	return base << uint(attempt)
}

func isRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// sleepContext sleeps for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
