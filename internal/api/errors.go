package api

import (
	"errors"
	"net/http"

	"github.com/traderoom/journal-api/internal/api/shared"
	"github.com/traderoom/journal-api/internal/domain"
	"github.com/traderoom/journal-api/internal/gateway"
	"github.com/traderoom/journal-api/internal/service/auth"
	"github.com/traderoom/journal-api/internal/service/insight"
	"github.com/traderoom/journal-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Quota exhaustion is an expected, user-facing condition.
	case errors.Is(err, gateway.ErrQuotaExceeded):
		return http.StatusTooManyRequests

	// Not found errors
	case errors.Is(err, store.ErrProfileNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, gateway.ErrEmptyPrompt),
		errors.Is(err, insight.ErrUnparsableTranscript),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal
// details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, gateway.ErrQuotaExceeded):
		return "You have used all of today's AI requests. Try again tomorrow or upgrade your plan."

	case errors.Is(err, store.ErrProfileNotFound):
		return "Profile not found"

	case errors.Is(err, insight.ErrUnparsableTranscript):
		return "Could not understand a trade in that dictation. Try rephrasing it."

	case errors.Is(err, domain.ErrEmptyContent), errors.Is(err, gateway.ErrEmptyPrompt):
		return "Request content cannot be empty"

	default:
		return "An unexpected error occurred"
	}
}

// respondWithServiceError writes the sanitized response for a service
// error.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
}
