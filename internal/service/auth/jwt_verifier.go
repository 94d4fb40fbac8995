// Package auth verifies the access tokens minted by the external auth
// provider. This service never issues tokens; it shares the provider's
// HMAC signing secret and checks signature, expiry, and subject.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/traderoom/journal-api/internal/config"
	"github.com/traderoom/journal-api/internal/platform/logger"
)

// Claims holds the verified identity extracted from an access token.
type Claims struct {
	// UserID is the authenticated user, taken from the sub claim.
	UserID uuid.UUID

	ExpiresAt time.Time
}

// TokenVerifier validates access tokens and extracts their claims.
type TokenVerifier interface {
	// VerifyToken validates the token string and returns its claims.
	// Returns ErrExpiredToken for expired tokens and ErrInvalidToken for
	// any other validation failure.
	VerifyToken(ctx context.Context, tokenString string) (*Claims, error)
}

// hmacTokenVerifier verifies HS256-signed tokens.
type hmacTokenVerifier struct {
	signingKey []byte
	clockSkew  time.Duration
	timeFunc   func() time.Time // Injectable for testing
}

// Ensure hmacTokenVerifier implements TokenVerifier
var _ TokenVerifier = (*hmacTokenVerifier)(nil)

// NewTokenVerifier creates a TokenVerifier for tokens signed with the
// configured shared secret.
func NewTokenVerifier(cfg config.AuthConfig) (TokenVerifier, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &hmacTokenVerifier{
		signingKey: []byte(cfg.JWTSecret),
		clockSkew:  2 * time.Minute,
		timeFunc:   time.Now,
	}, nil
}

// VerifyToken implements TokenVerifier.VerifyToken
func (v *hmacTokenVerifier) VerifyToken(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	now := v.timeFunc()
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("token validation failed: token expired", "error", err)
			return nil, ErrExpiredToken
		}
		log.Debug("token validation failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		log.Debug("token has non-UUID subject", "subject", claims.Subject)
		return nil, fmt.Errorf("%w: subject is not a user ID", ErrInvalidToken)
	}

	verified := &Claims{UserID: userID}
	if claims.ExpiresAt != nil {
		verified.ExpiresAt = claims.ExpiresAt.Time
	}

	return verified, nil
}
