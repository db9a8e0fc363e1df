package service

import (
	"time"

	"storefront/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access tokens from refresh tokens inside the claims.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Token verification failures.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims defines the custom claims carried by both token classes.
// Email is only set on access tokens.
type Claims struct {
	Email string    `json:"email,omitempty"`
	Type  TokenType `json:"type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, errors.Wrap(ErrInvalidToken, "subject is not a user id")
	}

	return id, nil
}

// TokenService signs and verifies the two bearer token classes with one secret.
type TokenService interface {
	// GenerateAccessToken signs {sub, email} with the short access TTL.
	GenerateAccessToken(userID uuid.UUID, email string) (string, error)

	// GenerateRefreshToken signs {sub} with the long refresh TTL.
	GenerateRefreshToken(userID uuid.UUID) (string, error)

	// ValidateAccessToken fails with ErrExpiredToken past expiry and
	// ErrInvalidToken for anything else, including a refresh token.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// ValidateRefreshToken mirrors ValidateAccessToken for refresh tokens.
	ValidateRefreshToken(tokenString string) (*Claims, error)

	// HashToken returns the storage key for a raw refresh token.
	HashToken(tokenString string) string

	// GetAccessTokenDuration returns the configured duration for access tokens.
	GetAccessTokenDuration() time.Duration

	// GetRefreshTokenDuration returns the configured duration for refresh tokens.
	GetRefreshTokenDuration() time.Duration
}
