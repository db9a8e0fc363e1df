package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"storefront/config"
	"storefront/internal/domain/service"
	"storefront/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret     []byte        // Secret key for signing both token classes.
	accessTTL  time.Duration // Time-to-live for access tokens.
	refreshTTL time.Duration // Time-to-live for refresh tokens.
	now        func() time.Time
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg == nil || cfg.Auth == nil || cfg.Auth.SecretKey == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	accessTTL := cfg.Auth.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = config.DefaultAccessTokenTTL
	}
	refreshTTL := cfg.Auth.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = config.DefaultRefreshTokenTTL
	}

	return &jwtService{
		secret:     []byte(cfg.Auth.SecretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// GenerateAccessToken creates a short-lived token carrying the user id and email.
func (s *jwtService) GenerateAccessToken(userID uuid.UUID, email string) (string, error) {
	return s.generateToken(userID, email, service.TokenTypeAccess, s.accessTTL)
}

// GenerateRefreshToken creates a long-lived token carrying only the user id.
func (s *jwtService) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	return s.generateToken(userID, "", service.TokenTypeRefresh, s.refreshTTL)
}

func (s *jwtService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	return s.validateToken(tokenString, service.TokenTypeAccess)
}

func (s *jwtService) ValidateRefreshToken(tokenString string) (*service.Claims, error) {
	return s.validateToken(tokenString, service.TokenTypeRefresh)
}

// HashToken returns the hex SHA-256 of a token. Raw refresh tokens are never stored.
func (s *jwtService) HashToken(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))

	return hex.EncodeToString(sum[:])
}

// GetAccessTokenDuration returns the configured duration for access tokens.
func (s *jwtService) GetAccessTokenDuration() time.Duration {
	return s.accessTTL
}

// GetRefreshTokenDuration returns the configured duration for refresh tokens.
func (s *jwtService) GetRefreshTokenDuration() time.Duration {
	return s.refreshTTL
}

// generateToken is a private helper to create a JWT with specific claims.
// The jti keeps two tokens for the same user distinct within one second.
func (s *jwtService) generateToken(userID uuid.UUID, email string, tokenType service.TokenType, ttl time.Duration) (string, error) {
	now := s.now()
	claims := service.Claims{
		Email: email,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}

	return signed, nil
}

func (s *jwtService) validateToken(tokenString string, expected service.TokenType) (*service.Claims, error) {
	claims := &service.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Wrap(service.ErrExpiredToken, err.Error())
		}

		return nil, errors.Wrap(service.ErrInvalidToken, err.Error())
	}
	if !token.Valid {
		return nil, service.ErrInvalidToken
	}
	if claims.Type != expected {
		return nil, errors.Wrapf(service.ErrInvalidToken, "expected %s token, got %q", expected, claims.Type)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}

	return claims, nil
}
