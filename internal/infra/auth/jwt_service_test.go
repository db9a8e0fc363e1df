package auth

import (
	"strings"
	"testing"
	"time"

	"storefront/config"
	"storefront/internal/domain/service"
	"storefront/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_very_long_for_testing"

func newTestJWTService(t *testing.T) *jwtService {
	t.Helper()

	svc, err := NewJWTService(&config.Config{
		Auth: &config.AuthConfig{
			SecretKey:       testSecret,
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 30 * 24 * time.Hour,
		},
	})
	require.NoError(t, err)

	return svc.(*jwtService)
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	_, err := NewJWTService(&config.Config{Auth: &config.AuthConfig{}})
	assert.Error(t, err)

	_, err = NewJWTService(&config.Config{})
	assert.Error(t, err)
}

func TestNewJWTService_DefaultsTTL(t *testing.T) {
	svc, err := NewJWTService(&config.Config{Auth: &config.AuthConfig{SecretKey: testSecret}})
	require.NoError(t, err)

	assert.Equal(t, config.DefaultAccessTokenTTL, svc.GetAccessTokenDuration())
	assert.Equal(t, config.DefaultRefreshTokenTTL, svc.GetRefreshTokenDuration())
}

func TestJWTService_GenerateAndValidateTokens(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	accessToken, err := svc.GenerateAccessToken(userID, "ann@example.com")
	require.NoError(t, err)
	refreshToken, err := svc.GenerateRefreshToken(userID)
	require.NoError(t, err)

	accessClaims, err := svc.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	gotID, err := accessClaims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "ann@example.com", accessClaims.Email)
	assert.Equal(t, service.TokenTypeAccess, accessClaims.Type)

	refreshClaims, err := svc.ValidateRefreshToken(refreshToken)
	require.NoError(t, err)
	gotID, err = refreshClaims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Empty(t, refreshClaims.Email)
	assert.Equal(t, service.TokenTypeRefresh, refreshClaims.Type)
}

func TestJWTService_TokensAreUniqueWithinTheSameSecond(t *testing.T) {
	svc := newTestJWTService(t)
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	userID := uuid.New()
	first, err := svc.GenerateRefreshToken(userID)
	require.NoError(t, err)
	second, err := svc.GenerateRefreshToken(userID)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, svc.HashToken(first), svc.HashToken(second))
}

func TestJWTService_RejectsWrongClass(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	accessToken, err := svc.GenerateAccessToken(userID, "ann@example.com")
	require.NoError(t, err)
	refreshToken, err := svc.GenerateRefreshToken(userID)
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(accessToken)
	assert.True(t, errors.Is(err, service.ErrInvalidToken))

	_, err = svc.ValidateAccessToken(refreshToken)
	assert.True(t, errors.Is(err, service.ErrInvalidToken))
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestJWTService(t)
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateAccessToken(uuid.New(), "ann@example.com")
	require.NoError(t, err)

	svc.now = time.Now
	claims, err := svc.ValidateAccessToken(token)
	assert.Nil(t, claims)
	assert.True(t, errors.Is(err, service.ErrExpiredToken))
	assert.False(t, errors.Is(err, service.ErrInvalidToken))
}

func TestJWTService_InvalidTokens(t *testing.T) {
	svc := newTestJWTService(t)
	userID := uuid.New()

	good, err := svc.GenerateAccessToken(userID, "ann@example.com")
	require.NoError(t, err)

	other, err := NewJWTService(&config.Config{Auth: &config.AuthConfig{SecretKey: "another-secret"}})
	require.NoError(t, err)
	foreign, err := other.GenerateAccessToken(userID, "ann@example.com")
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, service.Claims{
		Type: service.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, service.Claims{
		Type:             service.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, service.Claims{
		Type: service.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":     "clearly-not-a-jwt-token-format",
		"empty":       "",
		"foreign key": foreign,
		"tampered":    tampered,
		"alg none":    noneToken,
		"no expiry":   noExpiry,
		"bad subject": badSubject,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			claims, err := svc.ValidateAccessToken(token)
			assert.Nil(t, claims)
			assert.True(t, errors.Is(err, service.ErrInvalidToken), "got %v", err)
		})
	}
}

func TestJWTService_HashToken(t *testing.T) {
	svc := newTestJWTService(t)

	hash := svc.HashToken("some-token")
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, svc.HashToken("some-token"))
	assert.NotEqual(t, hash, svc.HashToken("other-token"))
}
