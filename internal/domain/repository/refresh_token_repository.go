package repository

import (
	"context"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/errors"

	"github.com/google/uuid"
)

// ErrRefreshTokenNotFound is returned when no refresh token matches the lookup.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository persists refresh token records. Records are keyed by
// the token hash and are revoked, never deleted.
type RefreshTokenRepository interface {
	// CreateRefreshToken persists a new refresh token record.
	CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error

	// FindRefreshTokenByHashForUpdate returns the record regardless of its revoked
	// or expiry state, holding a row lock until the surrounding transaction ends.
	FindRefreshTokenByHashForUpdate(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// RevokeRefreshToken flips revoked to true if it is still false.
	// It reports whether this call performed the flip.
	RevokeRefreshToken(ctx context.Context, tokenHash string, replacedBy *uuid.UUID, at time.Time) (bool, error)

	// RevokeRefreshTokensByUserID revokes every unrevoked token of the user and
	// returns how many were flipped.
	RevokeRefreshTokensByUserID(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)

	// FindActiveRefreshTokensByUserID lists unrevoked, unexpired tokens, newest first.
	FindActiveRefreshTokensByUserID(ctx context.Context, userID uuid.UUID, now time.Time) ([]*entity.RefreshToken, error)
}
