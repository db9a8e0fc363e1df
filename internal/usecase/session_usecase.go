package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionUsecase defines the interface for session management operations.
// A session is one usable refresh token.
type SessionUsecase interface {
	GetActiveSessions(ctx context.Context, userID uuid.UUID) ([]*entity.SessionInfo, error)
	// RevokeAllSessions revokes every refresh token of the user and reports how many were live.
	RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int64, error)
}
