// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/errors"
	"storefront/internal/infra/metrics"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	refreshTokenRepo repository.RefreshTokenRepository
	metrics          *metrics.Metrics
	logger           *slog.Logger
	now              func() time.Time
}

// SessionServiceParams holds dependencies for SessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	RefreshTokenRepo repository.RefreshTokenRepository
	Metrics          *metrics.Metrics `optional:"true"`
	Logger           *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		refreshTokenRepo: params.RefreshTokenRepo,
		metrics:          params.Metrics,
		logger:           params.Logger,
		now:              time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, srv.logger)
}

// GetActiveSessions lists the user's unrevoked, unexpired refresh tokens, newest first.
func (srv *sessionService) GetActiveSessions(ctx context.Context, userID uuid.UUID) ([]*entity.SessionInfo, error) {
	srv.log(ctx).Debug("Getting active sessions", slog.Any("user_id", userID))

	tokens, err := srv.refreshTokenRepo.FindActiveRefreshTokensByUserID(ctx, userID, srv.now())
	if err != nil {
		return nil, errors.Wrap(err, "failed to find refresh tokens")
	}

	sessions := make([]*entity.SessionInfo, 0, len(tokens))
	for _, token := range tokens {
		sessions = append(sessions, &entity.SessionInfo{
			ID:        token.ID,
			CreatedAt: token.CreatedAt,
			ExpiresAt: token.ExpiresAt,
		})
	}

	return sessions, nil
}

// RevokeAllSessions ends every session of the user. Access tokens already
// issued stay valid until they expire.
func (srv *sessionService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := srv.refreshTokenRepo.RevokeRefreshTokensByUserID(ctx, userID, srv.now())
	if err != nil {
		srv.log(ctx).Error("Failed to revoke all sessions", slog.Any("user_id", userID), slog.Any("error", err))
		srv.metrics.AuthEvent(metrics.EventLogoutAll, metrics.OutcomeError)

		return 0, errors.Wrap(err, "failed to revoke refresh tokens")
	}

	srv.log(ctx).Info("Revoked all sessions", slog.Any("user_id", userID), slog.Int64("count", count))
	srv.metrics.AuthEvent(metrics.EventLogoutAll, metrics.OutcomeSuccess)

	return count, nil
}
