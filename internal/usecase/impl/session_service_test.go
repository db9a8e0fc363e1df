package impl

import (
	"context"
	"testing"
	"time"

	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/errors"
	"storefront/internal/infra/metrics"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService(env *testEnv) *sessionService {
	return NewSessionService(SessionServiceParams{
		RefreshTokenRepo: &memRefreshRepo{s: env.store},
		Metrics:          env.metrics,
		Logger:           newDiscardLogger(),
	}).(*sessionService)
}

func TestSessionService_GetActiveSessions(t *testing.T) {
	env := newTestEnv(t)
	sessions := newTestSessionService(env)
	ctx := context.Background()

	first := registerAndLogin(t, env)
	second, err := env.srv.Login(ctx, &usecase.LoginInput{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	third, err := env.srv.Login(ctx, &usecase.LoginInput{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	// One logged out, one expired in the store.
	require.NoError(t, env.srv.Logout(ctx, &usecase.LogoutInput{RefreshToken: second.RefreshToken}))
	env.store.setTokenExpiry(env.tokens.HashToken(third.RefreshToken), time.Now().Add(-time.Minute))

	active, err := sessions.GetActiveSessions(ctx, first.User.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, env.store.token(env.tokens.HashToken(first.RefreshToken)).ID, active[0].ID)

	none, err := sessions.GetActiveSessions(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSessionService_RevokeAllSessions(t *testing.T) {
	env := newTestEnv(t)
	sessions := newTestSessionService(env)
	ctx := context.Background()

	first := registerAndLogin(t, env)
	second, err := env.srv.Login(ctx, &usecase.LoginInput{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	count, err := sessions.RevokeAllSessions(ctx, first.User.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		_, err := env.srv.RefreshToken(ctx, &usecase.RefreshTokenInput{RefreshToken: token})
		assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
	}

	count, err = sessions.RevokeAllSessions(ctx, first.User.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.InDelta(t, 2, testutil.ToFloat64(env.metrics.AuthEvents.WithLabelValues(metrics.EventLogoutAll, metrics.OutcomeSuccess)), 0)
}

func TestSessionService_RevokeAllSessions_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	sessions := newTestSessionService(env)
	env.store.revokeErr = domainerrors.NewDatabaseExecuteError(errStoreDown, "failed to revoke user refresh tokens")

	_, err := sessions.RevokeAllSessions(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, errStoreDown))
}
