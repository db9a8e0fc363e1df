// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/infra/metrics"
	"storefront/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/fx"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
	maxNameLength    = 100
	maxEmailLength   = 255
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager        repository.TransactionManager
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	hasher           service.PasswordHasher
	tokenService     service.TokenService
	validate         *validator.Validate
	metrics          *metrics.Metrics
	logger           *slog.Logger
	now              func() time.Time

	// dummyHash is compared against when the email is unknown so that
	// both login failure paths cost one bcrypt comparison.
	dummyHash string
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	Metrics          *metrics.Metrics `optional:"true"`
	Logger           *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	srv := &userService{
		txManager:        params.TxManager,
		userRepo:         params.UserRepo,
		refreshTokenRepo: params.RefreshTokenRepo,
		hasher:           params.Hasher,
		tokenService:     params.TokenService,
		validate:         validator.New(validator.WithRequiredStructEnabled()),
		metrics:          params.Metrics,
		logger:           params.Logger,
		now:              time.Now,
	}

	dummy, err := params.Hasher.Hash(uuid.NewString())
	if err != nil {
		params.Logger.Warn("Failed to prepare dummy password hash", slog.Any("error", err))
	}
	srv.dummyHash = dummy

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.Logger(ctx, srv.logger)
}

// RegisterUser validates the input, hashes the password and stores the user.
// The email pre-check is only a fast path; the store's unique index decides races.
func (srv *userService) RegisterUser(ctx context.Context, input *usecase.RegisterUserInput) (*usecase.RegisterOutput, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)

	if err := srv.validateRegistration(name, email, input.Password); err != nil {
		srv.log(ctx).Warn("Registration rejected", slog.String("email", email), slog.Any("error", err))
		srv.metrics.AuthEvent(metrics.EventRegister, metrics.OutcomeRejected)

		return nil, err
	}

	_, err := srv.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		srv.metrics.AuthEvent(metrics.EventRegister, metrics.OutcomeRejected)

		return nil, domainerrors.ErrUserAlreadyExists.WrapMessage("email already registered")
	case !errors.Is(err, repository.ErrUserNotFound):
		srv.metrics.AuthEvent(metrics.EventRegister, metrics.OutcomeError)

		return nil, errors.Wrap(err, "failed to check existing email")
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))
		srv.metrics.AuthEvent(metrics.EventRegister, metrics.OutcomeError)

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	newUser := &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, domainerrors.ErrUserAlreadyExists) {
			srv.log(ctx).Info("Concurrent registration lost on unique email", slog.String("email", email))
			srv.metrics.AuthEvent(metrics.EventRegister, metrics.OutcomeRejected)

			return nil, err
		}
		srv.metrics.AuthEvent(metrics.EventRegister, metrics.OutcomeError)

		return nil, errors.Wrap(err, "failed to create user during registration")
	}

	srv.log(ctx).Info("User registered", slog.Any("userID", newUser.ID))
	srv.metrics.AuthEvent(metrics.EventRegister, metrics.OutcomeSuccess)

	return &usecase.RegisterOutput{User: newUser.Public()}, nil
}

func (srv *userService) validateRegistration(name, email, password string) error {
	if name == "" {
		return domainerrors.ErrValidationFailed.WithDetails("name is required")
	}
	if len([]rune(name)) > maxNameLength {
		return domainerrors.ErrValidationFailed.WithDetails("name is too long")
	}
	if len(email) > maxEmailLength || srv.validate.Var(email, "required,email") != nil {
		return domainerrors.ErrValidationFailed.WithDetails("email must be a valid email address")
	}

	return srv.hasher.ValidatePasswordStrength(password)
}

// Login orchestrates the user login process. Unknown email and wrong password
// are indistinguishable to the caller.
func (srv *userService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := strings.TrimSpace(input.Email)
	srv.log(ctx).Debug("Starting user login", slog.String("email", email))

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			srv.metrics.AuthEvent(metrics.EventLogin, metrics.OutcomeError)

			return nil, errors.Wrap(err, "failed to load user for login")
		}
		srv.hasher.Check(input.Password, srv.dummyHash)
		srv.log(ctx).Warn("Login failed", slog.String("email", email), slog.String("reason", "unknown email"))
		srv.metrics.AuthEvent(metrics.EventLogin, metrics.OutcomeRejected)

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", email), slog.String("reason", "password mismatch"))
		srv.metrics.AuthEvent(metrics.EventLogin, metrics.OutcomeRejected)

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	accessToken, refreshToken, record, err := srv.issueTokens(user)
	if err != nil {
		srv.metrics.AuthEvent(metrics.EventLogin, metrics.OutcomeError)

		return nil, err
	}

	if err := srv.refreshTokenRepo.CreateRefreshToken(ctx, record); err != nil {
		srv.log(ctx).Error("Failed to persist refresh token", slog.Any("userID", user.ID), slog.Any("error", err))
		srv.metrics.AuthEvent(metrics.EventLogin, metrics.OutcomeError)

		return nil, errors.Wrap(err, "failed to create refresh token during login")
	}

	srv.log(ctx).Info("User logged in", slog.Any("userID", user.ID))
	srv.metrics.AuthEvent(metrics.EventLogin, metrics.OutcomeSuccess)

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Public(),
	}, nil
}

// issueTokens signs a fresh pair and prepares the refresh record for storage.
func (srv *userService) issueTokens(user *entity.User) (accessToken, refreshToken string, record *entity.RefreshToken, err error) {
	accessToken, err = srv.tokenService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return "", "", nil, errors.Wrap(err, "failed to generate access token")
	}

	refreshToken, err = srv.tokenService.GenerateRefreshToken(user.ID)
	if err != nil {
		return "", "", nil, errors.Wrap(err, "failed to generate refresh token")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", "", nil, errors.Wrap(err, "failed to generate refresh token id")
	}

	record = &entity.RefreshToken{
		ID:        id,
		UserID:    user.ID,
		TokenHash: srv.tokenService.HashToken(refreshToken),
		ExpiresAt: srv.now().Add(srv.tokenService.GetRefreshTokenDuration()),
	}

	return accessToken, refreshToken, record, nil
}

// RefreshToken rotates a refresh token. Locking the stored row, revoking it and
// inserting its successor happen in one transaction, so of two concurrent calls
// with the same token exactly one succeeds.
func (srv *userService) RefreshToken(ctx context.Context, input *usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error) {
	if input == nil || input.RefreshToken == "" {
		srv.metrics.AuthEvent(metrics.EventRefresh, metrics.OutcomeRejected)

		return nil, domainerrors.ErrRefreshTokenMissing
	}

	claims, err := srv.tokenService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		srv.log(ctx).Warn("Refresh token verification failed", slog.Any("error", err))
		srv.metrics.AuthEvent(metrics.EventRefresh, metrics.OutcomeRejected)

		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, err.Error())
	}

	subject, err := claims.UserID()
	if err != nil {
		srv.metrics.AuthEvent(metrics.EventRefresh, metrics.OutcomeRejected)

		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, err.Error())
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)
	var output *usecase.RefreshTokenOutput

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.RefreshTokenRepo()
		now := srv.now()

		stored, err := refreshRepo.FindRefreshTokenByHashForUpdate(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token not found")
			}

			return errors.Wrap(err, "failed to find refresh token")
		}
		if stored.UserID != subject {
			return domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token subject mismatch")
		}
		if !stored.UsableAt(now) {
			return domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token revoked or expired")
		}

		user, err := repoFactory.UserRepo().FindByID(ctx, stored.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token owner no longer exists")
			}

			return errors.Wrap(err, "failed to find refresh token owner")
		}

		accessToken, refreshToken, successor, err := srv.issueTokens(user)
		if err != nil {
			return err
		}

		revoked, err := refreshRepo.RevokeRefreshToken(ctx, tokenHash, &successor.ID, now)
		if err != nil {
			return errors.Wrap(err, "failed to revoke refresh token")
		}
		if !revoked {
			return domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token already rotated")
		}

		if err := refreshRepo.CreateRefreshToken(ctx, successor); err != nil {
			return errors.Wrap(err, "failed to store rotated refresh token")
		}

		output = &usecase.RefreshTokenOutput{AccessToken: accessToken, RefreshToken: refreshToken}

		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrRefreshTokenInvalid) {
			srv.log(ctx).Warn("Refresh rejected", slog.Any("userID", subject), slog.Any("error", err))
			srv.metrics.AuthEvent(metrics.EventRefresh, metrics.OutcomeRejected)

			return nil, err
		}
		srv.log(ctx).Error("Failed to execute refresh transaction", slog.Any("userID", subject), slog.Any("error", err))
		srv.metrics.AuthEvent(metrics.EventRefresh, metrics.OutcomeError)

		return nil, errors.Wrap(err, "failed to execute refresh token transaction")
	}

	srv.log(ctx).Debug("Refresh token rotated", slog.Any("userID", subject))
	srv.metrics.AuthEvent(metrics.EventRefresh, metrics.OutcomeSuccess)

	return output, nil
}

// Logout revokes the presented refresh token. Missing, unknown and already
// revoked tokens are not errors.
func (srv *userService) Logout(ctx context.Context, input *usecase.LogoutInput) error {
	if input == nil || input.RefreshToken == "" {
		srv.metrics.AuthEvent(metrics.EventLogout, metrics.OutcomeSuccess)

		return nil
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)
	revoked, err := srv.refreshTokenRepo.RevokeRefreshToken(ctx, tokenHash, nil, srv.now())
	if err != nil {
		srv.log(ctx).Error("Failed to revoke refresh token on logout", slog.Any("error", err))
		srv.metrics.AuthEvent(metrics.EventLogout, metrics.OutcomeError)

		return errors.Wrap(err, "failed to revoke refresh token")
	}

	srv.log(ctx).Debug("User logged out", slog.Bool("revoked", revoked))
	srv.metrics.AuthEvent(metrics.EventLogout, metrics.OutcomeSuccess)

	return nil
}

// Authenticate is the request gate contract. Any verification failure,
// including expiry, is Unauthorized.
func (srv *userService) Authenticate(ctx context.Context, accessToken string) (*entity.Identity, error) {
	if accessToken == "" {
		srv.metrics.AuthEvent(metrics.EventAuthenticate, metrics.OutcomeRejected)

		return nil, domainerrors.ErrNoToken
	}

	claims, err := srv.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		srv.log(ctx).Debug("Access token rejected", slog.Any("error", err))
		srv.metrics.AuthEvent(metrics.EventAuthenticate, metrics.OutcomeRejected)

		return nil, errors.Wrap(domainerrors.ErrUnauthorized, err.Error())
	}

	userID, err := claims.UserID()
	if err != nil {
		srv.metrics.AuthEvent(metrics.EventAuthenticate, metrics.OutcomeRejected)

		return nil, errors.Wrap(domainerrors.ErrUnauthorized, err.Error())
	}

	srv.metrics.AuthEvent(metrics.EventAuthenticate, metrics.OutcomeSuccess)

	return &entity.Identity{UserID: userID, Email: claims.Email}, nil
}

// GetProfile returns the public profile of a user.
func (srv *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.PublicProfile, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "profile lookup")
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return user.Public(), nil
}

// ListUsers returns a page of public profiles.
func (srv *userService) ListUsers(ctx context.Context, input *usecase.ListUsersInput) ([]*entity.PublicProfile, error) {
	limit, offset := defaultListLimit, 0
	if input != nil {
		if input.Limit > 0 {
			limit = min(input.Limit, maxListLimit)
		}
		if input.Offset > 0 {
			offset = input.Offset
		}
	}

	users, err := srv.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	profiles := make([]*entity.PublicProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.Public())
	}

	return profiles, nil
}
