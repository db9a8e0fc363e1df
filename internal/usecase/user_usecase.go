// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterUserInput defines the data required to register a new user.
type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// RefreshTokenInput carries the presented refresh token. Empty means absent.
type RefreshTokenInput struct {
	RefreshToken string
}

// LogoutInput carries the refresh token to revoke, if the client still has one.
type LogoutInput struct {
	RefreshToken string
}

// ListUsersInput pages through users. Zero values select the defaults.
type ListUsersInput struct {
	Limit  int
	Offset int
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's public profile.
type RegisterOutput struct {
	User *entity.PublicProfile
}

// LoginOutput returns the generated tokens after a successful login.
type LoginOutput struct {
	AccessToken  string
	RefreshToken string
	User         *entity.PublicProfile
}

// RefreshTokenOutput is the rotated token pair.
type RefreshTokenOutput struct {
	AccessToken  string
	RefreshToken string
}

// UserUsecase is the session core: account creation, credential exchange,
// refresh token rotation and access token verification.
type UserUsecase interface {
	RegisterUser(ctx context.Context, input *RegisterUserInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	RefreshToken(ctx context.Context, input *RefreshTokenInput) (*RefreshTokenOutput, error)
	Logout(ctx context.Context, input *LogoutInput) error

	// Authenticate verifies an access token and returns the identity it asserts.
	Authenticate(ctx context.Context, accessToken string) (*entity.Identity, error)

	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.PublicProfile, error)
	ListUsers(ctx context.Context, input *ListUsersInput) ([]*entity.PublicProfile, error)
}
