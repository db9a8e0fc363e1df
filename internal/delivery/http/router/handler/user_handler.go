// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/delivery/http/response"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// refreshRequest is the body fallback for clients that do not keep cookies.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type listUsersRequest struct {
	Limit  int `query:"limit" validate:"gte=0"`
	Offset int `query:"offset" validate:"gte=0"`
}

type loginResponse struct {
	User         *entity.PublicProfile `json:"user"`
	AccessToken  string                `json:"accessToken"`
	RefreshToken string                `json:"refreshToken"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserHandler holds dependencies for user-related handlers.
type UserHandler struct {
	uc      usecase.UserUsecase
	cookies *CookieWriter
	logger  *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(uc usecase.UserUsecase, cookies *CookieWriter, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		uc:      uc,
		cookies: cookies,
		logger:  logger,
	}
}

// RegisterUser handles the user registration request.
func (h *UserHandler) RegisterUser(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.uc.RegisterUser(c.Request().Context(), &usecase.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output.User, "User registered successfully")
}

// Login exchanges credentials for a token pair, returned both as cookies and in the body.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.cookies.SetTokens(c, output.AccessToken, output.RefreshToken)

	return response.Success(c, http.StatusOK, loginResponse{
		User:         output.User,
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
	}, "Login successful")
}

// RefreshToken rotates the presented refresh token.
func (h *UserHandler) RefreshToken(c echo.Context) error {
	token := h.presentedRefreshToken(c)

	output, err := h.uc.RefreshToken(c.Request().Context(), &usecase.RefreshTokenInput{RefreshToken: token})
	if err != nil {
		return errors.WithStack(err)
	}

	h.cookies.SetTokens(c, output.AccessToken, output.RefreshToken)

	return response.Success(c, http.StatusOK, tokenPairResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
	}, "Token refreshed successfully")
}

// Logout revokes the presented refresh token. Cookies are cleared even when
// the store fails, so the browser forgets the session either way.
func (h *UserHandler) Logout(c echo.Context) error {
	h.cookies.Clear(c)

	token := h.presentedRefreshToken(c)

	if err := h.uc.Logout(c.Request().Context(), &usecase.LogoutInput{RefreshToken: token}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Logout successful")
}

// GetProfile returns the caller's public profile.
func (h *UserHandler) GetProfile(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	profile, err := h.uc.GetProfile(c.Request().Context(), identity.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, profile, "Profile retrieved successfully")
}

// ListUsers pages through public profiles.
func (h *UserHandler) ListUsers(c echo.Context) error {
	var req listUsersRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profiles, err := h.uc.ListUsers(c.Request().Context(), &usecase.ListUsersInput{
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, profiles, "Users retrieved successfully")
}

// presentedRefreshToken prefers the cookie and falls back to the JSON body.
// An unreadable body counts as no token; "" is left to the use case to reject.
func (h *UserHandler) presentedRefreshToken(c echo.Context) string {
	if token := h.cookies.RefreshToken(c); token != "" {
		return token
	}

	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return ""
	}

	return req.RefreshToken
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errors.WithStack(err)
	}

	if err := c.Validate(req); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// currentIdentity returns the identity set by the auth gate.
func currentIdentity(c echo.Context) (*entity.Identity, error) {
	identity, ok := deliverycontext.Identity(c.Request().Context())
	if !ok {
		return nil, domainerrors.ErrNoToken
	}

	return identity, nil
}
