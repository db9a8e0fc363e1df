package handler

import (
	"net/http"

	"storefront/internal/delivery/http/response"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SessionHandler exposes the caller's refresh token sessions.
type SessionHandler struct {
	uc      usecase.SessionUsecase
	cookies *CookieWriter
}

// NewSessionHandler is the constructor for SessionHandler.
func NewSessionHandler(uc usecase.SessionUsecase, cookies *CookieWriter) *SessionHandler {
	return &SessionHandler{uc: uc, cookies: cookies}
}

// GetSessions lists the caller's active sessions.
func (h *SessionHandler) GetSessions(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	sessions, err := h.uc.GetActiveSessions(c.Request().Context(), identity.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, sessions, "Sessions retrieved successfully")
}

// LogoutAll revokes every session of the caller and clears this browser's cookies.
func (h *SessionHandler) LogoutAll(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	revoked, err := h.uc.RevokeAllSessions(c.Request().Context(), identity.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	h.cookies.Clear(c)

	return response.Success(c, http.StatusOK, map[string]int64{"revoked": revoked}, "All sessions revoked")
}
