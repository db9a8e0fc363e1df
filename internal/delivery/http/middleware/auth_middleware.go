package middleware

import (
	"strings"

	"storefront/config"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

const bearerScheme = "bearer"

// AuthMiddleware is the request gate in front of authenticated routes.
type AuthMiddleware struct {
	uc         usecase.UserUsecase
	cookieName string
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(uc usecase.UserUsecase, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{uc: uc, cookieName: cfg.Cookie.AccessTokenName}
}

// Authenticate verifies the access token and attaches the caller's identity.
// The Authorization header wins over the access token cookie.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := m.uc.Authenticate(c.Request().Context(), m.extractToken(c))
		if err != nil {
			return errors.WithStack(err)
		}

		ctx := deliverycontext.WithIdentity(c.Request().Context(), identity)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// extractToken returns "" when the request carries no usable credential.
func (m *AuthMiddleware) extractToken(c echo.Context) string {
	if token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); ok {
		return token
	}

	if cookie, err := c.Cookie(m.cookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}

	return ""
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}
