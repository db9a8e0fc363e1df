package handler

import (
	"net/http"
	"strings"
	"time"

	"storefront/config"
	"storefront/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// CookieWriter writes and clears the token cookies. Lifetimes come from the
// token service so a cookie never outlives the token it carries.
type CookieWriter struct {
	accessName  string
	refreshName string
	path        string
	domain      string
	secure      bool
	sameSite    http.SameSite
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

// NewCookieWriter is the constructor for CookieWriter.
func NewCookieWriter(cfg *config.Config, tokenService service.TokenService) *CookieWriter {
	return &CookieWriter{
		accessName:  cfg.Cookie.AccessTokenName,
		refreshName: cfg.Cookie.RefreshTokenName,
		path:        cfg.Cookie.Path,
		domain:      cfg.Cookie.Domain,
		secure:      cfg.Cookie.Secure,
		sameSite:    parseSameSite(cfg.Cookie.SameSite),
		accessTTL:   tokenService.GetAccessTokenDuration(),
		refreshTTL:  tokenService.GetRefreshTokenDuration(),
	}
}

// SetTokens writes the access and refresh cookies.
func (w *CookieWriter) SetTokens(c echo.Context, accessToken, refreshToken string) {
	c.SetCookie(w.cookie(w.accessName, accessToken, w.accessTTL))
	c.SetCookie(w.cookie(w.refreshName, refreshToken, w.refreshTTL))
}

// Clear expires both cookies.
func (w *CookieWriter) Clear(c echo.Context) {
	for _, name := range []string{w.accessName, w.refreshName} {
		cookie := w.cookie(name, "", 0)
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0).UTC()
		c.SetCookie(cookie)
	}
}

// RefreshToken reads the refresh cookie, "" when absent.
func (w *CookieWriter) RefreshToken(c echo.Context) string {
	cookie, err := c.Cookie(w.refreshName)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(cookie.Value)
}

func (w *CookieWriter) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     w.path,
		Domain:   w.domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   w.secure,
		SameSite: w.sameSite,
	}
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "default":
		return http.SameSiteDefaultMode
	default:
		return http.SameSiteLaxMode
	}
}
